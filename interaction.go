package infinote

// interactionMode distinguishes what a live per-note gesture is doing.
type interactionMode uint8

const (
	interactionDrag interactionMode = iota
	interactionResize
)

// noteInteraction is the explicit per-note gesture record, keyed by note id
// in Interactions. It replaces per-visual closure state: drag and resize
// math is shared, and lookups go by id.
type noteInteraction struct {
	mode interactionMode

	// Drag: world-space offset of the grab point within the note, captured
	// at drag start so the note tracks the pointer without jumping.
	grabOffset Vec2

	// Resize: note size and pointer screen position at resize start.
	startSize    Vec2
	startPointer Vec2
}

// Interactions is the note interaction controller: per-note drag/resize
// state, the single system-wide color palette, and the pending delete
// confirmation. All mutations go straight to the document; there is no
// separate visual state to roll back.
type Interactions struct {
	active map[string]*noteInteraction

	// Palette: at most one open system-wide. originalColor is the color the
	// note had when the palette opened, restored on an uncommitted close.
	paletteNote   string
	originalColor int

	// pendingDelete holds the id of a non-empty note awaiting confirmation.
	pendingDelete string
}

// NewInteractions creates an empty interaction controller.
func NewInteractions() *Interactions {
	return &Interactions{active: make(map[string]*noteInteraction)}
}

// Press bumps the pressed note's z-order. Every press on a note does this,
// including presses that go on to drag or resize.
func (ia *Interactions) Press(doc *Document, id string) {
	doc.BringToFront(id)
}

// --- Drag ---

// DragStart captures the grab offset so subsequent moves keep the pointer
// pinned to the same point within the note.
func (ia *Interactions) DragStart(doc *Document, vp *Viewport, id string, pointer Vec2) {
	n := doc.Note(id)
	if n == nil {
		return
	}
	ia.active[id] = &noteInteraction{
		mode:       interactionDrag,
		grabOffset: vp.ToWorld(pointer).Sub(n.Position),
	}
}

// DragMove repositions the note under the pointer.
func (ia *Interactions) DragMove(doc *Document, vp *Viewport, id string, pointer Vec2) {
	g := ia.active[id]
	n := doc.Note(id)
	if g == nil || g.mode != interactionDrag || n == nil {
		return
	}
	n.Position = vp.ToWorld(pointer).Sub(g.grabOffset)
}

// DragEnd completes a drag. A normal release snaps x and y independently to
// the grid; a canceled end keeps the last applied position as-is.
func (ia *Interactions) DragEnd(doc *Document, id string, canceled bool) {
	delete(ia.active, id)
	if canceled {
		return
	}
	if n := doc.Note(id); n != nil {
		n.Position = Vec2{snapToGrid(n.Position.X), snapToGrid(n.Position.Y)}
	}
}

// --- Resize ---

// ResizeStart records the note size and pointer position the resize
// measures from.
func (ia *Interactions) ResizeStart(doc *Document, id string, pointer Vec2) {
	n := doc.Note(id)
	if n == nil {
		return
	}
	ia.active[id] = &noteInteraction{
		mode:         interactionResize,
		startSize:    n.Size,
		startPointer: pointer,
	}
}

// ResizeMove grows or shrinks the note by the pointer delta divided by the
// zoom, so resizing is zoom-invariant in world units. The floor is
// MinNoteSize per axis.
func (ia *Interactions) ResizeMove(doc *Document, vp *Viewport, id string, pointer Vec2) {
	g := ia.active[id]
	n := doc.Note(id)
	if g == nil || g.mode != interactionResize || n == nil {
		return
	}
	d := pointer.Sub(g.startPointer).Scale(1 / vp.Zoom)
	n.Size = Vec2{
		max(g.startSize.X+d.X, MinNoteSize),
		max(g.startSize.Y+d.Y, MinNoteSize),
	}
}

// ResizeEnd completes a resize, snapping both dimensions to the grid on a
// normal release with the minimum still enforced.
func (ia *Interactions) ResizeEnd(doc *Document, id string, canceled bool) {
	delete(ia.active, id)
	if canceled {
		return
	}
	if n := doc.Note(id); n != nil {
		n.Size = Vec2{
			max(snapToGrid(n.Size.X), MinNoteSize),
			max(snapToGrid(n.Size.Y), MinNoteSize),
		}
	}
}

// --- Palette ---

// OpenPalette opens the color palette for a note, closing (and reverting)
// any palette already open elsewhere.
func (ia *Interactions) OpenPalette(doc *Document, id string) {
	if ia.paletteNote == id {
		return
	}
	ia.ClosePalette(doc)
	n := doc.Note(id)
	if n == nil {
		return
	}
	ia.paletteNote = id
	ia.originalColor = n.Color
}

// PaletteNote returns the id of the note whose palette is open, or "".
func (ia *Interactions) PaletteNote() string { return ia.paletteNote }

// PreviewColor applies a palette color live while hovering a swatch. The
// change is visible immediately but not committed.
func (ia *Interactions) PreviewColor(doc *Document, index int) {
	n := doc.Note(ia.paletteNote)
	if n == nil || index < 0 || index >= len(Palette) {
		return
	}
	n.Color = index
}

// CommitColor commits a swatch selection and closes the palette.
// Reports whether a commit happened.
func (ia *Interactions) CommitColor(doc *Document, index int) bool {
	n := doc.Note(ia.paletteNote)
	if n == nil || index < 0 || index >= len(Palette) {
		return false
	}
	n.Color = index
	ia.paletteNote = ""
	return true
}

// ClosePalette closes an open palette without committing, reverting the
// note to the color it had when the palette opened.
func (ia *Interactions) ClosePalette(doc *Document) {
	if ia.paletteNote == "" {
		return
	}
	if n := doc.Note(ia.paletteNote); n != nil {
		n.Color = ia.originalColor
	}
	ia.paletteNote = ""
}

// --- Delete ---

// RequestDelete starts deletion of a note. Empty notes are removed
// immediately; non-empty notes require ConfirmDelete first.
func (ia *Interactions) RequestDelete(doc *Document, id string) (deleted, needsConfirm bool) {
	n := doc.Note(id)
	if n == nil {
		return false, false
	}
	if n.Content == "" {
		ia.CancelFor(doc, id)
		doc.Remove(id)
		return true, false
	}
	ia.pendingDelete = id
	return false, true
}

// PendingDelete returns the id awaiting confirmation, or "".
func (ia *Interactions) PendingDelete() string { return ia.pendingDelete }

// ConfirmDelete completes a pending deletion.
func (ia *Interactions) ConfirmDelete(doc *Document) bool {
	id := ia.pendingDelete
	ia.pendingDelete = ""
	if id == "" || doc.Note(id) == nil {
		return false
	}
	ia.CancelFor(doc, id)
	return doc.Remove(id)
}

// CancelDelete abandons a pending deletion.
func (ia *Interactions) CancelDelete() { ia.pendingDelete = "" }

// CancelFor drops all interaction state tied to a note: its live gesture
// record and its palette if open. Used when the note is deleted mid-gesture
// so nothing dangles; whatever the gesture last wrote stands.
func (ia *Interactions) CancelFor(doc *Document, id string) {
	delete(ia.active, id)
	if ia.paletteNote == id {
		// The note is going away; nothing to revert.
		ia.paletteNote = ""
	}
	if ia.pendingDelete == id {
		ia.pendingDelete = ""
	}
}

// Dragging reports whether the note has a live drag gesture.
func (ia *Interactions) Dragging(id string) bool {
	g := ia.active[id]
	return g != nil && g.mode == interactionDrag
}

// Resizing reports whether the note has a live resize gesture.
func (ia *Interactions) Resizing(id string) bool {
	g := ia.active[id]
	return g != nil && g.mode == interactionResize
}
