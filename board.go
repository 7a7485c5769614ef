package infinote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a Board.
type Options struct {
	// Width and Height are the viewport element's screen dimensions.
	Width, Height float64

	// Store persists the document. Nil disables persistence.
	Store Store

	// SaveDebounce is the quiet period before a scheduled save is written.
	// Zero uses the default.
	SaveDebounce time.Duration

	// ResetGlide animates reset-view over this duration in seconds.
	// Zero resets instantly.
	ResetGlide float32

	// Logger receives storage and lifecycle diagnostics. The zero value
	// logs nowhere.
	Logger zerolog.Logger
}

// Board is the application context: it owns the single document, the
// viewport, the gesture classifier, and the per-note interaction state, and
// routes each classified intent to exactly one of the viewport controller
// or one note's interaction state. All methods must be called from one
// goroutine; only the saver works in the background.
type Board struct {
	doc          *Document
	viewport     *Viewport
	classifier   *Classifier
	interactions *Interactions

	focused    string // note id whose text field holds focus, or ""
	resetGlide float32

	saver *Saver
	log   zerolog.Logger
}

// NewBoard creates a board with an empty document. If opts.Store is set,
// call Load to restore the previous session before feeding input.
func NewBoard(opts Options) *Board {
	b := &Board{
		doc:          NewDocument(),
		viewport:     NewViewport(opts.Width, opts.Height),
		classifier:   NewClassifier(),
		interactions: NewInteractions(),
		resetGlide:   opts.ResetGlide,
		log:          opts.Logger,
	}
	if opts.Store != nil {
		b.saver = NewSaver(opts.Store, opts.SaveDebounce, opts.Logger)
	}
	return b
}

// Document returns the board's root state. Callers must not mutate it
// outside Board methods.
func (b *Board) Document() *Document { return b.doc }

// Viewport returns the board's pan/zoom state.
func (b *Board) Viewport() *Viewport { return b.viewport }

// FocusedNote returns the id of the note whose text field holds focus, or "".
func (b *Board) FocusedNote() string { return b.focused }

// Blur drops text focus.
func (b *Board) Blur() { b.focused = "" }

// Resize updates the viewport element's screen dimensions.
func (b *Board) Resize(width, height float64) {
	b.viewport.Width = width
	b.viewport.Height = height
}

// Load restores the document from the store. A total miss starts from
// defaults and is not an error.
func (b *Board) Load(ctx context.Context, store Store) error {
	data, err := store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		b.log.Info().Msg("no saved document, starting fresh")
		return nil
	}
	if err != nil {
		return err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode saved document: %w", err)
	}
	b.ReplaceDocument(&doc)
	return nil
}

// ReplaceDocument swaps in a new document atomically from the caller's
// point of view: all gesture and interaction state is discarded, the
// viewport adopts the document's transform, and focus clears.
func (b *Board) ReplaceDocument(doc *Document) {
	if doc.Notes == nil {
		doc.Notes = []*Note{}
	}
	b.doc = doc
	b.classifier = NewClassifier()
	b.interactions = NewInteractions()
	b.focused = ""
	b.viewport.SetState(doc.Viewport)
	b.scheduleSave()
}

// Close flushes pending saves.
func (b *Board) Close() {
	if b.saver != nil {
		b.scheduleSave()
		b.saver.Close()
	}
}

// --- Hit testing ---

// HitTest resolves a screen point to a gesture target: the topmost note's
// resize handle or body, or the empty canvas.
func (b *Board) HitTest(screen Vec2) (Target, string) {
	world := b.viewport.ToWorld(screen)
	n := b.doc.NoteAt(world)
	if n == nil {
		return TargetCanvas, ""
	}
	if n.HandleRect().Contains(world.X, world.Y) {
		return TargetResizeHandle, n.ID
	}
	return TargetNoteBody, n.ID
}

// --- Input entry points ---

// PointerDown feeds a press. The target is resolved by hit testing; presses
// on app chrome (swatches, delete controls, open palettes) must go through
// ChromePointer instead so they are never classified.
func (b *Board) PointerDown(kind PointerKind, pointer int, pos Vec2, now time.Time) {
	target, noteID := b.HitTest(pos)

	// An open palette is closed (and reverted) by any press outside it;
	// chrome presses never reach this path.
	if b.interactions.PaletteNote() != "" {
		b.interactions.ClosePalette(b.doc)
		b.scheduleSave()
	}

	switch target {
	case TargetCanvas:
		b.Blur()
	case TargetNoteBody:
		// While a note's text field holds focus, presses on its body belong
		// to text editing, not dragging. The z-order bump still applies.
		if noteID == b.focused {
			b.doc.BringToFront(noteID)
			b.scheduleSave()
			target = TargetChrome
		} else {
			b.Blur()
		}
	case TargetResizeHandle:
		// The dedicated handle always resizes, focused or not.
	}

	b.apply(b.classifier.Pointer(PointerEvent{
		Phase: PhaseDown, Kind: kind, Pointer: pointer,
		Pos: pos, Target: target, NoteID: noteID, Time: now,
	}), now)
}

// PointerMove feeds a pointer movement.
func (b *Board) PointerMove(kind PointerKind, pointer int, pos Vec2, now time.Time) {
	b.apply(b.classifier.Pointer(PointerEvent{
		Phase: PhaseMove, Kind: kind, Pointer: pointer, Pos: pos, Time: now,
	}), now)
}

// PointerUp feeds a release.
func (b *Board) PointerUp(kind PointerKind, pointer int, pos Vec2, now time.Time) {
	b.apply(b.classifier.Pointer(PointerEvent{
		Phase: PhaseUp, Kind: kind, Pointer: pointer, Pos: pos, Time: now,
	}), now)
}

// PointerCancel feeds a platform-interrupted sequence. The active gesture
// falls back to idle; the model keeps its last applied values.
func (b *Board) PointerCancel(kind PointerKind, pointer int, pos Vec2, now time.Time) {
	b.apply(b.classifier.Pointer(PointerEvent{
		Phase: PhaseCancel, Kind: kind, Pointer: pointer, Pos: pos, Time: now,
	}), now)
}

// ChromePointer feeds a press/release on app chrome so the classifier can
// track the pointer without interpreting it as a canvas or note gesture.
func (b *Board) ChromePointer(phase PointerPhase, kind PointerKind, pointer int, pos Vec2, now time.Time) {
	b.apply(b.classifier.Pointer(PointerEvent{
		Phase: phase, Kind: kind, Pointer: pointer,
		Pos: pos, Target: TargetChrome, Time: now,
	}), now)
}

// Wheel feeds one wheel notch at a screen position.
func (b *Board) Wheel(pos Vec2, dir int, now time.Time) {
	b.apply(b.classifier.Wheel(WheelEvent{Pos: pos, Dir: dir}), now)
}

// Tick matures delayed gestures and advances viewport animation. Call once
// per frame, after delivering that frame's input events.
func (b *Board) Tick(now time.Time, dt float32) {
	b.apply(b.classifier.Tick(now), now)
	b.viewport.Step(dt)
}

// --- Intent routing ---

func (b *Board) apply(intents []Intent, now time.Time) {
	for _, in := range intents {
		switch in.Type {
		case IntentPanStart:
			// Ownership established; movement arrives via IntentPanMove.
		case IntentPanMove:
			b.viewport.PanBy(in.Delta)
		case IntentPanEnd:
			b.scheduleSave()
		case IntentPinchZoom:
			b.viewport.PinchZoomAt(in.Pos, in.Factor, in.Delta)
		case IntentWheelZoom:
			b.viewport.WheelZoomAt(in.Pos, in.Dir)
			b.scheduleSave()
		case IntentCreateNote:
			n := b.doc.CreateNote(b.viewport.ToWorld(in.Pos), now)
			b.focused = n.ID
			b.scheduleSave()
		case IntentResetView:
			if b.resetGlide > 0 {
				b.viewport.GlideToFit(b.doc, b.resetGlide)
			} else {
				b.viewport.Reset(b.doc)
			}
			b.scheduleSave()
		case IntentNotePress:
			b.interactions.Press(b.doc, in.NoteID)
			b.scheduleSave()
		case IntentFocusNote:
			if b.doc.Note(in.NoteID) != nil {
				b.focused = in.NoteID
			}
		case IntentNoteDragStart:
			b.interactions.DragStart(b.doc, b.viewport, in.NoteID, in.Pos)
		case IntentNoteDragMove:
			b.interactions.DragMove(b.doc, b.viewport, in.NoteID, in.Pos)
		case IntentNoteDragEnd:
			b.interactions.DragEnd(b.doc, in.NoteID, in.Canceled)
			b.scheduleSave()
		case IntentNoteResizeStart:
			b.interactions.ResizeStart(b.doc, in.NoteID, in.Pos)
		case IntentNoteResizeMove:
			b.interactions.ResizeMove(b.doc, b.viewport, in.NoteID, in.Pos)
		case IntentNoteResizeEnd:
			b.interactions.ResizeEnd(b.doc, in.NoteID, in.Canceled)
			b.scheduleSave()
		}
	}
}

// --- Note operations ---

// SetNoteContent replaces a note's text.
func (b *Board) SetNoteContent(id, content string) {
	n := b.doc.Note(id)
	if n == nil {
		return
	}
	n.Content = content
	b.scheduleSave()
}

// RequestDeleteNote deletes an empty note immediately; a non-empty note is
// staged for confirmation (see ConfirmDelete/CancelDelete). A note deleted
// mid-gesture cancels its gesture cleanly.
func (b *Board) RequestDeleteNote(id string) (deleted, needsConfirm bool) {
	deleted, needsConfirm = b.interactions.RequestDelete(b.doc, id)
	if deleted {
		b.noteRemoved(id)
	}
	return deleted, needsConfirm
}

// ConfirmDelete completes a staged deletion.
func (b *Board) ConfirmDelete() bool {
	id := b.interactions.PendingDelete()
	if !b.interactions.ConfirmDelete(b.doc) {
		return false
	}
	b.noteRemoved(id)
	return true
}

// CancelDelete abandons a staged deletion.
func (b *Board) CancelDelete() { b.interactions.CancelDelete() }

// PendingDelete returns the note id awaiting delete confirmation, or "".
func (b *Board) PendingDelete() string { return b.interactions.PendingDelete() }

func (b *Board) noteRemoved(id string) {
	b.classifier.CancelNote(id)
	if b.focused == id {
		b.focused = ""
	}
	b.scheduleSave()
}

// --- Palette operations ---

// OpenPalette opens the color palette for a note, closing any other.
func (b *Board) OpenPalette(id string) { b.interactions.OpenPalette(b.doc, id) }

// PreviewColor previews a swatch color live on the palette's note.
func (b *Board) PreviewColor(index int) { b.interactions.PreviewColor(b.doc, index) }

// CommitColor commits a swatch selection and closes the palette.
func (b *Board) CommitColor(index int) {
	if b.interactions.CommitColor(b.doc, index) {
		b.scheduleSave()
	}
}

// ClosePalette closes an open palette, reverting the preview.
func (b *Board) ClosePalette() {
	b.interactions.ClosePalette(b.doc)
}

// PaletteNote returns the id of the note whose palette is open, or "".
func (b *Board) PaletteNote() string { return b.interactions.PaletteNote() }

// --- Persistence ---

// scheduleSave snapshots the viewport into the document and queues a
// fire-and-forget write. Mutations never wait on storage.
func (b *Board) scheduleSave() {
	b.doc.Viewport = b.viewport.State()
	if b.saver != nil {
		b.saver.Schedule(b.doc)
	}
}
