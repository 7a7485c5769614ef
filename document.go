package infinote

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Note is one sticky note. Position is the world-space top-left corner;
// Size is in world units and never drops below MinNoteSize per axis.
// ZIndex orders stacking only; the note list keeps creation order.
type Note struct {
	ID       string `json:"id"`
	Position Vec2   `json:"position"`
	Size     Vec2   `json:"size"`
	Content  string `json:"content"`
	Color    int    `json:"color"`
	ZIndex   int    `json:"zIndex"`
}

// Rect returns the note's world-space rectangle.
func (n *Note) Rect() Rect {
	return Rect{X: n.Position.X, Y: n.Position.Y, Width: n.Size.X, Height: n.Size.Y}
}

// HandleRect returns the world-space resize region anchored to the note's
// bottom-right corner, clipped to the note so tiny notes keep a body.
func (n *Note) HandleRect() Rect {
	w := min(ResizeHandleSize, n.Size.X/2)
	h := min(ResizeHandleSize, n.Size.Y/2)
	return Rect{
		X:     n.Position.X + n.Size.X - w,
		Y:     n.Position.Y + n.Size.Y - h,
		Width: w, Height: h,
	}
}

// NewNoteID derives a note id from the creation time plus a random tiebreak.
// Ids sort by creation order; collisions are negligible, not impossible.
func NewNoteID(now time.Time) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + hex.EncodeToString(b)
}

// Document is the root persisted state: the viewport transform, the note
// collection, and the z-order high-water mark. It is saved and restored as
// one opaque unit; every mutation rewrites the whole document.
type Document struct {
	Viewport  ViewportState `json:"viewport"`
	Notes     []*Note       `json:"notes"`
	MaxZIndex int           `json:"maxZIndex"`
}

// NewDocument creates an empty document at the default viewport transform.
func NewDocument() *Document {
	return &Document{
		Viewport: ViewportState{Zoom: 1.0},
		Notes:    []*Note{},
	}
}

// CreateNote adds a new default-sized note with its top-left corner at the
// given world position and brings it to the front.
func (d *Document) CreateNote(world Vec2, now time.Time) *Note {
	n := &Note{
		ID:       NewNoteID(now),
		Position: world,
		Size:     Vec2{MinNoteSize, MinNoteSize},
		Color:    DefaultColorIndex,
	}
	d.MaxZIndex++
	n.ZIndex = d.MaxZIndex
	d.Notes = append(d.Notes, n)
	return n
}

// Note returns the note with the given id, or nil.
func (d *Document) Note(id string) *Note {
	for _, n := range d.Notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Remove deletes the note with the given id, reporting whether it existed.
func (d *Document) Remove(id string) bool {
	for i, n := range d.Notes {
		if n.ID == id {
			d.Notes = append(d.Notes[:i], d.Notes[i+1:]...)
			return true
		}
	}
	return false
}

// BringToFront bumps the note's z-order above every other note. MaxZIndex
// is incremented first and then assigned, so recency order is strict with
// no ties.
func (d *Document) BringToFront(id string) {
	n := d.Note(id)
	if n == nil {
		return
	}
	d.MaxZIndex++
	n.ZIndex = d.MaxZIndex
}

// NotesBounds returns the axis-aligned bounding box over all notes' world
// rectangles. ok is false when the document has no notes.
func (d *Document) NotesBounds() (bounds Rect, ok bool) {
	for i, n := range d.Notes {
		if i == 0 {
			bounds = n.Rect()
			continue
		}
		bounds = bounds.Union(n.Rect())
	}
	return bounds, len(d.Notes) > 0
}

// NoteAt returns the topmost note whose rectangle contains the world point,
// or nil. Ties cannot occur: z-order bumps guarantee distinct ZIndex values.
func (d *Document) NoteAt(world Vec2) *Note {
	var hit *Note
	for _, n := range d.Notes {
		if n.Rect().Contains(world.X, world.Y) {
			if hit == nil || n.ZIndex > hit.ZIndex {
				hit = n
			}
		}
	}
	return hit
}
