package infinote

import (
	"math"
	"time"
)

const maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

// --- Intents ---

// IntentType identifies a discrete gesture the classifier has recognized.
type IntentType uint8

const (
	IntentPanStart       IntentType = iota // canvas press committed to a pan
	IntentPanMove                          // pan delta for this frame
	IntentPanEnd                           // pan pointer released
	IntentPinchZoom                        // one frame of a two-finger pinch
	IntentWheelZoom                        // one wheel notch
	IntentCreateNote                       // delayed qualifying click/tap matured
	IntentResetView                        // double-click / double-tap
	IntentNotePress                        // any press on a note (z-order bump)
	IntentFocusNote                        // note tap resolved to text focus
	IntentNoteDragStart                    // note press exceeded the drag threshold
	IntentNoteDragMove                     // drag pointer position for this frame
	IntentNoteDragEnd                      // drag released (or canceled)
	IntentNoteResizeStart                  // press landed in a resize handle
	IntentNoteResizeMove                   // resize pointer position for this frame
	IntentNoteResizeEnd                    // resize released (or canceled)
)

// Intent is one classified gesture event. Exactly one controller consumes
// each intent: viewport intents and note intents are mutually exclusive by
// construction, since a single gesture owns the input until it ends.
type Intent struct {
	Type   IntentType
	NoteID string  // note-scoped intents
	Pos    Vec2    // pointer screen position (pinch: midpoint)
	Delta  Vec2    // pan delta / pinch midpoint drift
	Factor float64 // pinch distance ratio vs the previous frame
	Dir    int     // wheel direction, ±1
	// Canceled marks an end intent produced by an interrupted sequence.
	// The consumer keeps the last applied value and skips release snapping.
	Canceled bool
}

// --- Gesture state ---

// gestureKind is the single tagged variant tracking what the active pointer
// sequence currently means. At most one gesture is active at a time.
type gestureKind uint8

const (
	gestureNone        gestureKind = iota
	gesturePendingPan              // canvas press, below the click/tap slop
	gesturePanning                 // canvas press committed to panning
	gesturePinching                // exactly two touch points down
	gesturePendingNote             // note press, below the drag threshold
	gestureDraggingNote
	gestureResizingNote
)

// pointerTrack is the per-slot raw pointer bookkeeping.
type pointerTrack struct {
	down      bool
	kind      PointerKind
	target    Target
	start     Vec2
	last      Vec2
	startTime time.Time
}

// scheduled is a cancellable delayed task. Arming or cancelling bumps the
// generation counter so a disambiguating event deterministically kills a
// stale pending task; firing is pulled from Tick.
type scheduled struct {
	gen    uint64
	armed  bool
	due    time.Time
	pos    Vec2
	noteID string
}

func (s *scheduled) arm(due time.Time, pos Vec2, noteID string) {
	s.gen++
	s.armed = true
	s.due = due
	s.pos = pos
	s.noteID = noteID
}

func (s *scheduled) cancel() {
	s.gen++
	s.armed = false
}

// fire reports whether the task is due, disarming it if so.
func (s *scheduled) fire(now time.Time) bool {
	if !s.armed || now.Before(s.due) {
		return false
	}
	s.gen++
	s.armed = false
	return true
}

// Classifier turns a raw stream of pointer/touch/wheel events into discrete
// intents. It is a pure state machine: it owns no timers and performs no
// I/O. Feed events with Pointer and Wheel, then call Tick once per frame to
// mature delayed tasks (note creation, deferred tap focus).
//
// Deliver events for a given timestamp before calling Tick with it, so a
// cancelling second event always beats the timer it races.
type Classifier struct {
	gesture   gestureKind
	owner     int // pointer slot that owns the active gesture
	ownerKind PointerKind
	noteID    string
	start     Vec2
	startTime time.Time

	tracks [maxPointers]pointerTrack

	pinch struct {
		p0, p1   int
		prevDist float64
		prevMid  Vec2
	}

	// Delayed note creation and deferred note-tap focus.
	pendingCreate scheduled
	pendingFocus  scheduled

	// Double-tap window tracking.
	lastTapTime time.Time
	lastTapPos  Vec2
	haveLastTap bool
}

// NewClassifier creates an idle classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Pointer consumes one raw pointer event and returns any intents it
// resolves immediately. Events on chrome targets are tracked but never
// classified.
func (c *Classifier) Pointer(ev PointerEvent) []Intent {
	if ev.Pointer < 0 || ev.Pointer >= maxPointers {
		return nil
	}
	switch ev.Phase {
	case PhaseDown:
		return c.pointerDown(ev)
	case PhaseMove:
		return c.pointerMove(ev)
	case PhaseUp:
		return c.pointerUp(ev, false)
	case PhaseCancel:
		return c.pointerUp(ev, true)
	}
	return nil
}

// Wheel consumes one wheel notch.
func (c *Classifier) Wheel(ev WheelEvent) []Intent {
	return []Intent{{Type: IntentWheelZoom, Pos: ev.Pos, Dir: ev.Dir}}
}

// Tick matures delayed tasks that have reached their deadline.
func (c *Classifier) Tick(now time.Time) []Intent {
	var out []Intent
	if pos := c.pendingCreate.pos; c.pendingCreate.fire(now) {
		out = append(out, Intent{Type: IntentCreateNote, Pos: pos})
	}
	if pos, id := c.pendingFocus.pos, c.pendingFocus.noteID; c.pendingFocus.fire(now) {
		out = append(out, Intent{Type: IntentFocusNote, NoteID: id, Pos: pos})
	}
	return out
}

// CancelNote drops any gesture or pending task targeting the given note,
// without emitting end intents. Called when a note is deleted mid-gesture;
// the interaction state it leaves behind is discarded by the caller.
func (c *Classifier) CancelNote(id string) {
	switch c.gesture {
	case gesturePendingNote, gestureDraggingNote, gestureResizingNote:
		if c.noteID == id {
			c.gesture = gestureNone
		}
	}
	if c.pendingFocus.noteID == id {
		c.pendingFocus.cancel()
	}
}

// PendingCreate reports whether a delayed note creation is armed.
func (c *Classifier) PendingCreate() bool { return c.pendingCreate.armed }

// --- Phase handlers ---

func (c *Classifier) pointerDown(ev PointerEvent) []Intent {
	t := &c.tracks[ev.Pointer]
	t.down = true
	t.kind = ev.Kind
	t.target = ev.Target
	t.start = ev.Pos
	t.last = ev.Pos
	t.startTime = ev.Time

	// A new press resolves any deferred tap focus: the user moved on.
	c.pendingFocus.cancel()

	if ev.Target == TargetChrome {
		return nil
	}

	var out []Intent

	if ev.Kind == PointerTouch {
		ids := c.activeTouches()
		if len(ids) == 2 {
			// Exactly two fingers: whatever was in flight becomes a pinch.
			out = c.interruptForPinch(out)
			c.beginPinch(ids[0], ids[1])
			return out
		}
		if len(ids) > 2 {
			return out // extra fingers are ignored
		}
	}

	if c.gesture != gestureNone {
		return out
	}

	switch ev.Target {
	case TargetCanvas:
		c.setGesture(gesturePendingPan, ev)
	case TargetNoteBody:
		out = append(out, Intent{Type: IntentNotePress, NoteID: ev.NoteID, Pos: ev.Pos})
		c.setGesture(gesturePendingNote, ev)
	case TargetResizeHandle:
		out = append(out,
			Intent{Type: IntentNotePress, NoteID: ev.NoteID, Pos: ev.Pos},
			Intent{Type: IntentNoteResizeStart, NoteID: ev.NoteID, Pos: ev.Pos})
		c.setGesture(gestureResizingNote, ev)
	}
	return out
}

func (c *Classifier) pointerMove(ev PointerEvent) []Intent {
	t := &c.tracks[ev.Pointer]
	prev := t.last
	t.last = ev.Pos
	if !t.down || t.target == TargetChrome {
		return nil
	}

	if c.gesture == gesturePinching {
		if ev.Pointer == c.pinch.p0 || ev.Pointer == c.pinch.p1 {
			return c.pinchMove()
		}
		return nil
	}
	if ev.Pointer != c.owner {
		return nil
	}

	switch c.gesture {
	case gesturePendingPan:
		if c.beyondTapSlop(ev.Pos) {
			c.gesture = gesturePanning
			return []Intent{
				{Type: IntentPanStart, Pos: c.start},
				{Type: IntentPanMove, Delta: ev.Pos.Sub(c.start)},
			}
		}
	case gesturePanning:
		return []Intent{{Type: IntentPanMove, Delta: ev.Pos.Sub(prev)}}
	case gesturePendingNote:
		threshold := dragThresholdMouse
		if c.ownerKind == PointerTouch {
			threshold = dragThresholdTouch
		}
		if ev.Pos.Dist(c.start) > threshold {
			c.gesture = gestureDraggingNote
			return []Intent{
				{Type: IntentNoteDragStart, NoteID: c.noteID, Pos: c.start},
				{Type: IntentNoteDragMove, NoteID: c.noteID, Pos: ev.Pos},
			}
		}
	case gestureDraggingNote:
		return []Intent{{Type: IntentNoteDragMove, NoteID: c.noteID, Pos: ev.Pos}}
	case gestureResizingNote:
		return []Intent{{Type: IntentNoteResizeMove, NoteID: c.noteID, Pos: ev.Pos}}
	}
	return nil
}

func (c *Classifier) pointerUp(ev PointerEvent, canceled bool) []Intent {
	t := &c.tracks[ev.Pointer]
	if !t.down {
		return nil
	}
	t.down = false
	t.last = ev.Pos
	if t.target == TargetChrome {
		return nil
	}

	if c.gesture == gesturePinching {
		if ev.Pointer == c.pinch.p0 || ev.Pointer == c.pinch.p1 {
			return c.endPinch(ev.Pointer)
		}
		// owner is stale from whatever gesture the pinch interrupted; a
		// release of any other pointer must not tear the pinch down.
		return nil
	}

	if c.gesture == gestureNone || ev.Pointer != c.owner {
		return nil
	}

	g := c.gesture
	c.gesture = gestureNone

	switch g {
	case gesturePendingPan:
		if canceled {
			return nil
		}
		if c.ownerKind == PointerTouch &&
			ev.Time.Sub(c.startTime) >= tapMaxDuration {
			return nil // held too long to be a tap
		}
		return c.qualifyingTap(ev)
	case gesturePanning:
		return []Intent{{Type: IntentPanEnd, Pos: ev.Pos}}
	case gesturePendingNote:
		if canceled {
			return nil
		}
		if c.ownerKind == PointerTouch {
			// Defer focus past the double-tap window so it never fights a
			// possible second tap.
			c.pendingFocus.arm(ev.Time.Add(doubleTapWindow), ev.Pos, c.noteID)
			return nil
		}
		return []Intent{{Type: IntentFocusNote, NoteID: c.noteID, Pos: ev.Pos}}
	case gestureDraggingNote:
		return []Intent{{Type: IntentNoteDragEnd, NoteID: c.noteID, Pos: ev.Pos, Canceled: canceled}}
	case gestureResizingNote:
		return []Intent{{Type: IntentNoteResizeEnd, NoteID: c.noteID, Pos: ev.Pos, Canceled: canceled}}
	}
	return nil
}

// qualifyingTap resolves a click/tap that stayed under the movement slop.
// The second of two taps inside the double-tap window resets the view and
// cancels the first tap's armed creation; otherwise creation is armed,
// delayed so a future second tap can still upgrade the pair.
func (c *Classifier) qualifyingTap(ev PointerEvent) []Intent {
	if c.haveLastTap &&
		ev.Time.Sub(c.lastTapTime) <= doubleTapWindow &&
		ev.Pos.Dist(c.lastTapPos) <= doubleTapRadius {
		c.pendingCreate.cancel()
		c.haveLastTap = false
		return []Intent{{Type: IntentResetView, Pos: ev.Pos}}
	}
	c.pendingCreate.arm(ev.Time.Add(createDelay), ev.Pos, "")
	c.haveLastTap = true
	c.lastTapTime = ev.Time
	c.lastTapPos = ev.Pos
	return nil
}

// beyondTapSlop reports whether the owner pointer has moved far enough from
// its press point that the sequence can no longer be a click/tap. Mouse uses
// a per-axis box, touch a radial distance.
func (c *Classifier) beyondTapSlop(pos Vec2) bool {
	if c.ownerKind == PointerTouch {
		return pos.Dist(c.start) >= touchTapSlop
	}
	return math.Abs(pos.X-c.start.X) >= clickSlop ||
		math.Abs(pos.Y-c.start.Y) >= clickSlop
}

// --- Pinch ---

func (c *Classifier) beginPinch(p0, p1 int) {
	c.gesture = gesturePinching
	c.pinch.p0 = p0
	c.pinch.p1 = p1
	a := c.tracks[p0].last
	b := c.tracks[p1].last
	c.pinch.prevDist = a.Dist(b)
	c.pinch.prevMid = Vec2{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

func (c *Classifier) pinchMove() []Intent {
	a := c.tracks[c.pinch.p0].last
	b := c.tracks[c.pinch.p1].last
	dist := a.Dist(b)
	mid := Vec2{(a.X + b.X) / 2, (a.Y + b.Y) / 2}

	factor := 1.0
	if c.pinch.prevDist > 0 {
		factor = dist / c.pinch.prevDist
	}
	delta := mid.Sub(c.pinch.prevMid)
	c.pinch.prevDist = dist
	c.pinch.prevMid = mid

	return []Intent{{Type: IntentPinchZoom, Pos: mid, Factor: factor, Delta: delta}}
}

// endPinch handles one of the two pinch fingers lifting. The surviving
// finger re-anchors as a pan so the canvas keeps following it.
func (c *Classifier) endPinch(lifted int) []Intent {
	surv := c.pinch.p0
	if lifted == surv {
		surv = c.pinch.p1
	}
	c.gesture = gestureNone
	if !c.tracks[surv].down {
		return nil
	}
	st := c.tracks[surv].last
	c.gesture = gesturePanning
	c.owner = surv
	c.ownerKind = PointerTouch
	c.noteID = ""
	c.start = st
	c.startTime = c.tracks[surv].startTime
	return []Intent{{Type: IntentPanStart, Pos: st}}
}

// interruptForPinch cleanly ends whatever gesture is active so a pinch can
// take over. In-flight note drags/resizes end canceled: the model keeps the
// last applied value, with no release snapping and no rollback.
func (c *Classifier) interruptForPinch(out []Intent) []Intent {
	switch c.gesture {
	case gesturePanning:
		out = append(out, Intent{Type: IntentPanEnd})
	case gestureDraggingNote:
		out = append(out, Intent{Type: IntentNoteDragEnd, NoteID: c.noteID, Canceled: true})
	case gestureResizingNote:
		out = append(out, Intent{Type: IntentNoteResizeEnd, NoteID: c.noteID, Canceled: true})
	}
	c.gesture = gestureNone
	// A pinch disambiguates away any armed creation and the tap history:
	// the first tap of a would-be double-tap must not leave a stray note.
	c.pendingCreate.cancel()
	c.haveLastTap = false
	return out
}

// --- Helpers ---

func (c *Classifier) setGesture(g gestureKind, ev PointerEvent) {
	c.gesture = g
	c.owner = ev.Pointer
	c.ownerKind = ev.Kind
	c.noteID = ev.NoteID
	c.start = ev.Pos
	c.startTime = ev.Time
}

// activeTouches returns the slots of all non-chrome touch pointers that are
// currently down, in slot order.
func (c *Classifier) activeTouches() []int {
	var ids []int
	for i := 1; i < maxPointers; i++ {
		if c.tracks[i].down && c.tracks[i].kind == PointerTouch &&
			c.tracks[i].target != TargetChrome {
			ids = append(ids, i)
		}
	}
	return ids
}
