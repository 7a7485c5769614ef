package infinote

import "time"

// Synthetic input helpers drive a Board through the same entry points real
// input uses, with explicit timestamps. Each helper returns the time after
// the injected sequence so callers can chain gestures without tracking
// clock arithmetic themselves. Ticks are interleaved at frame cadence so
// delayed gestures mature exactly as they would live.

// injectFrame is the simulated frame interval for injected sequences.
const injectFrame = 16 * time.Millisecond

// InjectWait advances the board's clock to the target time in frame-sized
// ticks, maturing any delayed gesture (note creation, deferred focus) on
// the way.
func (b *Board) InjectWait(now, until time.Time) time.Time {
	for now.Before(until) {
		now = now.Add(injectFrame)
		if now.After(until) {
			now = until
		}
		b.Tick(now, float32(injectFrame.Seconds()))
	}
	return now
}

// InjectClick presses and releases a mouse pointer at pos without moving.
// The release happens one frame after the press.
func (b *Board) InjectClick(pos Vec2, now time.Time) time.Time {
	b.PointerDown(PointerMouse, 0, pos, now)
	b.Tick(now, float32(injectFrame.Seconds()))
	now = now.Add(injectFrame)
	b.PointerUp(PointerMouse, 0, pos, now)
	b.Tick(now, float32(injectFrame.Seconds()))
	return now
}

// InjectTap presses and releases a touch pointer at pos, held briefly
// enough to qualify as a tap.
func (b *Board) InjectTap(pos Vec2, now time.Time) time.Time {
	b.PointerDown(PointerTouch, 1, pos, now)
	b.Tick(now, float32(injectFrame.Seconds()))
	now = now.Add(100 * time.Millisecond)
	b.PointerUp(PointerTouch, 1, pos, now)
	b.Tick(now, float32(injectFrame.Seconds()))
	return now
}

// InjectDoubleTap performs two taps at pos within the double-tap window.
func (b *Board) InjectDoubleTap(pos Vec2, now time.Time) time.Time {
	now = b.InjectTap(pos, now)
	now = now.Add(150 * time.Millisecond)
	return b.InjectTap(pos, now)
}

// InjectDoubleClick performs two mouse clicks at pos within the double-tap
// window.
func (b *Board) InjectDoubleClick(pos Vec2, now time.Time) time.Time {
	now = b.InjectClick(pos, now)
	now = now.Add(150 * time.Millisecond)
	return b.InjectClick(pos, now)
}

// InjectDrag presses at from, moves through steps-1 interpolated positions
// one frame apart, and releases at to. Minimum steps is 1 (a single move
// straight to the destination).
func (b *Board) InjectDrag(kind PointerKind, from, to Vec2, steps int, now time.Time) time.Time {
	if steps < 1 {
		steps = 1
	}
	pointer := 0
	if kind == PointerTouch {
		pointer = 1
	}
	b.PointerDown(kind, pointer, from, now)
	b.Tick(now, float32(injectFrame.Seconds()))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		now = now.Add(injectFrame)
		b.PointerMove(kind, pointer, Vec2{
			X: from.X + (to.X-from.X)*t,
			Y: from.Y + (to.Y-from.Y)*t,
		}, now)
		b.Tick(now, float32(injectFrame.Seconds()))
	}
	now = now.Add(injectFrame)
	b.PointerUp(kind, pointer, to, now)
	b.Tick(now, float32(injectFrame.Seconds()))
	return now
}

// InjectPinch places two touch pointers at a0/b0, moves them through
// steps interpolated positions to a1/b1, and lifts both. Drives pinch zoom
// and two-finger pan.
func (b *Board) InjectPinch(a0, b0, a1, b1 Vec2, steps int, now time.Time) time.Time {
	if steps < 1 {
		steps = 1
	}
	b.PointerDown(PointerTouch, 1, a0, now)
	now = now.Add(injectFrame)
	b.PointerDown(PointerTouch, 2, b0, now)
	b.Tick(now, float32(injectFrame.Seconds()))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		now = now.Add(injectFrame)
		b.PointerMove(PointerTouch, 1, Vec2{
			X: a0.X + (a1.X-a0.X)*t,
			Y: a0.Y + (a1.Y-a0.Y)*t,
		}, now)
		b.PointerMove(PointerTouch, 2, Vec2{
			X: b0.X + (b1.X-b0.X)*t,
			Y: b0.Y + (b1.Y-b0.Y)*t,
		}, now)
		b.Tick(now, float32(injectFrame.Seconds()))
	}
	now = now.Add(injectFrame)
	b.PointerUp(PointerTouch, 1, a1, now)
	b.PointerUp(PointerTouch, 2, b1, now)
	b.Tick(now, float32(injectFrame.Seconds()))
	return now
}

// InjectWheel delivers wheel notches at pos, one frame apart. Positive
// count zooms in, negative zooms out.
func (b *Board) InjectWheel(pos Vec2, count int, now time.Time) time.Time {
	dir := 1
	if count < 0 {
		dir = -1
		count = -count
	}
	for i := 0; i < count; i++ {
		b.Wheel(pos, dir, now)
		b.Tick(now, float32(injectFrame.Seconds()))
		now = now.Add(injectFrame)
	}
	return now
}
