package infinote

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestViewportDefaults(t *testing.T) {
	v := NewViewport(800, 600)
	if v.Zoom != 1.0 {
		t.Errorf("Zoom = %f, want 1.0", v.Zoom)
	}
	if v.Pan != (Vec2{}) {
		t.Errorf("Pan = %v, want (0,0)", v.Pan)
	}
}

func TestToWorldRoundtrip(t *testing.T) {
	v := NewViewport(800, 600)
	v.Pan = Vec2{120, -45}
	v.Zoom = 2.5

	p := Vec2{333, 217}
	back := v.ToScreen(v.ToWorld(p))
	if !approxEqual(back.X, p.X, epsilon) || !approxEqual(back.Y, p.Y, epsilon) {
		t.Errorf("ToScreen(ToWorld(%v)) = %v", p, back)
	}
}

func TestToWorldTransform(t *testing.T) {
	v := NewViewport(800, 600)
	v.Pan = Vec2{100, 50}
	v.Zoom = 2.0

	// world = (screen - pan) / zoom
	w := v.ToWorld(Vec2{300, 250})
	if !approxEqual(w.X, 100, epsilon) || !approxEqual(w.Y, 100, epsilon) {
		t.Errorf("ToWorld(300,250) = %v, want (100,100)", w)
	}
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	v := NewViewport(800, 600)
	v.Pan = Vec2{37, -12}
	v.Zoom = 1.3

	anchor := Vec2{412, 305}
	before := v.ToWorld(anchor)
	v.ZoomAt(anchor, 2.6)
	after := v.ToWorld(anchor)

	if !approxEqual(before.X, after.X, 1e-9) || !approxEqual(before.Y, after.Y, 1e-9) {
		t.Errorf("world point under anchor moved: %v -> %v", before, after)
	}
	if !approxEqual(v.Zoom, 2.6, epsilon) {
		t.Errorf("Zoom = %f, want 2.6", v.Zoom)
	}
}

func TestZoomClamped(t *testing.T) {
	v := NewViewport(800, 600)
	v.ZoomAt(Vec2{400, 300}, 100)
	if v.Zoom != MaxZoom {
		t.Errorf("Zoom = %f, want clamped to %f", v.Zoom, MaxZoom)
	}
	v.ZoomAt(Vec2{400, 300}, 0.0001)
	if v.Zoom != MinZoom {
		t.Errorf("Zoom = %f, want clamped to %f", v.Zoom, MinZoom)
	}
}

func TestWheelZoomCursorInvariant(t *testing.T) {
	v := NewViewport(800, 600)
	cursor := Vec2{200, 150}
	before := v.ToWorld(cursor)

	for i := 0; i < 5; i++ {
		v.WheelZoomAt(cursor, 1)
	}
	if v.Zoom <= 1.0 {
		t.Fatalf("Zoom = %f after zooming in, want > 1", v.Zoom)
	}
	after := v.ToWorld(cursor)
	if !approxEqual(before.X, after.X, 1e-9) || !approxEqual(before.Y, after.Y, 1e-9) {
		t.Errorf("world point under cursor moved: %v -> %v", before, after)
	}

	for i := 0; i < 5; i++ {
		v.WheelZoomAt(cursor, -1)
	}
	if v.Zoom >= 1.01 {
		t.Errorf("Zoom = %f after symmetric zoom out, want near 1", v.Zoom)
	}
}

func TestPinchZoomAt(t *testing.T) {
	v := NewViewport(800, 600)
	mid := Vec2{400, 300}
	before := v.ToWorld(mid)

	v.PinchZoomAt(mid, 2.0, Vec2{})
	if !approxEqual(v.Zoom, 2.0, epsilon) {
		t.Errorf("Zoom = %f, want 2.0", v.Zoom)
	}
	after := v.ToWorld(mid)
	if !approxEqual(before.X, after.X, 1e-9) || !approxEqual(before.Y, after.Y, 1e-9) {
		t.Errorf("world point under midpoint moved: %v -> %v", before, after)
	}

	// Midpoint drift pans the canvas.
	pan := v.Pan
	v.PinchZoomAt(mid, 1.0, Vec2{30, -10})
	if !approxEqual(v.Pan.X, pan.X+30, epsilon) || !approxEqual(v.Pan.Y, pan.Y-10, epsilon) {
		t.Errorf("Pan = %v, want drift applied to %v", v.Pan, pan)
	}
}

func TestSetStateDefaultsZeroZoom(t *testing.T) {
	v := NewViewport(800, 600)
	v.SetState(ViewportState{Pan: Vec2{10, 20}})
	if v.Zoom != 1.0 {
		t.Errorf("Zoom = %f, want 1.0 for zero-value state", v.Zoom)
	}
	v.SetState(ViewportState{Zoom: 99})
	if v.Zoom != MaxZoom {
		t.Errorf("Zoom = %f, want clamped", v.Zoom)
	}
}

func TestFitTargetEmptyDocument(t *testing.T) {
	v := NewViewport(800, 600)
	v.Pan = Vec2{500, 500}
	v.Zoom = 3

	s := v.FitTarget(NewDocument())
	if s.Zoom != 1.0 || s.Pan != (Vec2{}) {
		t.Errorf("FitTarget(empty) = %+v, want default transform", s)
	}
}

func TestFitTargetCentersNotes(t *testing.T) {
	v := NewViewport(800, 600)
	doc := NewDocument()
	n := doc.CreateNote(Vec2{1000, 1000}, testTime())
	n.Size = Vec2{200, 200}

	v.Reset(doc)

	// The bounding-box center must land on the viewport center.
	s := v.ToScreen(Vec2{1100, 1100})
	if !approxEqual(s.X, 400, 1e-6) || !approxEqual(s.Y, 300, 1e-6) {
		t.Errorf("notes center maps to %v, want (400,300)", s)
	}
	// A fifth of the viewport stays empty around the box.
	wantZoom := 600.0 * (1 - FitMargin) / 200.0
	if wantZoom > MaxZoom {
		wantZoom = MaxZoom
	}
	if !approxEqual(v.Zoom, wantZoom, 1e-9) {
		t.Errorf("Zoom = %f, want %f", v.Zoom, wantZoom)
	}
}

func TestPanByCancelsGlide(t *testing.T) {
	v := NewViewport(800, 600)
	v.GlideTo(ViewportState{Pan: Vec2{100, 100}, Zoom: 2}, 1.0)
	if !v.Gliding() {
		t.Fatal("Gliding() = false after GlideTo")
	}
	v.PanBy(Vec2{1, 1})
	if v.Gliding() {
		t.Error("Gliding() = true after PanBy, want canceled")
	}
}

func TestGlideConverges(t *testing.T) {
	v := NewViewport(800, 600)
	target := ViewportState{Pan: Vec2{-250, 90}, Zoom: 0.5}
	v.GlideTo(target, 0.5)

	for i := 0; i < 120 && v.Gliding(); i++ {
		v.Step(1.0 / 60.0)
	}
	if v.Gliding() {
		t.Fatal("glide never finished")
	}
	if !approxEqual(v.Pan.X, target.Pan.X, 0.01) ||
		!approxEqual(v.Pan.Y, target.Pan.Y, 0.01) ||
		!approxEqual(v.Zoom, target.Zoom, 0.01) {
		t.Errorf("glide ended at pan=%v zoom=%f, want %+v", v.Pan, v.Zoom, target)
	}
}

func TestGlideZeroDurationIsInstant(t *testing.T) {
	v := NewViewport(800, 600)
	v.GlideTo(ViewportState{Pan: Vec2{5, 6}, Zoom: 2}, 0)
	if v.Gliding() {
		t.Error("Gliding() = true for zero duration")
	}
	if v.Pan != (Vec2{5, 6}) || v.Zoom != 2 {
		t.Errorf("pan=%v zoom=%f, want instant apply", v.Pan, v.Zoom)
	}
}

func TestVisibleBounds(t *testing.T) {
	v := NewViewport(800, 600)
	v.Zoom = 2.0
	b := v.VisibleBounds()
	if !approxEqual(b.Width, 400, epsilon) || !approxEqual(b.Height, 300, epsilon) {
		t.Errorf("VisibleBounds = %+v, want 400x300 at zoom 2", b)
	}
}
