package infinote

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ViewportState is the persisted portion of a viewport: the world-to-screen
// translation offset and the uniform scale factor.
type ViewportState struct {
	Pan  Vec2    `json:"pan"`
	Zoom float64 `json:"zoom"`
}

// glideAnim holds active tweens for an animated pan/zoom transition.
type glideAnim struct {
	panX, panY *gween.Tween
	zoom       *gween.Tween
	done       bool
}

// Viewport owns the pan/zoom transform between world space and screen space.
// Pan is unconstrained (infinite canvas); Zoom is always clamped to
// [MinZoom, MaxZoom]. Width and Height are the screen dimensions of the
// viewport element and are not persisted.
type Viewport struct {
	Pan    Vec2
	Zoom   float64
	Width  float64
	Height float64

	glide *glideAnim
}

// NewViewport creates a viewport at the default transform (zoom 1, no pan).
func NewViewport(width, height float64) *Viewport {
	return &Viewport{Zoom: 1.0, Width: width, Height: height}
}

// State returns the persistable pan/zoom pair.
func (v *Viewport) State() ViewportState {
	return ViewportState{Pan: v.Pan, Zoom: v.Zoom}
}

// SetState restores a persisted pan/zoom pair, clamping zoom. A zoom of zero
// (zero-value state) is treated as 1.
func (v *Viewport) SetState(s ViewportState) {
	v.glide = nil
	v.Pan = s.Pan
	if s.Zoom == 0 {
		s.Zoom = 1.0
	}
	v.Zoom = clamp(s.Zoom, MinZoom, MaxZoom)
}

// --- Coordinate transform ---

// ToWorld converts a screen-space point to world space.
func (v *Viewport) ToWorld(s Vec2) Vec2 {
	return Vec2{(s.X - v.Pan.X) / v.Zoom, (s.Y - v.Pan.Y) / v.Zoom}
}

// ToScreen converts a world-space point to screen space.
func (v *Viewport) ToScreen(w Vec2) Vec2 {
	return Vec2{w.X*v.Zoom + v.Pan.X, w.Y*v.Zoom + v.Pan.Y}
}

// VisibleBounds returns the world-space rectangle currently on screen.
func (v *Viewport) VisibleBounds() Rect {
	tl := v.ToWorld(Vec2{0, 0})
	br := v.ToWorld(Vec2{v.Width, v.Height})
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

// --- Pan and zoom operations ---

// PanBy adds a screen-space delta to the pan offset. No clamping.
// Cancels any glide in progress: a live gesture always wins.
func (v *Viewport) PanBy(delta Vec2) {
	v.glide = nil
	v.Pan = v.Pan.Add(delta)
}

// ZoomAt sets the zoom to newZoom (clamped) while keeping the world point
// under the given screen coordinate fixed.
func (v *Viewport) ZoomAt(screen Vec2, newZoom float64) {
	v.glide = nil
	nz := clamp(newZoom, MinZoom, MaxZoom)
	w := v.ToWorld(screen)
	v.Zoom = nz
	// Pan so that w maps back to screen: screen = w*zoom + pan.
	v.Pan = screen.Sub(w.Scale(nz))
}

// WheelZoomAt applies one wheel notch at the given screen position.
// The step is ±(WheelZoomFactor * currentZoom)/2 so zooming feels uniform
// across the zoom range; the cursor's world point stays under the cursor.
func (v *Viewport) WheelZoomAt(screen Vec2, dir int) {
	step := WheelZoomFactor * v.Zoom / 2
	if dir < 0 {
		step = -step
	}
	v.ZoomAt(screen, v.Zoom+step)
}

// PinchZoomAt applies one pinch frame: factor is the ratio of the current
// finger distance to the previous frame's, mid is the pinch midpoint in
// screen space, and midDelta is the midpoint's screen drift since the
// previous frame. The midpoint's world coordinate stays fixed under the
// midpoint, and the drift pans the canvas, so a simultaneous pinch+drag
// zooms and pans together.
func (v *Viewport) PinchZoomAt(mid Vec2, factor float64, midDelta Vec2) {
	v.ZoomAt(mid, v.Zoom*factor)
	v.Pan = v.Pan.Add(midDelta)
}

// --- Reset / fit ---

// FitTarget computes the pan/zoom that fits all notes in doc with FitMargin
// left around the bounding box. With no notes it is the default transform.
func (v *Viewport) FitTarget(doc *Document) ViewportState {
	bounds, ok := doc.NotesBounds()
	if !ok {
		return ViewportState{Pan: Vec2{}, Zoom: 1.0}
	}
	fitZoom := clamp(
		min(v.Width*(1-FitMargin)/bounds.Width, v.Height*(1-FitMargin)/bounds.Height),
		MinZoom, MaxZoom)
	// Pan so the bounding-box center lands on the viewport center.
	c := bounds.Center()
	pan := Vec2{v.Width/2 - c.X*fitZoom, v.Height/2 - c.Y*fitZoom}
	return ViewportState{Pan: pan, Zoom: fitZoom}
}

// Reset immediately applies the fit transform: default zoom 1, pan (0,0)
// when the document is empty, otherwise the FitTarget transform.
func (v *Viewport) Reset(doc *Document) {
	t := v.FitTarget(doc)
	v.glide = nil
	v.Pan = t.Pan
	v.Zoom = t.Zoom
}

// GlideTo animates pan and zoom to the target state over duration seconds.
// Advance the animation with Step. Any direct pan/zoom operation cancels it.
func (v *Viewport) GlideTo(target ViewportState, duration float32) {
	if duration <= 0 {
		v.glide = nil
		v.Pan = target.Pan
		v.Zoom = clamp(target.Zoom, MinZoom, MaxZoom)
		return
	}
	v.glide = &glideAnim{
		panX: gween.New(float32(v.Pan.X), float32(target.Pan.X), duration, ease.OutQuad),
		panY: gween.New(float32(v.Pan.Y), float32(target.Pan.Y), duration, ease.OutQuad),
		zoom: gween.New(float32(v.Zoom), float32(clamp(target.Zoom, MinZoom, MaxZoom)), duration, ease.OutQuad),
	}
}

// GlideToFit animates to the fit-all-notes transform.
func (v *Viewport) GlideToFit(doc *Document, duration float32) {
	v.GlideTo(v.FitTarget(doc), duration)
}

// Gliding reports whether a glide animation is in progress.
func (v *Viewport) Gliding() bool { return v.glide != nil }

// Step advances any glide animation by dt seconds.
func (v *Viewport) Step(dt float32) {
	g := v.glide
	if g == nil {
		return
	}
	x, _ := g.panX.Update(dt)
	y, _ := g.panY.Update(dt)
	z, done := g.zoom.Update(dt)
	v.Pan = Vec2{float64(x), float64(y)}
	v.Zoom = float64(z)
	if done {
		v.glide = nil
	}
}
