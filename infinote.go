package infinote

import (
	"image/color"
	"math"
	"time"
)

// --- Tunable constants ---

const (
	// MinZoom and MaxZoom bound the viewport scale factor.
	MinZoom = 0.1
	MaxZoom = 5.0

	// MinNoteSize is the smallest allowed note width or height in world units.
	MinNoteSize = 150.0

	// GridSize is the snap grid applied to note position and size when a
	// drag or resize completes.
	GridSize = 10.0

	// WheelZoomFactor scales the per-notch wheel zoom step. The step is
	// ±(WheelZoomFactor * currentZoom)/2.
	WheelZoomFactor = 0.05

	// FitMargin is the fraction of the viewport left empty around the note
	// bounding box by a reset-view fit.
	FitMargin = 0.2

	// ResizeHandleSize is the side length, in world units, of the square
	// resize region anchored to a note's bottom-right corner.
	ResizeHandleSize = 40.0
)

// Gesture disambiguation thresholds.
const (
	// clickSlop is the per-axis displacement under which a mouse
	// press/release on empty canvas counts as a click rather than a pan.
	clickSlop = 5.0

	// touchTapSlop is the total movement under which a single-finger touch
	// counts as a tap.
	touchTapSlop = 10.0

	// dragThresholdMouse and dragThresholdTouch are the movement distances
	// past which a press on a note is promoted to a drag.
	dragThresholdMouse = 5.0
	dragThresholdTouch = 10.0

	// tapMaxDuration is the longest a single-finger touch may stay down and
	// still count as a tap.
	tapMaxDuration = 250 * time.Millisecond

	// doubleTapWindow is the interval within which a second qualifying
	// click/tap upgrades the first into a double-click/double-tap.
	doubleTapWindow = 300 * time.Millisecond

	// doubleTapRadius is the maximum distance between two taps for them to
	// form a double-tap.
	doubleTapRadius = 40.0

	// createDelay is how long a qualifying click/tap on empty canvas is held
	// back before it creates a note, leaving room for a second click to
	// reinterpret the pair as a reset-view double-click instead.
	createDelay = 300 * time.Millisecond
)

// --- Geometry ---

// Vec2 is a 2D vector used for positions, offsets, sizes, and deltas
// throughout the API.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by f.
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.X+r.Width, other.X+other.Width)
	maxY := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// snapToGrid rounds v to the nearest multiple of GridSize.
func snapToGrid(v float64) float64 {
	return math.Round(v/GridSize) * GridSize
}

// --- Color palette ---

// PaletteColor is one of the fixed note colors.
type PaletteColor struct {
	Name    string
	R, G, B uint8
}

// RGBA returns the palette entry as an opaque color.RGBA.
func (p PaletteColor) RGBA() color.RGBA {
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}
}

// Palette is the fixed set of note colors. Notes reference entries by index.
var Palette = [10]PaletteColor{
	{"rose", 0xf8, 0xc8, 0xcd},
	{"peach", 0xfc, 0xd8, 0xb8},
	{"sand", 0xf2, 0xe2, 0xc4},
	{"butter", 0xfd, 0xf3, 0xa7}, // soft yellow, the default
	{"mint", 0xc8, 0xf0, 0xd4},
	{"sage", 0xd4, 0xe6, 0xc3},
	{"sky", 0xc5, 0xe4, 0xf7},
	{"periwinkle", 0xcf, 0xd8, 0xf8},
	{"lilac", 0xe6, 0xd4, 0xf2},
	{"slate", 0xd8, 0xdd, 0xe2},
}

// DefaultColorIndex is the palette index assigned to newly created notes.
const DefaultColorIndex = 3

// --- Input events ---

// PointerKind distinguishes the input device a pointer event came from.
// Mouse and touch use different tap/drag thresholds.
type PointerKind uint8

const (
	PointerMouse PointerKind = iota
	PointerTouch
)

// PointerPhase is the stage of a pointer event within its press sequence.
type PointerPhase uint8

const (
	PhaseDown   PointerPhase = iota // button pressed or finger down
	PhaseMove                       // moved while down (or hover for mouse)
	PhaseUp                         // released
	PhaseCancel                     // sequence interrupted by the platform
)

// Target identifies what a pointer event landed on. Target identity is
// checked before gesture classification: chrome events are never interpreted
// as viewport or note gestures.
type Target uint8

const (
	TargetCanvas       Target = iota // empty canvas
	TargetNoteBody                   // a note, outside its resize handle
	TargetResizeHandle               // the bottom-right resize region of a note
	TargetChrome                     // swatches, delete controls, open palettes
)

// PointerEvent is one raw pointer/touch event, in screen coordinates.
// Pointer slot 0 is the mouse; touches occupy slots 1 and up.
type PointerEvent struct {
	Phase   PointerPhase
	Kind    PointerKind
	Pointer int
	Pos     Vec2
	Target  Target
	NoteID  string // set when Target is note-scoped
	Time    time.Time
}

// WheelEvent is one mouse-wheel notch at a screen position. Dir is +1 to
// zoom in and -1 to zoom out.
type WheelEvent struct {
	Pos Vec2
	Dir int
}
