// Package infinote is the engine behind an offline sticky-note board on a
// pannable, zoomable infinite canvas.
//
// The package reconciles continuous pointer and multi-touch input with a
// scalar pan/zoom transform and per-note drag/resize gestures. Taps, clicks,
// drags, double-taps, and pinches all arrive through the same input channel;
// the [Classifier] turns them into discrete intents without misreading one
// as another.
//
// # Quick start
//
// A [Board] owns the document, the viewport, and all gesture state. Feed it
// raw pointer events in screen coordinates and advance it once per frame:
//
//	board := infinote.NewBoard(infinote.Options{Width: 1280, Height: 800})
//	board.PointerDown(infinote.PointerMouse, 0, pos, time.Now())
//	board.Tick(time.Now(), dt)
//
// The examples/board directory contains a complete interactive frontend
// built on [Ebitengine].
//
// # Coordinate spaces
//
// Notes live in world space. Input arrives in screen space. The [Viewport]
// converts between the two: world = (screen - pan) / zoom. Every zoom
// operation holds the world point under the cursor or pinch midpoint fixed.
//
// # Persistence
//
// Documents persist as one opaque JSON value through a [Store]. The default
// arrangement is a SQLite record store with a plain-text file fallback; see
// [NewRecordStore], [NewBlobStore], and [NewTieredStore]. Saves are
// debounced and fire-and-forget via [Saver]. Backups round-trip through
// [ExportBackup] and [ImportBackup].
//
// [Ebitengine]: https://ebitengine.org
package infinote
