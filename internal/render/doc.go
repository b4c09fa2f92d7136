// Package render rasterizes stud grids into preview bitmaps.
//
// Render draws every cell with the gg software rasterizer onto a canvas of
// width*cellSize x height*cellSize pixels, pre-filled with FallbackBackground.
// Each cell uses its own shape override when it has one and the global mode
// otherwise.
//
// # Shapes
//
//   - Round tile: filled circle of radius cellSize/2.
//   - Square tile: filled square with a thin dark outline (cellSize >= 2).
//   - Round plate: round tile plus a stroked connector circle of radius
//     0.32*cellSize.
//   - Square plate: square tile with the same connector circle.
//
// # Sections
//
// DrawSections overlays instruction section boundaries and 1-based section
// numbers on a rendered preview using pixel-exact lines and a small bitmap
// font, so the preview matches the exported instruction pages.
//
// # Scheduling
//
// Scheduler coalesces renders for large grids: requests for grids above
// LargeGridCells are delayed by its delay and only the last one runs.
package render
