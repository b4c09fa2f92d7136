// Package geometry sizes the stud grid for rendering and maps display
// coordinates back onto grid cells.
package geometry

import "math"

// Cell size and grid limits.
const (
	BaseRenderDimension = 2000
	MinCellSize         = 12
	MaxCellSize         = 64

	DefaultBaseGrid = 32
	DefaultMaxGrid  = 384
)

// qualitySteps raise the canvas budget as the longer grid side grows,
// checked from the largest threshold down.
var qualitySteps = []struct {
	minCells   int
	multiplier float64
}{
	{320, 4.0},
	{256, 3.5},
	{192, 3.0},
	{128, 2.75},
	{64, 2.5},
}

const defaultQuality = 2.25

// Dimensions describes a grid and the canvas it renders onto.
type Dimensions struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	CellSize     int `json:"cell_size"`
	CanvasWidth  int `json:"canvas_width"`
	CanvasHeight int `json:"canvas_height"`
}

// Cell addresses one stud.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Rect is a display area in container coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DetermineCellSize returns the rendered size of one stud for a width x
// height grid at the given device pixel scale.
//
// The canvas budget is BaseRenderDimension times a quality multiplier that
// steps up at 64, 128, 192, 256 and 320 cells, times deviceScale. It is
// divided by the longer side, floored, and clamped to [MinCellSize,
// MaxCellSize]. A zero-sized grid returns MinCellSize. A non-positive scale
// is treated as 1.
func DetermineCellSize(width, height int, deviceScale float64) int {
	maxCells := width
	if height > maxCells {
		maxCells = height
	}
	if maxCells <= 0 {
		return MinCellSize
	}
	if deviceScale <= 0 || math.IsNaN(deviceScale) || math.IsInf(deviceScale, 0) {
		deviceScale = 1
	}

	quality := defaultQuality
	for _, step := range qualitySteps {
		if maxCells >= step.minCells {
			quality = step.multiplier
			break
		}
	}

	budget := BaseRenderDimension * quality * deviceScale
	ideal := int(math.Floor(budget / float64(maxCells)))
	if ideal == 0 {
		ideal = MinCellSize
	}
	return clampInt(ideal, MinCellSize, MaxCellSize)
}

// NewDimensions computes Dimensions for a grid at deviceScale.
func NewDimensions(width, height int, deviceScale float64) Dimensions {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cs := DetermineCellSize(width, height, deviceScale)
	return Dimensions{
		Width:        width,
		Height:       height,
		CellSize:     cs,
		CanvasWidth:  width * cs,
		CanvasHeight: height * cs,
	}
}

// Cells returns the number of studs in the grid.
func (d Dimensions) Cells() int {
	return d.Width * d.Height
}

// Contains reports whether row and col lie inside the grid.
func (d Dimensions) Contains(row, col int) bool {
	return row >= 0 && row < d.Height && col >= 0 && col < d.Width
}

// Index returns the row-major flat index of a cell. The cell must be inside
// the grid.
func (d Dimensions) Index(row, col int) int {
	return row*d.Width + col
}

// CellAt returns the cell for a flat index.
func (d Dimensions) CellAt(index int) Cell {
	if d.Width == 0 {
		return Cell{}
	}
	return Cell{Row: index / d.Width, Col: index % d.Width}
}

// PointerToCell maps a pointer position to the cell under it.
//
// The canvas is assumed to be drawn into container scaled uniformly to fit
// and centered on both axes. pointerX and pointerY are in the same coordinate
// space as container. The second result is false when the pointer falls
// outside the drawn image or the grid is empty.
func PointerToCell(pointerX, pointerY float64, container Rect, dims Dimensions) (Cell, bool) {
	if dims.Width <= 0 || dims.Height <= 0 || container.Width <= 0 || container.Height <= 0 {
		return Cell{}, false
	}
	canvasW := float64(dims.CanvasWidth)
	canvasH := float64(dims.CanvasHeight)
	if canvasW <= 0 || canvasH <= 0 {
		canvasW, canvasH = float64(dims.Width), float64(dims.Height)
	}

	scale := math.Min(container.Width/canvasW, container.Height/canvasH)
	drawnW := canvasW * scale
	drawnH := canvasH * scale
	offsetX := (container.Width - drawnW) / 2
	offsetY := (container.Height - drawnH) / 2

	x := pointerX - container.Left - offsetX
	y := pointerY - container.Top - offsetY
	if x < 0 || y < 0 || x >= drawnW || y >= drawnH {
		return Cell{}, false
	}

	col := int(math.Floor(x / drawnW * float64(dims.Width)))
	row := int(math.Floor(y / drawnH * float64(dims.Height)))
	if !dims.Contains(row, col) {
		return Cell{}, false
	}
	return Cell{Row: row, Col: col}, true
}

// AllowedSizes lists the multiples of base up to and including max.
func AllowedSizes(base, max int) []int {
	if base <= 0 {
		return nil
	}
	var sizes []int
	for v := base; v <= max; v += base {
		sizes = append(sizes, v)
	}
	return sizes
}

// ClampToAllowed returns the entry of sizes nearest to v; the earlier entry
// wins ties. With no sizes, v is returned unchanged.
func ClampToAllowed(v int, sizes []int) int {
	if len(sizes) == 0 {
		return v
	}
	nearest := sizes[0]
	minDiff := absInt(v - nearest)
	for _, s := range sizes[1:] {
		if d := absInt(v - s); d < minDiff {
			minDiff, nearest = d, s
		}
	}
	return nearest
}

// GridFromPixels converts a pixel size into a stud count per side at one
// stud per base pixels, never less than one.
func GridFromPixels(width, height, base int) (cols, rows int) {
	if base <= 0 {
		return 1, 1
	}
	cols = int(math.Round(float64(width) / float64(base)))
	rows = int(math.Round(float64(height) / float64(base)))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
