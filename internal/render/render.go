package render

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/ironsheep/brick-mosaic-mcp/internal/mosaic"
	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

// Fixed drawing colors.
const (
	FallbackBackground = "#111827"
)

var (
	squareOutline = gg.RGBA{R: 0, G: 0, B: 0, A: 0.65}
	plateBorder   = gg.RGBA{R: 0, G: 0, B: 0, A: 0.7}
)

// Connector circle radius as a fraction of the cell size.
const connectorRatio = 0.32

// metrics holds the per-render stroke geometry shared by every cell.
type metrics struct {
	cell          float64
	half          float64
	radius        float64
	innerRadius   float64
	outlineWidth  float64
	outlineOffset float64
	borderWidth   float64
	hasOutline    bool
}

func newMetrics(cellSize int) metrics {
	cs := float64(cellSize)
	ow := math.Max(0.5, math.Min(1.5, math.Floor(cs*0.05)))
	return metrics{
		cell:          cs,
		half:          cs / 2,
		radius:        math.Max(1, cs/2),
		innerRadius:   cs * connectorRatio,
		outlineWidth:  ow,
		outlineOffset: ow / 2,
		borderWidth:   math.Max(1, cs*0.05),
		hasOutline:    cellSize >= 2,
	}
}

// Render draws grid as a width x height mosaic of cellSize-pixel studs.
//
// Cells are placed by their X and Y fields, so grid may be any subset of the
// mosaic; positions without a cell keep the background. An empty grid, or a
// non-positive size, returns an empty image.
func Render(grid []mosaic.MappedPixel, width, height, cellSize int, mode shape.Mode) (*image.RGBA, error) {
	if len(grid) == 0 || width <= 0 || height <= 0 || cellSize <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0)), nil
	}

	dc := gg.NewContext(width*cellSize, height*cellSize)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex(FallbackBackground))

	m := newMetrics(cellSize)
	global := shape.Normalize(string(mode))

	for _, px := range grid {
		if px.X < 0 || px.X >= width || px.Y < 0 || px.Y >= height || px.Hex == "" {
			continue
		}
		cellMode := global
		if px.Shape != shape.None {
			cellMode = shape.Normalize(string(px.Shape))
		}

		x := float64(px.X) * m.cell
		y := float64(px.Y) * m.cell
		if err := drawCell(dc, m, cellMode, x, y, px.Hex); err != nil {
			return nil, fmt.Errorf("failed to draw cell (%d,%d): %w", px.Y, px.X, err)
		}
	}

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("unexpected canvas image type %T", dc.Image())
	}
	return img, nil
}

func drawCell(dc *gg.Context, m metrics, mode shape.Mode, x, y float64, hex string) error {
	cx, cy := x+m.half, y+m.half

	switch mode {
	case shape.SquareTile:
		if err := fillSquare(dc, m, x, y, hex); err != nil {
			return err
		}
		return outlineSquare(dc, m, x, y)

	case shape.RoundPlate:
		if err := fillCircle(dc, cx, cy, m.radius, hex); err != nil {
			return err
		}
		return connector(dc, m, cx, cy, hex)

	case shape.SquarePlate:
		if err := fillSquare(dc, m, x, y, hex); err != nil {
			return err
		}
		if err := connector(dc, m, cx, cy, hex); err != nil {
			return err
		}
		return outlineSquare(dc, m, x, y)

	default:
		return fillCircle(dc, cx, cy, m.radius, hex)
	}
}

func fillCircle(dc *gg.Context, cx, cy, r float64, hex string) error {
	dc.SetHexColor(hex)
	dc.DrawCircle(cx, cy, r)
	return dc.Fill()
}

func fillSquare(dc *gg.Context, m metrics, x, y float64, hex string) error {
	dc.SetHexColor(hex)
	dc.DrawRectangle(x, y, m.cell, m.cell)
	return dc.Fill()
}

// connector draws the raised stud: the inner circle filled in the cell color
// and stroked with the plate border.
func connector(dc *gg.Context, m metrics, cx, cy float64, hex string) error {
	dc.SetHexColor(hex)
	dc.DrawCircle(cx, cy, m.innerRadius)
	if err := dc.FillPreserve(); err != nil {
		return err
	}
	dc.SetColor(plateBorder.Color())
	dc.SetLineWidth(m.borderWidth)
	return dc.Stroke()
}

func outlineSquare(dc *gg.Context, m metrics, x, y float64) error {
	if !m.hasOutline {
		return nil
	}
	dc.SetColor(squareOutline.Color())
	dc.SetLineWidth(m.outlineWidth)
	dc.DrawRectangle(x+m.outlineOffset, y+m.outlineOffset, m.cell-m.outlineWidth, m.cell-m.outlineWidth)
	return dc.Stroke()
}
