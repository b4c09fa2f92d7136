package render

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/ironsheep/brick-mosaic-mcp/internal/colorspace"
)

// SectionOptions controls the section overlay drawn over a preview.
type SectionOptions struct {
	// SectionSize is the side of a section in studs.
	SectionSize int
	// CellSize is the side of a stud in preview pixels.
	CellSize int
	// LineHex is the boundary color. Defaults to semi-transparent white.
	LineHex string
	// ShowNumbers labels each section with its 1-based row-major number.
	ShowNumbers bool
}

var (
	defaultSectionLine = color.RGBA{255, 255, 255, 200}
	labelForeground    = color.RGBA{255, 255, 255, 255}
	labelBackground    = color.RGBA{0, 0, 0, 180}
)

// DrawSections returns a copy of img with instruction section boundaries
// drawn every SectionSize*CellSize pixels. Sections are numbered in the same
// row-major order as the exported instructions.
func DrawSections(img image.Image, opts SectionOptions) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	if opts.SectionSize <= 0 || opts.CellSize <= 0 {
		return result
	}

	lineColor := defaultSectionLine
	if opts.LineHex != "" {
		if rgb, err := colorspace.HexToRGB(opts.LineHex); err == nil {
			lineColor = color.RGBA{rgb.R, rgb.G, rgb.B, 255}
		}
	}

	spacing := opts.SectionSize * opts.CellSize
	width, height := bounds.Dx(), bounds.Dy()

	for x := spacing; x < width; x += spacing {
		for y := 0; y < height; y++ {
			result.Set(bounds.Min.X+x, bounds.Min.Y+y, lineColor)
		}
	}
	for y := spacing; y < height; y += spacing {
		for x := 0; x < width; x++ {
			result.Set(bounds.Min.X+x, bounds.Min.Y+y, lineColor)
		}
	}

	if opts.ShowNumbers {
		scale := labelScale(spacing)
		number := 1
		for y := 0; y < height; y += spacing {
			for x := 0; x < width; x += spacing {
				drawLabel(result, bounds.Min.X+x+2*scale, bounds.Min.Y+y+2*scale, strconv.Itoa(number), scale, labelForeground, labelBackground)
				number++
			}
		}
	}

	return result
}

// labelScale grows the glyphs with the section size so numbers stay legible
// on large previews.
func labelScale(spacing int) int {
	scale := spacing / 64
	if scale < 1 {
		return 1
	}
	if scale > 8 {
		return 8
	}
	return scale
}

// 3x5 pixel font for digits
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws text at (x, y) with every glyph pixel expanded to a
// scale x scale block over a padded background box.
func drawLabel(img *image.RGBA, x, y int, text string, scale int, fg, bg color.RGBA) {
	bounds := img.Bounds()
	charWidth := 4 * scale
	labelWidth := len(text) * charWidth
	labelHeight := 6 * scale

	set := func(px, py int, c color.RGBA) {
		if image.Pt(px, py).In(bounds) {
			img.Set(px, py, c)
		}
	}

	for dy := -scale; dy < labelHeight; dy++ {
		for dx := -scale; dx < labelWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				for sy := 0; sy < scale; sy++ {
					for sx := 0; sx < scale; sx++ {
						set(cx+col*scale+sx, y+row*scale+sy, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
