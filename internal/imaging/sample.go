package imaging

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/brick-mosaic-mcp/internal/colorspace"
)

// SampledPixel is the Lab color of one grid cell.
type SampledPixel struct {
	X   int            `json:"x"`
	Y   int            `json:"y"`
	Lab colorspace.Lab `json:"lab"`
}

// SampleKey identifies a sampling. Two samplings with equal keys produce
// identical pixel buffers.
type SampleKey struct {
	Source string
	Width  int
	Height int
	Filter string
}

// Sample resizes img to exactly width x height, applies filter, and converts
// every pixel to Lab after compositing it over background.
//
// The result has width*height entries in row-major order, entry y*width+x
// holding pixel (x, y). ctx is checked once per row.
//
// # Color Conversion
//
// Pixels are read as 8-bit non-premultiplied RGBA. Alpha is normalized to
// [0, 1] and blended with colorspace.BlendWithBackground, so fully
// transparent areas take the background color instead of matching black.
func Sample(ctx context.Context, img image.Image, width, height int, filter Filter, background colorspace.RGB) ([]SampledPixel, error) {
	resized, err := ResizeExact(img, width, height)
	if err != nil {
		return nil, err
	}

	var nrgba *image.NRGBA
	if filtered := filter.Apply(resized); filtered != image.Image(resized) {
		nrgba = imaging.Clone(filtered)
	} else {
		nrgba = resized
	}

	b := nrgba.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, fmt.Errorf("sampled %dx%d, want %dx%d", b.Dx(), b.Dy(), width, height)
	}

	pixels := make([]SampledPixel, width*height)
	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4]
			blended := colorspace.BlendWithBackground(colorspace.RGBA{
				R: p[0],
				G: p[1],
				B: p[2],
				A: float64(p[3]) / 255,
			}, background)
			pixels[y*width+x] = SampledPixel{
				X:   x,
				Y:   y,
				Lab: colorspace.RGBToLab(blended),
			}
		}
	}
	return pixels, nil
}
