package mosaic

import (
	"context"
	"runtime"

	"github.com/ironsheep/brick-mosaic-mcp/internal/colorspace"
	"github.com/ironsheep/brick-mosaic-mcp/internal/imaging"
	"github.com/ironsheep/brick-mosaic-mcp/internal/palette"
	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

// DefaultBatchSize is the number of cells matched between yields.
const DefaultBatchSize = 1000

// MappedPixel is one cell of a grid after palette matching.
type MappedPixel struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	ColorID  string `json:"color_id"`
	Hex      string `json:"hex"`
	IsCustom bool   `json:"is_custom"`

	// Shape overrides the global pixel mode for this cell when set.
	Shape shape.Mode `json:"pixel_mode_override,omitempty"`
}

// MapOptions controls a MapPixels run.
type MapOptions struct {
	// BatchSize is the number of cells matched between yields. Values below
	// 1 use DefaultBatchSize. It never affects the result.
	BatchSize int

	Metric colorspace.Metric

	// Yield runs between batches. Nil means runtime.Gosched.
	Yield func()
}

// MapResult is the output of MapPixels.
type MapResult struct {
	// Pixels holds one entry per sample, in sample order.
	Pixels []MappedPixel

	// Counts maps palette id to the number of cells matched to it. Ids with
	// no cells are absent.
	Counts map[string]int
}

// MapPixels matches every sample against p.
//
// Matching runs in batches of opts.BatchSize; between batches it calls
// opts.Yield and checks ctx, returning ctx.Err() if the run was cancelled.
// The output depends only on pixels, p and opts.Metric. An empty palette
// yields an empty result, not an error.
func MapPixels(ctx context.Context, pixels []imaging.SampledPixel, p *palette.Palette, opts MapOptions) (*MapResult, error) {
	result := &MapResult{Counts: make(map[string]int)}
	if p.Len() == 0 || len(pixels) == 0 {
		return result, nil
	}

	batch := opts.BatchSize
	if batch < 1 {
		batch = DefaultBatchSize
	}
	yield := opts.Yield
	if yield == nil {
		yield = runtime.Gosched
	}

	entries := p.Entries()
	result.Pixels = make([]MappedPixel, len(pixels))

	for start := 0; start < len(pixels); start += batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + batch
		if end > len(pixels) {
			end = len(pixels)
		}
		for i := start; i < end; i++ {
			px := pixels[i]
			e := entries[palette.FindNearestIndex(px.Lab, entries, opts.Metric)]
			result.Pixels[i] = MappedPixel{
				X:        px.X,
				Y:        px.Y,
				ColorID:  e.ID,
				Hex:      e.Hex,
				IsCustom: e.IsCustom,
			}
			result.Counts[e.ID]++
		}

		if end < len(pixels) {
			yield()
		}
	}
	return result, nil
}
