package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/brick-mosaic-mcp/internal/mosaic"
	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

var background = color.RGBA{0x11, 0x18, 0x27, 0xFF}

func redCell(x, y int) mosaic.MappedPixel {
	return mosaic.MappedPixel{X: x, Y: y, ColorID: "red", Hex: "#FF0000"}
}

func isRed(c color.RGBA) bool {
	return c.R > 240 && c.G < 16 && c.B < 16
}

func TestRenderSize(t *testing.T) {
	grid := []mosaic.MappedPixel{redCell(0, 0), redCell(2, 1)}
	img, err := Render(grid, 3, 2, 10, shape.RoundTile)
	require.NoError(t, err)
	require.Equal(t, 30, img.Bounds().Dx())
	require.Equal(t, 20, img.Bounds().Dy())

	// cell (1,0) was never drawn
	require.Equal(t, background, img.RGBAAt(15, 5))
}

func TestRenderEmpty(t *testing.T) {
	tests := []struct {
		name string
		grid []mosaic.MappedPixel
		w, h int
		cs   int
	}{
		{"no cells", nil, 4, 4, 10},
		{"zero width", []mosaic.MappedPixel{redCell(0, 0)}, 0, 4, 10},
		{"zero cell size", []mosaic.MappedPixel{redCell(0, 0)}, 4, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Render(tt.grid, tt.w, tt.h, tt.cs, shape.RoundTile)
			require.NoError(t, err)
			require.True(t, img.Bounds().Empty())
		})
	}
}

func TestRenderShapes(t *testing.T) {
	grid := []mosaic.MappedPixel{redCell(0, 0)}

	t.Run("round tile", func(t *testing.T) {
		img, err := Render(grid, 1, 1, 20, shape.RoundTile)
		require.NoError(t, err)
		require.True(t, isRed(img.RGBAAt(10, 10)))
		require.Equal(t, background, img.RGBAAt(0, 0))
		require.Equal(t, background, img.RGBAAt(19, 19))
	})

	t.Run("square tile", func(t *testing.T) {
		img, err := Render(grid, 1, 1, 20, shape.SquareTile)
		require.NoError(t, err)
		require.True(t, isRed(img.RGBAAt(10, 10)))
		require.True(t, isRed(img.RGBAAt(3, 3)))
		// outline darkens the edge
		require.Less(t, img.RGBAAt(0, 10).R, uint8(200))
	})

	t.Run("round plate", func(t *testing.T) {
		img, err := Render(grid, 1, 1, 20, shape.RoundPlate)
		require.NoError(t, err)
		require.True(t, isRed(img.RGBAAt(10, 10)))
		require.Less(t, img.RGBAAt(16, 10).R, uint8(200))
		require.Equal(t, background, img.RGBAAt(0, 0))
	})

	t.Run("square plate", func(t *testing.T) {
		img, err := Render(grid, 1, 1, 20, shape.SquarePlate)
		require.NoError(t, err)
		require.True(t, isRed(img.RGBAAt(10, 10)))
		require.True(t, isRed(img.RGBAAt(3, 3)))
		require.Less(t, img.RGBAAt(16, 10).R, uint8(200))
	})

	t.Run("legacy alias", func(t *testing.T) {
		img, err := Render(grid, 1, 1, 20, shape.Mode("concentric_square"))
		require.NoError(t, err)
		require.True(t, isRed(img.RGBAAt(3, 3)))
		require.Less(t, img.RGBAAt(16, 10).R, uint8(200))
	})

	t.Run("unknown mode draws round tiles", func(t *testing.T) {
		img, err := Render(grid, 1, 1, 20, shape.Mode("hexagon"))
		require.NoError(t, err)
		require.Equal(t, background, img.RGBAAt(0, 0))
	})
}

func TestRenderCellShapeOverride(t *testing.T) {
	square := redCell(1, 0)
	square.Shape = shape.SquareTile
	grid := []mosaic.MappedPixel{redCell(0, 0), square}

	img, err := Render(grid, 2, 1, 20, shape.RoundTile)
	require.NoError(t, err)

	// near the corner: background for the round cell, filled for the square one
	require.Equal(t, background, img.RGBAAt(1, 1))
	require.True(t, isRed(img.RGBAAt(22, 2)))
}

func TestRenderSkipsOutOfRange(t *testing.T) {
	grid := []mosaic.MappedPixel{redCell(5, 5), {X: 0, Y: 0, ColorID: "x"}}
	img, err := Render(grid, 1, 1, 10, shape.SquareTile)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
	require.Equal(t, background, img.RGBAAt(5, 5))
}
