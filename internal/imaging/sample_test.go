package imaging

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/brick-mosaic-mcp/internal/colorspace"
)

func TestSample_SolidColor(t *testing.T) {
	img := createInMemoryImage(40, 40, color.RGBA{255, 0, 0, 255})
	want := colorspace.RGBToLab(colorspace.RGB{R: 255})

	pixels, err := Sample(context.Background(), img, 4, 4, nil, colorspace.White)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(pixels) != 16 {
		t.Fatalf("got %d pixels, want 16", len(pixels))
	}
	for i, p := range pixels {
		if p.X != i%4 || p.Y != i/4 {
			t.Errorf("pixel %d has coordinates (%d,%d)", i, p.X, p.Y)
		}
		if colorspace.DeltaE(p.Lab, want) > 0.5 {
			t.Errorf("pixel %d Lab %+v, want about %+v", i, p.Lab, want)
		}
	}
}

func TestSample_RowMajorQuadrants(t *testing.T) {
	// Sampling at the source size is a pure copy, so each quadrant is exact.
	img := createQuadrantImage(2, 2)
	pixels, err := Sample(context.Background(), img, 2, 2, nil, colorspace.White)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	wantHex := []string{"#FF0000", "#00FF00", "#0000FF", "#FFFFFF"}
	for i, hex := range wantHex {
		want, _ := colorspace.HexToLab(hex)
		if pixels[i].Lab != want {
			t.Errorf("cell %d: got %+v, want %s", i, pixels[i].Lab, hex)
		}
	}
}

func TestSample_TransparentBecomesBackground(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3)) // fully transparent black
	pixels, err := Sample(context.Background(), img, 3, 3, nil, colorspace.White)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	white := colorspace.RGBToLab(colorspace.White)
	for i, p := range pixels {
		if p.Lab != white {
			t.Errorf("pixel %d should be white, got %+v", i, p.Lab)
		}
	}
}

func TestSample_Deterministic(t *testing.T) {
	img := createQuadrantImage(37, 23)
	f, err := ParseFilter("saturate(1.3) contrast(1.1)")
	if err != nil {
		t.Fatal(err)
	}
	a, err := Sample(context.Background(), img, 9, 5, f, colorspace.White)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Sample(context.Background(), img, 9, 5, f, colorspace.White)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pixel %d differs between runs", i)
		}
	}
}

func TestSample_Errors(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)

	if _, err := Sample(context.Background(), img, 0, 4, nil, colorspace.White); err == nil {
		t.Error("expected error for zero width")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Sample(ctx, img, 4, 4, nil, colorspace.White); err == nil {
		t.Error("expected error for cancelled context")
	}
}
