package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultCropFraction is the share of the limiting side kept by CropToAspect.
const DefaultCropFraction = 0.9

// ResizeExact scales img to exactly width x height, ignoring aspect ratio,
// with a Lanczos filter. The result has one source pixel per stud.
func ResizeExact(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img), nil
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// Crop extracts the region (x1,y1)-(x2,y2) from an image. (x1,y1) is
// inclusive and (x2,y2) exclusive, relative to the image bounds.
func Crop(img image.Image, x1, y1, x2, y2 int) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if x1 < 0 || y1 < 0 || x2 > bounds.Dx() || y2 > bounds.Dy() {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			x1, y1, x2, y2, bounds.Dx(), bounds.Dy())
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	r := image.Rect(x1, y1, x2, y2).Add(bounds.Min)
	return imaging.Crop(img, r), nil
}

// CropToAspect cuts the largest centered region with aspect ratio
// aspectW:aspectH, shrunk to fraction of that size, so a photo can be fitted
// to a width x height grid without stretching.
//
// A fraction outside (0, 1] is treated as 1.
func CropToAspect(img image.Image, aspectW, aspectH int, fraction float64) (*image.NRGBA, error) {
	if aspectW <= 0 || aspectH <= 0 {
		return nil, fmt.Errorf("invalid aspect ratio %d:%d", aspectW, aspectH)
	}
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	target := float64(aspectW) / float64(aspectH)

	cw, ch := w, w/target
	if ch > h {
		cw, ch = h*target, h
	}
	cw *= fraction
	ch *= fraction

	iw, ih := int(cw+0.5), int(ch+0.5)
	if iw < 1 {
		iw = 1
	}
	if ih < 1 {
		ih = 1
	}
	return imaging.CropCenter(img, iw, ih), nil
}
