package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// ImageResult is an encoded preview ready to hand back to a client.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CellSize    int    `json:"cell_size"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// WritePNG encodes img as PNG to w.
func WritePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// SavePNG writes img to path. The format follows the file extension.
func SavePNG(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// Encode wraps img as a base64 PNG result.
func Encode(img image.Image, cellSize int) (*ImageResult, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &ImageResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		CellSize:    cellSize,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
