package colorspace

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// D65 reference white, XYZ scaled to 0-100.
const (
	RefX = 95.047
	RefY = 100.0
	RefZ = 108.883
)

const (
	labEpsilon = 216.0 / 24389.0
	labKappa   = 24389.0 / 27.0
)

// ErrInvalidHex is returned by HexToRGB for anything that is not "#RRGGBB".
var ErrInvalidHex = errors.New("invalid hex color")

// RGB represents an opaque color with 8-bit components (0-255).
type RGB struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// RGBA represents a sampled color with straight (non-premultiplied) alpha.
//
// A is the opacity in the range 0-1, where 0 is fully transparent.
type RGBA struct {
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
	A float64 `json:"a"`
}

// XYZ is a CIE 1931 XYZ tristimulus value scaled so that Y of white is 100.
type XYZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Lab is a CIE L*a*b* value. L ranges 0-100; a and b are unbounded but
// stay roughly within -128..127 for sRGB inputs.
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// White is the background used when flattening transparent samples.
var White = RGB{R: 255, G: 255, B: 255}

// Hex returns the color formatted as "#RRGGBB" with uppercase digits.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// HexToRGB parses a "#RRGGBB" string into 8-bit components.
//
// The leading '#' is optional. Callers are expected to validate user input
// before it gets here; malformed strings return ErrInvalidHex and the zero
// RGB rather than panicking.
func HexToRGB(hex string) (RGB, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	return RGB{
		R: uint8(val >> 16),
		G: uint8(val >> 8),
		B: uint8(val),
	}, nil
}

// srgbToLinear undoes the sRGB transfer curve for one 8-bit channel.
func srgbToLinear(channel uint8) float64 {
	c := float64(channel) / 255.0
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RGBToXYZ converts an sRGB color to CIE XYZ (D65, 0-100 scale).
func RGBToXYZ(c RGB) XYZ {
	lr := srgbToLinear(c.R)
	lg := srgbToLinear(c.G)
	lb := srgbToLinear(c.B)

	x := lr*0.4124 + lg*0.3576 + lb*0.1805
	y := lr*0.2126 + lg*0.7152 + lb*0.0722
	z := lr*0.0193 + lg*0.1192 + lb*0.9505

	return XYZ{X: x * 100, Y: y * 100, Z: z * 100}
}

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return (labKappa*t + 16) / 116
}

// XYZToLab converts a CIE XYZ value to CIE Lab against the D65 white point.
func XYZToLab(c XYZ) Lab {
	fx := labF(c.X / RefX)
	fy := labF(c.Y / RefY)
	fz := labF(c.Z / RefZ)

	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// RGBToLab converts an sRGB color to CIE Lab.
//
// The conversion is deterministic: equal inputs always produce bit-identical
// outputs, which the palette matcher relies on for exact-match detection.
func RGBToLab(c RGB) Lab {
	return XYZToLab(RGBToXYZ(c))
}

// HexToLab is a convenience wrapper around HexToRGB and RGBToLab.
func HexToLab(hex string) (Lab, error) {
	rgb, err := HexToRGB(hex)
	if err != nil {
		return Lab{}, err
	}
	return RGBToLab(rgb), nil
}

// DeltaE returns the CIE76 color difference: the Euclidean distance in Lab.
func DeltaE(a, b Lab) float64 {
	dL := a.L - b.L
	dA := a.A - b.A
	dB := a.B - b.B
	return math.Sqrt(dL*dL + dA*dA + dB*dB)
}

// BlendWithBackground alpha-composites c over an opaque background.
//
// Alpha is clamped to 0-1. Fully opaque samples are returned unchanged;
// everything else is mixed per channel and rounded to the nearest integer,
// so transparent regions resolve to the background instead of to whatever
// RGB happened to be stored under zero alpha.
func BlendWithBackground(c RGBA, background RGB) RGB {
	alpha := math.Max(0, math.Min(1, c.A))
	if alpha >= 1 {
		return RGB{R: c.R, G: c.G, B: c.B}
	}
	mix := func(fg, bg uint8) uint8 {
		return uint8(math.Round(float64(fg)*alpha + float64(bg)*(1-alpha)))
	}
	return RGB{
		R: mix(c.R, background.R),
		G: mix(c.G, background.G),
		B: mix(c.B, background.B),
	}
}
