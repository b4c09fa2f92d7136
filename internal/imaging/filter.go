package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
)

// ErrInvalidFilter is returned for a filter descriptor that cannot be parsed.
var ErrInvalidFilter = errors.New("invalid filter descriptor")

// Filter function names accepted in a descriptor.
const (
	FilterHueRotate  = "hue-rotate"
	FilterSaturate   = "saturate"
	FilterBrightness = "brightness"
	FilterContrast   = "contrast"
)

// FilterOp is one function of a CSS-style filter descriptor.
//
// Amount is in degrees for hue-rotate and a multiplier for the others, where
// 1 leaves the image unchanged.
type FilterOp struct {
	Func   string  `json:"func"`
	Amount float64 `json:"amount"`
}

// Filter is an ordered list of tone adjustments applied before sampling.
// The zero value is the identity filter.
type Filter []FilterOp

var filterFuncPattern = regexp.MustCompile(`([a-z-]+)\(\s*([^)]*?)\s*\)`)

// ParseFilter parses a descriptor such as
// "hue-rotate(30deg) saturate(1.2) brightness(110%)".
//
// "" and "none" parse to the identity filter. Hue accepts deg, rad, grad and
// turn units (deg when omitted); the other functions accept a plain number or
// a percentage. Unknown functions, negative multipliers and text between
// functions are errors wrapping ErrInvalidFilter.
func ParseFilter(descriptor string) (Filter, error) {
	s := strings.TrimSpace(descriptor)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}

	var f Filter
	rest := s
	for _, m := range filterFuncPattern.FindAllStringSubmatchIndex(s, -1) {
		// Everything outside the matched functions must be whitespace.
		rest = strings.Replace(rest, s[m[0]:m[1]], "", 1)

		name := s[m[2]:m[3]]
		arg := s[m[4]:m[5]]
		amount, err := parseFilterArg(name, arg)
		if err != nil {
			return nil, err
		}
		f = append(f, FilterOp{Func: name, Amount: amount})
	}
	if strings.TrimSpace(rest) != "" || len(f) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, descriptor)
	}
	return f, nil
}

func parseFilterArg(name, arg string) (float64, error) {
	bad := func() (float64, error) {
		return 0, fmt.Errorf("%w: %s(%s)", ErrInvalidFilter, name, arg)
	}

	switch name {
	case FilterHueRotate:
		units := []struct {
			suffix string
			scale  float64
		}{
			{"grad", 0.9},
			{"turn", 360},
			{"deg", 1},
			{"rad", 180 / math.Pi},
		}
		scale := 1.0
		num := arg
		for _, u := range units {
			if strings.HasSuffix(arg, u.suffix) {
				num, scale = strings.TrimSuffix(arg, u.suffix), u.scale
				break
			}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return bad()
		}
		return v * scale, nil

	case FilterSaturate, FilterBrightness, FilterContrast:
		num := arg
		divisor := 1.0
		if strings.HasSuffix(arg, "%") {
			num, divisor = strings.TrimSuffix(arg, "%"), 100
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil || v < 0 {
			return bad()
		}
		return v / divisor, nil

	default:
		return bad()
	}
}

// IsIdentity reports whether applying f leaves every pixel unchanged.
func (f Filter) IsIdentity() bool {
	for _, op := range f {
		switch op.Func {
		case FilterHueRotate:
			if math.Mod(op.Amount, 360) != 0 {
				return false
			}
		default:
			if op.Amount != 1 {
				return false
			}
		}
	}
	return true
}

// String returns the canonical descriptor for f, or "none".
func (f Filter) String() string {
	if len(f) == 0 {
		return "none"
	}
	parts := make([]string, len(f))
	for i, op := range f {
		v := strconv.FormatFloat(op.Amount, 'f', -1, 64)
		if op.Func == FilterHueRotate {
			v += "deg"
		}
		parts[i] = op.Func + "(" + v + ")"
	}
	return strings.Join(parts, " ")
}

// Apply runs each adjustment in order and returns the result. The input is
// returned unchanged for an identity filter.
func (f Filter) Apply(img image.Image) image.Image {
	if f.IsIdentity() {
		return img
	}
	out := img
	for _, op := range f {
		switch op.Func {
		case FilterHueRotate:
			out = adjust.Hue(out, int(math.Round(op.Amount)))
		case FilterSaturate:
			out = adjust.Saturation(out, op.Amount-1)
		case FilterBrightness:
			out = adjust.Brightness(out, op.Amount-1)
		case FilterContrast:
			out = adjust.Contrast(out, op.Amount-1)
		}
	}
	return out
}

// FilterFromAdjustments builds a descriptor from slider-style adjustments,
// each centered on 0. Saturation maps to saturate(1+s/100); brightness and
// contrast are damped to 1+v/100*0.7. Zero adjustments are omitted and an
// all-zero input yields "none".
func FilterFromAdjustments(hue, saturation, brightness, contrast float64) string {
	var f Filter
	if hue != 0 {
		f = append(f, FilterOp{Func: FilterHueRotate, Amount: hue})
	}
	if saturation != 0 {
		f = append(f, FilterOp{Func: FilterSaturate, Amount: 1 + saturation/100})
	}
	if brightness != 0 {
		f = append(f, FilterOp{Func: FilterBrightness, Amount: 1 + (brightness/100)*0.7})
	}
	if contrast != 0 {
		f = append(f, FilterOp{Func: FilterContrast, Amount: 1 + (contrast/100)*0.7})
	}
	return f.String()
}
