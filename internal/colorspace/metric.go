package colorspace

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Metric selects the color difference formula used for nearest-color search.
type Metric int

const (
	// CIE76 is plain Euclidean distance in Lab (the default).
	CIE76 Metric = iota
	// CIE94 weights chroma and hue by the reference chroma.
	CIE94
	// CIEDE2000 is the full CIEDE2000 formula.
	CIEDE2000
)

// String returns the configuration name of the metric.
func (m Metric) String() string {
	switch m {
	case CIE94:
		return "cie94"
	case CIEDE2000:
		return "ciede2000"
	default:
		return "cie76"
	}
}

// ParseMetric maps a configuration name to a Metric. The empty string
// selects CIE76.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cie76", "de76":
		return CIE76, nil
	case "cie94", "de94":
		return CIE94, nil
	case "ciede2000", "de2000":
		return CIEDE2000, nil
	default:
		return CIE76, fmt.Errorf("unknown color metric %q", name)
	}
}

// Distance returns the difference between two Lab values under m.
//
// CIE94 and CIEDE2000 are computed by go-colorful, which works on L in 0-1,
// so their magnitudes are a hundredth of CIE76 values. Only the ordering of
// distances matters to the matcher, and identical inputs always give 0.
func (m Metric) Distance(a, b Lab) float64 {
	switch m {
	case CIE94:
		return toColorful(a).DistanceCIE94(toColorful(b))
	case CIEDE2000:
		return toColorful(a).DistanceCIEDE2000(toColorful(b))
	default:
		return DeltaE(a, b)
	}
}

func toColorful(c Lab) colorful.Color {
	return colorful.Lab(c.L/100, c.A/100, c.B/100)
}
