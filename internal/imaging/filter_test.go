package imaging

import (
	"errors"
	"image/color"
	"testing"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "none"},
		{"none", "none"},
		{"saturate(1.5)", "saturate(1.5)"},
		{"hue-rotate(30deg) saturate(120%)", "hue-rotate(30deg) saturate(1.2)"},
		{"hue-rotate(0.5turn)", "hue-rotate(180deg)"},
		{"hue-rotate(100grad)", "hue-rotate(90deg)"},
		{"hue-rotate(15)", "hue-rotate(15deg)"},
		{"brightness( 0.8 )  contrast(2)", "brightness(0.8) contrast(2)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFilter(tt.in)
			if err != nil {
				t.Fatalf("ParseFilter(%q) failed: %v", tt.in, err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFilter_Invalid(t *testing.T) {
	for _, in := range []string{
		"blur(2px)",
		"saturate(abc)",
		"saturate(-1)",
		"saturate(1.2) junk",
		"sepia",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseFilter(in)
			if !errors.Is(err, ErrInvalidFilter) {
				t.Errorf("ParseFilter(%q) error = %v, want ErrInvalidFilter", in, err)
			}
		})
	}
}

func TestFilterIdentity(t *testing.T) {
	img := createInMemoryImage(4, 4, color.RGBA{10, 20, 30, 255})

	for _, in := range []string{"none", "saturate(1) brightness(100%)", "hue-rotate(360deg)"} {
		f, err := ParseFilter(in)
		if err != nil {
			t.Fatalf("ParseFilter(%q) failed: %v", in, err)
		}
		if !f.IsIdentity() {
			t.Errorf("%q should be identity", in)
		}
		if f.Apply(img) != img {
			t.Errorf("identity filter %q should return its input", in)
		}
	}
}

func TestFilterApply(t *testing.T) {
	img := createInMemoryImage(4, 4, color.RGBA{100, 100, 100, 255})

	f, err := ParseFilter("brightness(2)")
	if err != nil {
		t.Fatal(err)
	}
	r, _, _, _ := f.Apply(img).At(1, 1).RGBA()
	if r>>8 <= 150 {
		t.Errorf("brightness(2) should brighten gray 100, got %d", r>>8)
	}

	f, err = ParseFilter("saturate(0)")
	if err != nil {
		t.Fatal(err)
	}
	red := createInMemoryImage(4, 4, color.RGBA{200, 40, 40, 255})
	rr, gg, bb, _ := f.Apply(red).At(0, 0).RGBA()
	if d := int(rr>>8) - int(gg>>8); d > 2 || d < -2 || int(gg>>8) != int(bb>>8) {
		t.Errorf("saturate(0) should desaturate, got %d %d %d", rr>>8, gg>>8, bb>>8)
	}
}

func TestFilterFromAdjustments(t *testing.T) {
	tests := []struct {
		name                  string
		hue, sat, bright, con float64
		want                  string
	}{
		{"all zero", 0, 0, 0, 0, "none"},
		{"hue only", 45, 0, 0, 0, "hue-rotate(45deg)"},
		{"saturation", 0, 50, 0, 0, "saturate(1.5)"},
		{"negative saturation", 0, -100, 0, 0, "saturate(0)"},
		{"brightness damped", 0, 0, 100, 0, "brightness(1.7)"},
		{"all", 10, 20, 100, -50, "hue-rotate(10deg) saturate(1.2) brightness(1.7) contrast(0.65)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterFromAdjustments(tt.hue, tt.sat, tt.bright, tt.con)
			if got != tt.want {
				t.Errorf("FilterFromAdjustments = %q, want %q", got, tt.want)
			}
			if _, err := ParseFilter(got); err != nil {
				t.Errorf("descriptor %q does not parse: %v", got, err)
			}
		})
	}
}
