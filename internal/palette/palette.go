package palette

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ironsheep/brick-mosaic-mcp/internal/colorspace"
)

var (
	// ErrInvalidHex is returned when a color's hex code is not "#RRGGBB".
	ErrInvalidHex = errors.New("hex must be in #RRGGBB format")
	// ErrNameRequired is returned for a custom color without a name.
	ErrNameRequired = errors.New("color name is required")
	// ErrDuplicateName is returned when a custom color name is already taken.
	ErrDuplicateName = errors.New("a color with this name already exists")
	// ErrDuplicateID is returned when two palette entries share an id.
	ErrDuplicateID = errors.New("duplicate color id")
)

var hexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Color is a palette color as supplied by the catalog or the user.
type Color struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hex      string `json:"hex"`
	IsCustom bool   `json:"is_custom"`
}

// Entry is a Color with its RGB and Lab values precomputed.
type Entry struct {
	Color
	RGB colorspace.RGB `json:"rgb"`
	Lab colorspace.Lab `json:"lab"`
}

// ValidHex reports whether hex is exactly "#RRGGBB".
func ValidHex(hex string) bool {
	return hexPattern.MatchString(hex)
}

// ValidateName checks that name is non-empty and not already used by any of
// existing (case-insensitive).
func ValidateName(name string, existing []Color) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameRequired
	}
	for _, c := range existing {
		if strings.EqualFold(strings.TrimSpace(c.Name), trimmed) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, trimmed)
		}
	}
	return nil
}

// Prepare converts colors into entries, preserving order.
func Prepare(colors []Color) ([]Entry, error) {
	entries := make([]Entry, 0, len(colors))
	for _, c := range colors {
		if !ValidHex(c.Hex) {
			return nil, fmt.Errorf("color %q: %w (got %q)", c.ID, ErrInvalidHex, c.Hex)
		}
		rgb, err := colorspace.HexToRGB(c.Hex)
		if err != nil {
			return nil, fmt.Errorf("color %q: %w", c.ID, err)
		}
		entries = append(entries, Entry{
			Color: c,
			RGB:   rgb,
			Lab:   colorspace.RGBToLab(rgb),
		})
	}
	return entries, nil
}

// Palette is an immutable, ordered set of prepared entries.
type Palette struct {
	entries []Entry
	index   map[string]int
}

// New builds a palette from custom and built-in colors.
//
// Custom colors come first, then built-ins, each in the given order; IsCustom
// is forced to match the group a color was passed in. Ids must be unique
// across both groups.
func New(custom, builtIn []Color) (*Palette, error) {
	colors := make([]Color, 0, len(custom)+len(builtIn))
	for _, c := range custom {
		c.IsCustom = true
		colors = append(colors, c)
	}
	for _, c := range builtIn {
		c.IsCustom = false
		colors = append(colors, c)
	}

	entries, err := Prepare(colors)
	if err != nil {
		return nil, err
	}
	return fromEntries(entries)
}

func fromEntries(entries []Entry) (*Palette, error) {
	p := &Palette{
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("color %q: empty id", e.Name)
		}
		if _, dup := p.index[e.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		p.index[e.ID] = i
	}
	return p, nil
}

// Without returns a palette with the given ids removed. Unknown ids are
// ignored and the remaining order is kept.
func (p *Palette) Without(ids ...string) *Palette {
	if p == nil {
		return nil
	}
	if len(ids) == 0 {
		return p
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := make([]Entry, 0, len(p.entries))
	for _, e := range p.entries {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	// ids were unique in p, so they stay unique.
	np, _ := fromEntries(kept)
	return np
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Entries returns a copy of the entries in palette order.
func (p *Palette) Entries() []Entry {
	if p == nil {
		return nil
	}
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Custom returns the custom entries in palette order.
func (p *Palette) Custom() []Entry {
	if p == nil {
		return nil
	}
	var out []Entry
	for _, e := range p.entries {
		if e.IsCustom {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns the entry with the given id.
func (p *Palette) Lookup(id string) (Entry, bool) {
	if p == nil {
		return Entry{}, false
	}
	i, ok := p.index[id]
	if !ok {
		return Entry{}, false
	}
	return p.entries[i], true
}

// Contains reports whether id is in the palette.
func (p *Palette) Contains(id string) bool {
	if p == nil {
		return false
	}
	_, ok := p.index[id]
	return ok
}

// FindNearest returns the entry closest to target under m.
//
// See FindNearestIndex for the search and tie-break rules. The second result
// is false only for an empty palette.
func (p *Palette) FindNearest(target colorspace.Lab, m colorspace.Metric) (Entry, bool) {
	if p == nil {
		return Entry{}, false
	}
	i := FindNearestIndex(target, p.entries, m)
	if i < 0 {
		return Entry{}, false
	}
	return p.entries[i], true
}

// FindNearestIndex scans entries linearly and returns the index of the
// closest one, or -1 if entries is empty.
//
// A candidate replaces the current best only when strictly closer, so the
// first of several equally distant entries wins. The scan stops as soon as
// the best distance is exactly 0, whether that is the first entry or a later
// improvement.
func FindNearestIndex(target colorspace.Lab, entries []Entry, m colorspace.Metric) int {
	if len(entries) == 0 {
		return -1
	}

	best := 0
	bestDelta := m.Distance(target, entries[0].Lab)
	if bestDelta == 0 {
		return best
	}

	for i := 1; i < len(entries); i++ {
		d := m.Distance(target, entries[i].Lab)
		if d < bestDelta {
			best, bestDelta = i, d
			if bestDelta == 0 {
				break
			}
		}
	}
	return best
}
