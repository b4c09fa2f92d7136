package palette

import (
	"fmt"
	"strconv"
	"strings"
)

// CustomIDPrefix prefixes generated custom color ids.
const CustomIDPrefix = "custom-"

// NormalizeHex trims hex, adds a missing leading '#' and upper-cases it.
// The result is validated with ValidHex.
func NormalizeHex(hex string) (string, error) {
	h := strings.TrimSpace(hex)
	if !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	if !ValidHex(h) {
		return "", fmt.Errorf("%w (got %q)", ErrInvalidHex, hex)
	}
	return strings.ToUpper(h), nil
}

// NormalizeCustom validates user-supplied custom colors and fills in ids.
//
// Names are trimmed and must be unique (case-insensitive) within colors.
// Hex codes go through NormalizeHex. Colors without an id get the next free
// "custom-<n>" id. The first invalid color aborts with an error naming it.
func NormalizeCustom(colors []Color) ([]Color, error) {
	out := make([]Color, 0, len(colors))
	taken := make(map[string]bool, len(colors))
	for _, c := range colors {
		if c.ID != "" {
			taken[c.ID] = true
		}
	}

	next := 1
	for i, c := range colors {
		name := strings.TrimSpace(c.Name)
		if err := ValidateName(name, out); err != nil {
			return nil, fmt.Errorf("custom color %d: %w", i+1, err)
		}
		hex, err := NormalizeHex(c.Hex)
		if err != nil {
			return nil, fmt.Errorf("custom color %d (%s): %w", i+1, name, err)
		}

		id := strings.TrimSpace(c.ID)
		if id == "" {
			for taken[CustomIDPrefix+strconv.Itoa(next)] {
				next++
			}
			id = CustomIDPrefix + strconv.Itoa(next)
			taken[id] = true
		}

		out = append(out, Color{ID: id, Name: name, Hex: hex, IsCustom: true})
	}
	return out, nil
}
