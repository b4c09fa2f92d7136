package palette

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

//go:embed builtin.json
var builtinJSON []byte

// CatalogColor is a built-in color with the stud shapes it is produced in.
// An empty Shapes list means every shape.
type CatalogColor struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Hex    string       `json:"hex"`
	Shapes []shape.Mode `json:"shapes,omitempty"`
}

// AvailableIn reports whether the color is produced in mode. Every color is
// available for shape.None.
func (c CatalogColor) AvailableIn(mode shape.Mode) bool {
	if mode == shape.None || len(c.Shapes) == 0 {
		return true
	}
	for _, s := range c.Shapes {
		if s == mode {
			return true
		}
	}
	return false
}

var (
	catalogOnce sync.Once
	catalog     []CatalogColor
	catalogErr  error
)

func loadCatalog() {
	if err := json.Unmarshal(builtinJSON, &catalog); err != nil {
		catalogErr = fmt.Errorf("failed to parse built-in catalog: %w", err)
		return
	}
	for _, c := range catalog {
		if !ValidHex(c.Hex) {
			catalogErr = fmt.Errorf("built-in color %s: %w", c.ID, ErrInvalidHex)
			return
		}
	}
}

// Catalog returns every built-in color in catalog order.
func Catalog() []CatalogColor {
	catalogOnce.Do(loadCatalog)
	if catalogErr != nil {
		panic(catalogErr)
	}
	out := make([]CatalogColor, len(catalog))
	copy(out, catalog)
	return out
}

// BuiltIn returns the built-in colors available for mode, in catalog order.
// Legacy mode names are accepted; shape.None returns the full catalog.
func BuiltIn(mode shape.Mode) []Color {
	if mode != shape.None {
		mode = shape.Normalize(string(mode))
	}
	var out []Color
	for _, c := range Catalog() {
		if c.AvailableIn(mode) {
			out = append(out, Color{ID: c.ID, Name: c.Name, Hex: c.Hex})
		}
	}
	return out
}
