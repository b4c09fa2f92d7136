// Package shape names the four physical stud shapes a mosaic cell can be
// rendered as.
package shape

import "strings"

// Mode identifies a stud shape. The string values are the wire identifiers
// accepted by the server and stored in pixel overrides.
type Mode string

const (
	// None means "no override"; the global mode applies.
	None Mode = ""
	// RoundTile is a flat round 1x1 tile.
	RoundTile Mode = "circle"
	// SquareTile is a flat square 1x1 tile.
	SquareTile Mode = "square"
	// RoundPlate is a round 1x1 plate with a visible connector stud.
	RoundPlate Mode = "circle_plate"
	// SquarePlate is a square 1x1 plate with a visible connector stud.
	SquarePlate Mode = "square_plate"
)

// All lists the shapes in display order.
var All = []Mode{RoundTile, SquareTile, RoundPlate, SquarePlate}

// Normalize maps any accepted identifier, including legacy aliases, onto one
// of the four canonical shapes. Unknown and empty values become RoundTile.
func Normalize(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "circle_plate", "concentric_circle", "round_plate":
		return RoundPlate
	case "square_plate", "concentric_square":
		return SquarePlate
	case "square", "square_tile":
		return SquareTile
	default:
		return RoundTile
	}
}

// Parse is like Normalize but reports whether s named a shape at all.
// "none" and the empty string parse to None.
func Parse(s string) (Mode, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "none":
		return None, true
	case "circle", "round_tile", "circle_plate", "concentric_circle", "round_plate",
		"square_plate", "concentric_square", "square", "square_tile":
		return Normalize(v), true
	default:
		return None, false
	}
}

// Label returns a human-readable name for the shape.
func (m Mode) Label() string {
	switch Normalize(string(m)) {
	case SquareTile:
		return "Square Tile"
	case RoundPlate:
		return "Round Plate"
	case SquarePlate:
		return "Square Plate"
	default:
		return "Round Tile"
	}
}

// IsRound reports whether the shape has a circular footprint.
func (m Mode) IsRound() bool {
	n := Normalize(string(m))
	return n == RoundTile || n == RoundPlate
}

// HasConnector reports whether the shape shows a connector stud on top.
func (m Mode) HasConnector() bool {
	n := Normalize(string(m))
	return n == RoundPlate || n == SquarePlate
}
