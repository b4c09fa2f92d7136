package geometry

import (
	"reflect"
	"testing"
)

func TestDetermineCellSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		scale         float64
		want          int
	}{
		{"empty grid", 0, 0, 1, MinCellSize},
		{"small grid clamps to max", 32, 32, 1, MaxCellSize},
		{"63 still default quality", 63, 10, 1, MaxCellSize},
		{"100 cells", 100, 100, 1, 50},
		{"128 threshold", 128, 64, 1, 42},
		{"200 cells", 200, 150, 1, 30},
		{"256 threshold", 256, 256, 1, 27},
		{"just below 320", 319, 1, 1, 21},
		{"320 threshold", 320, 320, 1, 25},
		{"384 cells", 384, 384, 1, 20},
		{"384 at 2x", 384, 384, 2, 41},
		{"huge grid clamps to min", 1000, 1000, 1, MinCellSize},
		{"invalid scale treated as 1", 100, 100, 0, 50},
		{"taller than wide", 10, 200, 1, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineCellSize(tt.width, tt.height, tt.scale)
			if got != tt.want {
				t.Errorf("DetermineCellSize(%d, %d, %v) = %d, want %d", tt.width, tt.height, tt.scale, got, tt.want)
			}
		})
	}
}

func TestNewDimensions(t *testing.T) {
	d := NewDimensions(100, 50, 1)
	if d.CellSize != 50 {
		t.Fatalf("CellSize = %d, want 50", d.CellSize)
	}
	if d.CanvasWidth != 5000 || d.CanvasHeight != 2500 {
		t.Errorf("canvas = %dx%d, want 5000x2500", d.CanvasWidth, d.CanvasHeight)
	}
	if d.Cells() != 5000 {
		t.Errorf("Cells() = %d, want 5000", d.Cells())
	}
	if !d.Contains(49, 99) || d.Contains(50, 0) || d.Contains(0, 100) || d.Contains(-1, 0) {
		t.Error("Contains bounds are wrong")
	}
	if got := d.CellAt(d.Index(3, 7)); got != (Cell{Row: 3, Col: 7}) {
		t.Errorf("CellAt(Index(3,7)) = %+v", got)
	}
}

func TestPointerToCell(t *testing.T) {
	// 4x2 grid, cell 10 => 40x20 canvas drawn into a 200x200 box at (10,10):
	// scale 5, drawn 200x100, vertical offset 50.
	dims := Dimensions{Width: 4, Height: 2, CellSize: 10, CanvasWidth: 40, CanvasHeight: 20}
	box := Rect{Left: 10, Top: 10, Width: 200, Height: 200}

	tests := []struct {
		name   string
		x, y   float64
		want   Cell
		wantOK bool
	}{
		{"top-left stud", 10, 60, Cell{0, 0}, true},
		{"bottom-right stud", 209.9, 159.9, Cell{1, 3}, true},
		{"second column", 61, 61, Cell{0, 1}, true},
		{"second row", 10, 111, Cell{1, 0}, true},
		{"in top letterbox", 100, 59, Cell{}, false},
		{"in bottom letterbox", 100, 160, Cell{}, false},
		{"left of container", 9, 100, Cell{}, false},
		{"right edge exclusive", 210, 100, Cell{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PointerToCell(tt.x, tt.y, box, dims)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("PointerToCell(%v, %v) = %+v, %v; want %+v, %v", tt.x, tt.y, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := PointerToCell(1, 1, box, Dimensions{}); ok {
		t.Error("empty grid should never map")
	}
}

func TestAllowedSizes(t *testing.T) {
	got := AllowedSizes(32, 128)
	want := []int{32, 64, 96, 128}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllowedSizes(32, 128) = %v, want %v", got, want)
	}
	if len(AllowedSizes(32, DefaultMaxGrid)) != 12 {
		t.Error("expected 12 sizes up to 384")
	}
	if AllowedSizes(0, 100) != nil {
		t.Error("zero base should yield no sizes")
	}
}

func TestClampToAllowed(t *testing.T) {
	sizes := []int{32, 64, 96}
	tests := []struct {
		in, want int
	}{
		{10, 32},
		{47, 32},
		{48, 32}, // tie keeps earlier
		{49, 64},
		{500, 96},
	}
	for _, tt := range tests {
		if got := ClampToAllowed(tt.in, sizes); got != tt.want {
			t.Errorf("ClampToAllowed(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := ClampToAllowed(7, nil); got != 7 {
		t.Errorf("ClampToAllowed with no sizes = %d, want 7", got)
	}
}

func TestGridFromPixels(t *testing.T) {
	cols, rows := GridFromPixels(640, 400, 32)
	if cols != 20 || rows != 13 {
		t.Errorf("GridFromPixels = %d x %d, want 20 x 13", cols, rows)
	}
	cols, rows = GridFromPixels(5, 5, 32)
	if cols != 1 || rows != 1 {
		t.Errorf("GridFromPixels tiny = %d x %d, want 1 x 1", cols, rows)
	}
}
