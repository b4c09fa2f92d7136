package instructions

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ironsheep/brick-mosaic-mcp/internal/mosaic"
)

var (
	// ErrNoGrid is returned when there is nothing to export.
	ErrNoGrid = errors.New("no mosaic grid to export")
	// ErrInvalidSectionSize is returned for a non-positive section size.
	ErrInvalidSectionSize = errors.New("section size must be positive")
)

// EmptyCellHex is used for positions with no stud.
const EmptyCellHex = "#FFFFFF"

// LegendEntry is one globally numbered color.
type LegendEntry struct {
	Label    int    `json:"label"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hex      string `json:"hex"`
	IsCustom bool   `json:"is_custom"`
	Count    int    `json:"count"`
}

// Cell is one position of a section. Label is nil for an empty position.
type Cell struct {
	Label *int   `json:"label"`
	Hex   string `json:"hex"`
}

// Section is one instruction page.
type Section struct {
	Number int `json:"number"`
	// Row and Col locate the section in the section grid.
	Row int `json:"row"`
	Col int `json:"col"`
	// X and Y are the stud coordinates of the top-left cell.
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Studs  int `json:"studs"`
	// Legend lists the global colors present here with local counts,
	// ordered by label.
	Legend []LegendEntry `json:"legend"`
	Cells  [][]Cell      `json:"cells"`
}

// Overview summarizes the whole mosaic.
type Overview struct {
	Width          int `json:"width"`
	Height         int `json:"height"`
	SectionSize    int `json:"section_size"`
	SectionColumns int `json:"section_columns"`
	SectionRows    int `json:"section_rows"`
	TotalSections  int `json:"total_sections"`
	TotalStuds     int `json:"total_studs"`
	TotalColors    int `json:"total_colors"`
}

// Document is the complete instruction set.
type Document struct {
	Overview Overview      `json:"overview"`
	Legend   []LegendEntry `json:"legend"`
	Sections []Section     `json:"sections"`
	// Layout holds section numbers arranged as the section grid.
	Layout [][]int `json:"layout"`
}

// Build partitions a width x height grid into sections.
//
// Parameters:
//   - grid: effective cells, placed by their X and Y fields
//   - width, height: grid dimensions in studs
//   - sectionSize: side of a section in studs
//   - usage: per-color counts; entries with a zero count are not numbered
//
// Cells whose color is missing from usage keep their hex but get no label.
func Build(grid []mosaic.MappedPixel, width, height, sectionSize int, usage []mosaic.UsageEntry) (*Document, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrNoGrid
	}
	if sectionSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSectionSize, sectionSize)
	}

	legend := AssignLabels(usage)
	labels := make(map[string]int, len(legend))
	byLabel := make(map[int]LegendEntry, len(legend))
	for _, entry := range legend {
		labels[entry.ID] = entry.Label
		byLabel[entry.Label] = entry
	}

	cells := make([]*mosaic.MappedPixel, width*height)
	studs := 0
	for i := range grid {
		px := &grid[i]
		if px.X < 0 || px.X >= width || px.Y < 0 || px.Y >= height {
			continue
		}
		if cells[px.Y*width+px.X] == nil {
			studs++
		}
		cells[px.Y*width+px.X] = px
	}

	cols := ceilDiv(width, sectionSize)
	rows := ceilDiv(height, sectionSize)
	doc := &Document{
		Overview: Overview{
			Width:          width,
			Height:         height,
			SectionSize:    sectionSize,
			SectionColumns: cols,
			SectionRows:    rows,
			TotalSections:  cols * rows,
			TotalStuds:     studs,
			TotalColors:    len(legend),
		},
		Legend:   legend,
		Sections: make([]Section, 0, cols*rows),
		Layout:   make([][]int, rows),
	}

	number := 1
	for sr := 0; sr < rows; sr++ {
		doc.Layout[sr] = make([]int, cols)
		for sc := 0; sc < cols; sc++ {
			x0, y0 := sc*sectionSize, sr*sectionSize
			sec := Section{
				Number: number,
				Row:    sr,
				Col:    sc,
				X:      x0,
				Y:      y0,
				Width:  min(sectionSize, width-x0),
				Height: min(sectionSize, height-y0),
			}

			local := make(map[int]int)
			sec.Cells = make([][]Cell, sec.Height)
			for dy := 0; dy < sec.Height; dy++ {
				row := make([]Cell, sec.Width)
				for dx := 0; dx < sec.Width; dx++ {
					px := cells[(y0+dy)*width+x0+dx]
					if px == nil {
						row[dx] = Cell{Hex: EmptyCellHex}
						continue
					}
					sec.Studs++
					row[dx] = Cell{Hex: px.Hex}
					if label, ok := labels[px.ColorID]; ok {
						row[dx].Label = &label
						local[label]++
					}
				}
				sec.Cells[dy] = row
			}

			sec.Legend = make([]LegendEntry, 0, len(local))
			for label, count := range local {
				entry := byLabel[label]
				entry.Count = count
				sec.Legend = append(sec.Legend, entry)
			}
			sort.Slice(sec.Legend, func(i, j int) bool {
				return sec.Legend[i].Label < sec.Legend[j].Label
			})

			doc.Sections = append(doc.Sections, sec)
			doc.Layout[sr][sc] = number
			number++
		}
	}

	return doc, nil
}

// AssignLabels numbers the colors with a nonzero count 1..N by descending
// count. Equal counts keep their order in usage.
func AssignLabels(usage []mosaic.UsageEntry) []LegendEntry {
	legend := make([]LegendEntry, 0, len(usage))
	for _, u := range usage {
		if u.Count <= 0 {
			continue
		}
		legend = append(legend, LegendEntry{
			ID:       u.ID,
			Name:     u.Name,
			Hex:      u.Hex,
			IsCustom: u.IsCustom,
			Count:    u.Count,
		})
	}
	sort.SliceStable(legend, func(i, j int) bool {
		return legend[i].Count > legend[j].Count
	})
	for i := range legend {
		legend[i].Label = i + 1
	}
	return legend
}

// Section returns the section with the given 1-based number.
func (d *Document) Section(number int) (Section, bool) {
	if number < 1 || number > len(d.Sections) {
		return Section{}, false
	}
	return d.Sections[number-1], true
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
