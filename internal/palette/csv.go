package palette

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSV column headers used for color import and export.
const (
	HeaderName = "Color Name"
	HeaderHex  = "Hex Code"
)

var (
	// ErrEmptyCSV is returned when an import has no header row.
	ErrEmptyCSV = errors.New("CSV file is empty")
	// ErrMissingColumns is returned when the header lacks a required column.
	ErrMissingColumns = errors.New(`CSV must contain "Color Name" and "Hex Code" columns`)
)

// SkippedRow records an import row that was not accepted.
type SkippedRow struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Hex    string `json:"hex"`
	Reason string `json:"reason"`
}

// ImportResult holds the accepted colors and the rows that were skipped.
type ImportResult struct {
	Colors  []Color      `json:"colors"`
	Skipped []SkippedRow `json:"skipped,omitempty"`
}

// ImportCSV reads custom colors from CSV data.
//
// The header row must contain "Color Name" and "Hex Code" (case-insensitive,
// any position). Rows with a blank name or hex are ignored. Rows with an
// invalid hex, or a name already imported or already present in existing,
// are reported in Skipped. Accepted colors have normalized hex codes and no
// id; pass them through NormalizeCustom to assign ids.
func ImportCSV(r io.Reader, existing []Color) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	nameIdx, hexIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case strings.ToLower(HeaderName):
			if nameIdx < 0 {
				nameIdx = i
			}
		case strings.ToLower(HeaderHex):
			if hexIdx < 0 {
				hexIdx = i
			}
		}
	}
	if nameIdx < 0 || hexIdx < 0 {
		return nil, ErrMissingColumns
	}

	result := &ImportResult{}
	known := append([]Color(nil), existing...)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		name := field(record, nameIdx)
		rawHex := field(record, hexIdx)
		if name == "" || rawHex == "" {
			continue
		}

		hex, err := NormalizeHex(rawHex)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, Name: name, Hex: rawHex, Reason: "invalid hex"})
			continue
		}
		if err := ValidateName(name, known); err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, Name: name, Hex: rawHex, Reason: "duplicate name"})
			continue
		}

		c := Color{Name: name, Hex: hex, IsCustom: true}
		known = append(known, c)
		result.Colors = append(result.Colors, c)
	}
	return result, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ExportCSV writes colors as a "Color Name","Hex Code" CSV that ImportCSV
// reads back.
func ExportCSV(w io.Writer, colors []Color) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{HeaderName, HeaderHex}); err != nil {
		return err
	}
	for _, c := range colors {
		if err := cw.Write([]string{c.Name, c.Hex}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
