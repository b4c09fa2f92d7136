package instructions

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Legend CSV columns.
const (
	HeaderNumber = "Number"
	HeaderName   = "Color Name"
	HeaderHex    = "Hex Code"
	HeaderCount  = "Count"
)

// Encode writes the document as indented JSON with a trailing newline.
func (d *Document) Encode(w io.Writer) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteJSON serializes the document to a JSON file.
func WriteJSON(d *Document, path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// WriteLegendCSV writes the global legend as a parts list.
func WriteLegendCSV(w io.Writer, legend []LegendEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{HeaderNumber, HeaderName, HeaderHex, HeaderCount}); err != nil {
		return err
	}
	for _, entry := range legend {
		record := []string{
			strconv.Itoa(entry.Label),
			entry.Name,
			entry.Hex,
			strconv.Itoa(entry.Count),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write legend row %d: %w", entry.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveLegendCSV writes the legend CSV to path.
func SaveLegendCSV(legend []LegendEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLegendCSV(f, legend); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
