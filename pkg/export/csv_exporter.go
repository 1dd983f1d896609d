package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is ordered tabular export content. Rows must be as wide as
// Headers; short rows are padded with empty cells.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	width := len(data.Headers)
	for i, row := range data.Rows {
		if len(row) > width {
			return nil, fmt.Errorf("csv row %d has %d cells, want at most %d", i, len(row), width)
		}
		record := make([]string, width)
		copy(record, row)
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
