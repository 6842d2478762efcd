package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

var errNoHeaders = errors.New("dataset has no headers")

// CSVExporter renders a Dataset as RFC 4180 text, header row first.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) ContentType() string { return "text/csv" }

func (e *CSVExporter) Extension() string { return ".csv" }

// Render emits cells in header order; keys missing from a row become empty cells.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("render csv: %w", errNoHeaders)
	}
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		records = append(records, project(row, data.Headers))
	}

	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}

func project(row map[string]string, headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = row[h]
	}
	return out
}
