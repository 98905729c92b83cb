package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Excel only detects UTF-8 when a byte order mark is present; attendance
// sheets carry student names that are not plain ASCII.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes suitable for opening
// in a spreadsheet.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces BOM-prefixed, CRLF-terminated CSV bytes for the dataset.
// Row values are looked up by header name; missing cells come out empty.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	buf := bytes.NewBuffer(utf8BOM)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true

	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
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
