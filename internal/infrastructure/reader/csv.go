package reader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"IntentScanner/internal/tabular"
)

const utf8BOM = "\ufeff"

// CSVReader reads comma-separated files, including the BOM-prefixed files
// this tool writes itself.
type CSVReader struct {
	comma rune
}

var _ tabular.Reader = (*CSVReader)(nil)

// NewCSVReader builds a reader; a zero comma defaults to ','.
func NewCSVReader(comma rune) *CSVReader {
	if comma == 0 {
		comma = ','
	}
	return &CSVReader{comma: comma}
}

// Name identifies the reader inside the registry.
func (c *CSVReader) Name() string {
	return "csv"
}

// Extensions lists handled file extensions.
func (c *CSVReader) Extensions() []string {
	return []string{".csv"}
}

// Read decodes the whole file into a table.
func (c *CSVReader) Read(ctx context.Context, r io.Reader) (tabular.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = c.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return tabular.Table{}, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return tabular.Table{}, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}

	return buildTable(rows), nil
}
