package reader

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"IntentScanner/internal/tabular"
)

// ExcelReader reads the first (or a named) worksheet of an xlsx workbook.
type ExcelReader struct {
	sheet string
}

var _ tabular.Reader = (*ExcelReader)(nil)

// NewExcelReader builds a reader; an empty sheet name selects the first sheet.
func NewExcelReader(sheet string) *ExcelReader {
	return &ExcelReader{sheet: sheet}
}

// Name identifies the reader inside the registry.
func (e *ExcelReader) Name() string {
	return "excel"
}

// Extensions lists the workbook formats excelize understands.
func (e *ExcelReader) Extensions() []string {
	return []string{".xlsx", ".xlsm", ".xltx", ".xltm"}
}

// Read decodes the workbook. The first non-empty row is the header.
func (e *ExcelReader) Read(ctx context.Context, r io.Reader) (tabular.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := e.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return tabular.Table{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return tabular.Table{}, err
	}

	return buildTable(rows), nil
}

// buildTable skips leading blank rows, takes the next one as header and pads
// every record to the header width so column lookups never go out of range.
func buildTable(rows [][]string) tabular.Table {
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return tabular.Table{}
	}

	header := rows[start]
	records := make([][]string, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if isBlank(row) {
			continue
		}
		records = append(records, pad(row, len(header)))
	}

	return tabular.Table{Header: header, Records: records}
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
