package reader

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestExcelReaderRead(t *testing.T) {
	t.Parallel()

	buf := writeWorkbook(t, [][]any{
		{"URL", "Organic Traffic  –  Ahrefs  :  URL", "Keyword"},
		{"https://bankrot.ru/", 120, "банкротство"},
		{"https://example.com/", 10},
	})

	table, err := NewExcelReader("").Read(context.Background(), buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"URL", "Organic Traffic  –  Ahrefs  :  URL", "Keyword"}, table.Header)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "https://bankrot.ru/", table.Cell(0, 0))
	assert.Equal(t, "120", table.Cell(0, 1))
	assert.Equal(t, "банкротство", table.Cell(0, 2))
	assert.Len(t, table.Records[1], 3, "short rows are padded to the header width")
	assert.Equal(t, "", table.Cell(1, 2))
}

func TestExcelReaderUnknownSheet(t *testing.T) {
	t.Parallel()

	buf := writeWorkbook(t, [][]any{{"URL"}, {"a.ru"}})

	_, err := NewExcelReader("Missing").Read(context.Background(), buf)
	require.Error(t, err)
}

func TestCSVReaderStripsBOMAndSkipsBlankLines(t *testing.T) {
	t.Parallel()

	input := "\ufeffURL,Traffic\nhttps://a.ru,\"1,5\"\n\n,\nhttps://b.ru,40\n"

	table, err := NewCSVReader(0).Read(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"URL", "Traffic"}, table.Header)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "1,5", table.Cell(0, 1))
	assert.Equal(t, "https://b.ru", table.Cell(1, 0))
}

func TestCSVReaderEmptyInput(t *testing.T) {
	t.Parallel()

	table, err := NewCSVReader(',').Read(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, table.Header)
	assert.Empty(t, table.Records)
}

func TestFileSourceResolvesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "input.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("url\nhttps://a.ru\n"), 0o600))

	xlsxPath := filepath.Join(dir, "input.xlsx")
	buf := writeWorkbook(t, [][]any{{"URL"}, {"https://b.ru"}})
	require.NoError(t, os.WriteFile(xlsxPath, buf.Bytes(), 0o600))

	source := NewFileSource(NewDefaultRegistry(""), nil)

	table, err := source.Load(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Equal(t, "https://a.ru", table.Cell(0, 0))

	table, err = source.Load(context.Background(), xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, "https://b.ru", table.Cell(0, 0))
}

func TestFileSourceErrors(t *testing.T) {
	t.Parallel()

	source := NewFileSource(NewDefaultRegistry(""), nil)

	_, err := source.Load(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)

	_, err = source.Load(context.Background(), "input.json")
	require.ErrorContains(t, err, "no table reader")
}
