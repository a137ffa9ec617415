package tabular

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Table is a raw sheet: a header row and the data rows below it.
type Table struct {
	Header  []string
	Records [][]string
}

// Cell returns the value at row/col or "" when the row is short.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Records) || col < 0 || col >= len(t.Records[row]) {
		return ""
	}
	return t.Records[row][col]
}

// Reader decodes one file format (xlsx, csv, etc.).
type Reader interface {
	Name() string
	Extensions() []string
	Read(ctx context.Context, r io.Reader) (Table, error)
}

// Registry keeps a mapping from file extensions to their readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: map[string]Reader{}}
}

// Register adds or replaces a reader for each of its extensions.
func (r *Registry) Register(reader Reader) {
	if r.readers == nil {
		r.readers = map[string]Reader{}
	}
	for _, ext := range reader.Extensions() {
		r.readers[normalizeExt(ext)] = reader
	}
}

// Resolve returns the reader for path's extension or an error if none is registered.
func (r *Registry) Resolve(path string) (Reader, error) {
	ext := normalizeExt(filepath.Ext(path))
	if reader, ok := r.readers[ext]; ok {
		return reader, nil
	}
	return nil, fmt.Errorf("no table reader registered for %q", ext)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
