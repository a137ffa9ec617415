package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"IntentScanner/internal/dataset"
	"IntentScanner/internal/domain"
	"IntentScanner/internal/ports"
)

const utf8BOM = "\ufeff"

// CSVStore persists dataset snapshots as a UTF-8 CSV file with a byte-order
// mark so spreadsheet tools detect the encoding.
type CSVStore struct {
	path string
}

var _ ports.DatasetStore = (*CSVStore)(nil)

// NewCSVStore builds a store writing to path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the destination file.
func (s *CSVStore) Path() string {
	return s.path
}

// Save overwrites the destination with the full dataset. The snapshot is
// written to a sibling temp file first, so a crash never leaves a truncated
// file behind.
func (s *CSVStore) Save(ctx context.Context, ds *domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ds == nil {
		return fmt.Errorf("save %s: nil dataset", s.path)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := writeDataset(tmp, ds); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func writeDataset(f *os.File, ds *domain.Dataset) error {
	if _, err := f.WriteString(utf8BOM); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(dataset.Header(ds)); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(dataset.Record(row)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// HighIntentPath derives the secondary artifact name, e.g.
// results.csv -> results_high_intent.csv.
func HighIntentPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_high_intent" + ext
}
