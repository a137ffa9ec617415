package reader

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"IntentScanner/internal/ports"
	"IntentScanner/internal/tabular"
)

// FileSource implements ports.TableSource by picking a reader from the
// registry according to the file extension.
type FileSource struct {
	registry *tabular.Registry
	logger   *slog.Logger
}

var _ ports.TableSource = (*FileSource)(nil)

// NewFileSource wires a reader registry.
func NewFileSource(reg *tabular.Registry, log *slog.Logger) *FileSource {
	return &FileSource{
		registry: reg,
		logger:   log,
	}
}

// NewDefaultRegistry registers the excel and csv readers.
func NewDefaultRegistry(sheet string) *tabular.Registry {
	registry := tabular.NewRegistry()
	registry.Register(NewExcelReader(sheet))
	registry.Register(NewCSVReader(','))
	return registry
}

// Load opens path and decodes it with the matching reader.
func (s *FileSource) Load(ctx context.Context, path string) (tabular.Table, error) {
	if s.registry == nil {
		return tabular.Table{}, fmt.Errorf("table reader registry is not configured")
	}

	strategy, err := s.registry.Resolve(path)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("input %s: %w", path, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	s.debug("read table", "path", path, "reader", strategy.Name())

	table, err := strategy.Read(ctx, file)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("read input %s: %w", path, err)
	}

	s.debug("table loaded", "columns", len(table.Header), "rows", len(table.Records))
	return table, nil
}

func (s *FileSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
