// Package dataset turns a raw input table into the filtered, ordered set of
// rows that the classification run works on, and defines its output schema.
package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"IntentScanner/internal/domain"
	"IntentScanner/internal/market"
	"IntentScanner/internal/tabular"
)

const (
	// DefaultTrafficThreshold is the minimum organic traffic a URL needs.
	DefaultTrafficThreshold = 40.0
	// SentinelTraffic is assigned to every row when the input has no traffic
	// column, so the threshold filter keeps them.
	SentinelTraffic = 50.0

	// KnownTrafficColumn is the Ahrefs export header.
	KnownTrafficColumn = "Organic Traffic  –  Ahrefs  :  URL"
)

// ErrMissingColumn is returned when the input has no URL column.
var ErrMissingColumn = errors.New("missing column")

// Options tune Prepare.
type Options struct {
	TrafficThreshold float64
	// MaxRows caps the number of rows after filtering; zero means no cap.
	MaxRows int
	Logger  *slog.Logger
}

// Stats records the row count around every filtering stage.
type Stats struct {
	URLColumn          string
	TrafficColumn      string
	TrafficSynthesized bool
	UnparsableTraffic  int

	Total        int
	AfterTraffic int
	AfterMarket  int
	Final        int
}

// Prepare validates the table, applies the traffic, market and row-cap
// filters in that order and returns the dataset with verdict columns unset.
func Prepare(table tabular.Table, opts Options) (*domain.Dataset, Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stats := Stats{Total: len(table.Records)}

	urlIdx := findURLColumn(table.Header)
	if urlIdx < 0 {
		return nil, stats, fmt.Errorf("%w: no %q column in %v", ErrMissingColumn, "URL", table.Header)
	}
	stats.URLColumn = table.Header[urlIdx]

	trafficIdx := findTrafficColumn(table.Header)
	if trafficIdx >= 0 {
		stats.TrafficColumn = table.Header[trafficIdx]
		logger.Info("traffic column found", "column", stats.TrafficColumn)
	} else {
		stats.TrafficSynthesized = true
		logger.Warn("traffic column not found, using sentinel value", "traffic", SentinelTraffic)
	}

	layout := newLayout(table.Header)

	rows := make([]*domain.Row, 0, len(table.Records))
	for i := range table.Records {
		traffic := SentinelTraffic
		if trafficIdx >= 0 {
			var ok bool
			traffic, ok = ParseTraffic(table.Cell(i, trafficIdx))
			if !ok {
				stats.UnparsableTraffic++
				logger.Debug("unparsable traffic value", "row", i, "value", table.Cell(i, trafficIdx))
			}
		}

		record := domain.URLRecord{URL: table.Cell(i, urlIdx), Traffic: traffic}
		rows = append(rows, &domain.Row{
			URLRecord: record,
			Cells:     layout.cells(table.Records[i], record),
		})
	}

	threshold := opts.TrafficThreshold
	rows = filterRows(rows, func(r *domain.Row) bool { return r.Traffic >= threshold })
	stats.AfterTraffic = len(rows)
	logger.Info("filtered by traffic",
		"threshold", threshold,
		"kept", stats.AfterTraffic,
		"removed", stats.Total-stats.AfterTraffic)

	rows = market.Filter(rows, func(r *domain.Row) string { return r.URL })
	stats.AfterMarket = len(rows)
	logger.Info("filtered by market",
		"kept", stats.AfterMarket,
		"removed", stats.AfterTraffic-stats.AfterMarket)

	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
		logger.Info("capped rows", "max", opts.MaxRows)
	}
	stats.Final = len(rows)

	return &domain.Dataset{Header: layout.header, Rows: rows}, stats, nil
}

// ParseTraffic converts a traffic cell to a float, accepting a comma as the
// decimal separator. Empty cells are zero; unparsable cells are zero and not ok.
func ParseTraffic(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func findURLColumn(header []string) int {
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "URL") {
			return i
		}
	}
	return -1
}

func findTrafficColumn(header []string) int {
	for i, name := range header {
		if name == KnownTrafficColumn {
			return i
		}
	}
	for i, name := range header {
		upper := strings.ToUpper(name)
		if strings.Contains(upper, "TRAFFIC") || strings.Contains(upper, "ORGANIC") {
			return i
		}
	}
	return -1
}

func filterRows(rows []*domain.Row, keep func(*domain.Row) bool) []*domain.Row {
	kept := rows[:0:0]
	for _, row := range rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

// layout maps input columns to the dataset header: input columns that
// collide with output columns are dropped, and the derived url/TRAFFIC
// columns are appended unless the input already has them.
type layout struct {
	header     []string
	source     []int
	urlIdx     int
	trafficIdx int
}

func newLayout(input []string) layout {
	l := layout{urlIdx: -1, trafficIdx: -1}
	for i, name := range input {
		if isOutputColumn(name) {
			continue
		}
		switch name {
		case ColumnURL:
			l.urlIdx = len(l.header)
		case ColumnTraffic:
			l.trafficIdx = len(l.header)
		}
		l.header = append(l.header, name)
		l.source = append(l.source, i)
	}
	if l.urlIdx < 0 {
		l.urlIdx = len(l.header)
		l.header = append(l.header, ColumnURL)
		l.source = append(l.source, -1)
	}
	if l.trafficIdx < 0 {
		l.trafficIdx = len(l.header)
		l.header = append(l.header, ColumnTraffic)
		l.source = append(l.source, -1)
	}
	return l
}

func (l layout) cells(record []string, rec domain.URLRecord) []string {
	cells := make([]string, len(l.header))
	for i, src := range l.source {
		if src >= 0 && src < len(record) {
			cells[i] = record[src]
		}
	}
	cells[l.urlIdx] = rec.URL
	cells[l.trafficIdx] = strconv.FormatFloat(rec.Traffic, 'f', -1, 64)
	return cells
}
