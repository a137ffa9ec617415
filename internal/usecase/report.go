package usecase

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"IntentScanner/internal/domain"
	"IntentScanner/internal/metrics"
	"IntentScanner/internal/ports"
)

// DefaultHighIntentThreshold is compared against the 0-100 intent score.
// The value dates from an older 0-10 scale and is kept configurable.
const DefaultHighIntentThreshold = 7

const topListSize = 5

// ReporterDeps wires the output artifacts of a run.
type ReporterDeps struct {
	Primary    ports.DatasetStore
	HighIntent ports.DatasetStore
	Threshold  int
	// Out receives the plain-text summary; nil discards it.
	Out    io.Writer
	Logger *slog.Logger
}

// ReportResult is what a report produced.
type ReportResult struct {
	Total      int
	Success    int
	Errors     int
	Pending    int
	HighIntent *domain.Dataset
}

// Reporter writes the final artifacts and prints a summary.
type Reporter struct {
	primary    ports.DatasetStore
	highIntent ports.DatasetStore
	threshold  int
	out        io.Writer
	logger     *slog.Logger
}

// NewReporter constructs the reporter.
func NewReporter(deps ReporterDeps) *Reporter {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	out := deps.Out
	if out == nil {
		out = io.Discard
	}
	return &Reporter{
		primary:    deps.Primary,
		highIntent: deps.HighIntent,
		threshold:  deps.Threshold,
		out:        out,
		logger:     logger,
	}
}

// Report saves ds to the primary artifact, then the rows scoring at least
// the threshold, highest first, to the high-intent artifact when any exist.
func (r *Reporter) Report(ctx context.Context, ds *domain.Dataset) (ReportResult, error) {
	result := ReportResult{Total: ds.Len()}
	for _, row := range ds.Rows {
		switch row.Status {
		case domain.StatusSuccess:
			result.Success++
		case domain.StatusError:
			result.Errors++
		default:
			result.Pending++
		}
	}

	if r.primary != nil {
		if err := r.primary.Save(ctx, ds); err != nil {
			return result, fmt.Errorf("save results: %w", err)
		}
	}

	result.HighIntent = SelectHighIntent(ds, r.threshold)
	metrics.HighIntentRows.Set(float64(result.HighIntent.Len()))

	if result.HighIntent.Len() > 0 && r.highIntent != nil {
		if err := r.highIntent.Save(ctx, result.HighIntent); err != nil {
			return result, fmt.Errorf("save high intent results: %w", err)
		}
	}

	r.logger.Info("report written",
		"total", result.Total,
		"success", result.Success,
		"errors", result.Errors,
		"high_intent", result.HighIntent.Len(),
		"threshold", r.threshold)

	r.printSummary(result)
	return result, nil
}

// SelectHighIntent returns the rows with a verdict scoring at least
// threshold, sorted by score descending. Ties keep input order.
func SelectHighIntent(ds *domain.Dataset, threshold int) *domain.Dataset {
	var rows []*domain.Row
	for _, row := range ds.Rows {
		if row.Verdict != nil && row.Verdict.IntentScore >= threshold {
			rows = append(rows, row)
		}
	}
	slices.SortStableFunc(rows, func(a, b *domain.Row) int {
		return cmp.Compare(b.Verdict.IntentScore, a.Verdict.IntentScore)
	})
	return ds.Subset(rows)
}

func (r *Reporter) printSummary(result ReportResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("summary rendering failed", "panic", rec)
		}
	}()

	fmt.Fprintf(r.out, "Processed %d URLs: %d success, %d errors", result.Total, result.Success, result.Errors)
	if result.Pending > 0 {
		fmt.Fprintf(r.out, ", %d not analyzed", result.Pending)
	}
	fmt.Fprintf(r.out, "\nHigh intent (score >= %d): %d URLs\n", r.threshold, result.HighIntent.Len())

	if result.HighIntent.Len() == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Top %d by intent score", min(topListSize, result.HighIntent.Len()))
	t.AppendHeader(table.Row{"#", "URL", "Score", "Category", "Funnel stage"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, WidthMax: 40},
	})

	for i, row := range result.HighIntent.Rows {
		if i == topListSize {
			break
		}
		t.AppendRow(table.Row{
			i + 1,
			row.URL,
			row.Verdict.IntentScore,
			row.Verdict.IntentCategory,
			row.Verdict.FunnelStage,
		})
	}
	t.Render()
}
