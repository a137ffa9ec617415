package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"IntentScanner/internal/domain"
	"IntentScanner/internal/metrics"
	"IntentScanner/internal/ports"
)

// DefaultBatchSize is the checkpoint interval used when none is configured.
const DefaultBatchSize = 10

// RunnerDeps wires all driven adapters into the batch runner.
type RunnerDeps struct {
	Classifier ports.Classifier
	Store      ports.DatasetStore
	Pacer      ports.Pacer
	Logger     *slog.Logger
	BatchSize  int
}

// RunStats summarises one run.
type RunStats struct {
	Processed          int
	Success            int
	Errors             int
	Skipped            int
	Checkpoints        int
	CheckpointFailures int
}

// Runner classifies dataset rows one by one, in input order, and persists
// the whole dataset every BatchSize rows and after the last row.
type Runner struct {
	classifier ports.Classifier
	store      ports.DatasetStore
	pacer      ports.Pacer
	logger     *slog.Logger
	batchSize  int
}

// NewRunner constructs the batch runner.
func NewRunner(deps RunnerDeps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	batchSize := deps.BatchSize
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	return &Runner{
		classifier: deps.Classifier,
		store:      deps.Store,
		pacer:      deps.Pacer,
		logger:     logger,
		batchSize:  batchSize,
	}
}

// Run mutates ds in place. Rows that already carry an outcome (restored from
// a previous run) are skipped. On cancellation the progress so far is
// checkpointed and ctx.Err() is returned; a row cut off mid-request stays
// pending so a resumed run classifies it again.
func (r *Runner) Run(ctx context.Context, ds *domain.Dataset) (RunStats, error) {
	var stats RunStats
	if ds == nil {
		return stats, errors.New("run: nil dataset")
	}
	if r.classifier == nil {
		return stats, errors.New("run: classifier is not configured")
	}

	pending := make([]*domain.Row, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		if row.Processed() {
			stats.Skipped++
			continue
		}
		pending = append(pending, row)
	}

	r.logger.Info("run started",
		"rows", ds.Len(),
		"pending", len(pending),
		"skipped", stats.Skipped,
		"batch_size", r.batchSize)

	if len(pending) == 0 {
		r.checkpoint(ctx, ds, &stats)
		return stats, nil
	}

	for i, row := range pending {
		// The first Wait returns at once, so the delay only separates requests.
		if r.pacer != nil {
			if err := r.pacer.Wait(ctx); err != nil {
				return r.interrupt(ctx, ds, &stats, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return r.interrupt(ctx, ds, &stats, err)
		}

		if err := r.processRow(ctx, row, &stats); err != nil {
			return r.interrupt(ctx, ds, &stats, err)
		}

		last := i == len(pending)-1
		if (i+1)%r.batchSize == 0 || last {
			r.checkpoint(ctx, ds, &stats)
			r.logger.Info("progress",
				"processed", stats.Processed,
				"pending", len(pending)-stats.Processed,
				"success", stats.Success,
				"errors", stats.Errors)
		}
	}

	if err := ctx.Err(); err != nil {
		return r.interrupt(ctx, ds, &stats, err)
	}

	r.logger.Info("run finished",
		"processed", stats.Processed,
		"success", stats.Success,
		"errors", stats.Errors,
		"checkpoints", stats.Checkpoints,
		"checkpoint_failures", stats.CheckpointFailures)

	return stats, nil
}

// processRow classifies one row and records the outcome. If ctx ends while
// the row is in flight the verdict is discarded, the row stays pending and
// ctx.Err() is returned.
func (r *Runner) processRow(ctx context.Context, row *domain.Row, stats *RunStats) error {
	v, err := r.classify(ctx, row.URL)
	if ctxErr := ctx.Err(); ctxErr != nil {
		r.logger.Debug("verdict discarded, run cancelled", "url", row.URL)
		return ctxErr
	}

	stats.Processed++
	metrics.RowsProcessed.Inc()

	if err != nil {
		r.logger.Error("classification failed", "url", row.URL, "error", err)
		row.Fail(err.Error())
		stats.Errors++
		return nil
	}

	row.Apply(v)
	stats.Success++
	r.logger.Debug("row classified",
		"url", row.URL,
		"score", v.IntentScore,
		"category", v.IntentCategory,
		"source", v.Source)
	return nil
}

func (r *Runner) classify(ctx context.Context, url string) (v domain.Verdict, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("classifier panic: %v", rec)
		}
	}()
	return r.classifier.Classify(ctx, url), nil
}

// checkpoint persists the full dataset. Failures are logged and counted; the
// next successful write becomes the recovery point.
func (r *Runner) checkpoint(ctx context.Context, ds *domain.Dataset, stats *RunStats) {
	if r.store == nil {
		return
	}

	err := r.store.Save(ctx, ds)
	metrics.ObserveCheckpoint(err)
	if err != nil {
		stats.CheckpointFailures++
		r.logger.Warn("checkpoint failed", "processed", stats.Processed, "error", err)
		return
	}
	stats.Checkpoints++
	r.logger.Debug("checkpoint saved", "processed", stats.Processed)
}

func (r *Runner) interrupt(ctx context.Context, ds *domain.Dataset, stats *RunStats, cause error) (RunStats, error) {
	r.logger.Warn("run interrupted", "processed", stats.Processed, "error", cause)
	// The run context is already done; the final snapshot must still land.
	r.checkpoint(context.WithoutCancel(ctx), ds, stats)
	return *stats, cause
}
