package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"IntentScanner/internal/config"
	"IntentScanner/internal/dataset"
	"IntentScanner/internal/domain"
	"IntentScanner/internal/infrastructure/llm"
	"IntentScanner/internal/infrastructure/pacing"
	"IntentScanner/internal/infrastructure/reader"
	"IntentScanner/internal/infrastructure/storage"
	"IntentScanner/internal/intent"
	"IntentScanner/internal/logging"
	"IntentScanner/internal/metrics"
	"IntentScanner/internal/ports"
	"IntentScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	runID    string
	logger   *slog.Logger
	source   ports.TableSource
	runner   *usecase.Runner
	reporter *usecase.Reporter
}

// New builds a runnable application instance. Summary output goes to out;
// nil means stdout.
func New(cfg config.Config, baseLogger *slog.Logger, out io.Writer) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if out == nil {
		out = os.Stdout
	}

	runID := uuid.NewString()
	baseLogger = baseLogger.With("run_id", runID)

	source := reader.NewFileSource(
		reader.NewDefaultRegistry(cfg.Input.Sheet),
		baseLogger.With("component", "reader"),
	)

	var completer ports.Completer
	if cfg.LLM.APIKey != "" {
		completer = llm.NewOpenAIClient(cfg.LLM, baseLogger.With("component", "llm"))
	}
	classifier := intent.NewClassifier(completer, cfg.LLM.Model, baseLogger.With("component", "classifier"))

	primary := storage.NewCSVStore(cfg.Output.Path)

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Classifier: classifier,
		Store:      primary,
		Pacer:      pacing.NewLimiter(cfg.Batch.Delay),
		Logger:     baseLogger.With("component", "runner"),
		BatchSize:  cfg.Batch.Size,
	})

	reporter := usecase.NewReporter(usecase.ReporterDeps{
		Primary:    primary,
		HighIntent: storage.NewCSVStore(storage.HighIntentPath(cfg.Output.Path)),
		Threshold:  cfg.Output.HighIntentThreshold,
		Out:        out,
		Logger:     baseLogger.With("component", "reporter"),
	})

	return &Application{
		cfg:      cfg,
		runID:    runID,
		logger:   baseLogger,
		source:   source,
		runner:   runner,
		reporter: reporter,
	}
}

// RunID identifies this run in logs.
func (a *Application) RunID() string {
	return a.runID
}

// Run executes one full pass: prepare, classify, report.
func (a *Application) Run(ctx context.Context) error {
	ds, err := a.prepare(ctx)
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		a.logger.Warn("no rows left after filtering, nothing to analyze")
		return nil
	}

	if a.cfg.Resume {
		a.restore(ctx, ds)
	}

	a.logger.Info("analysis started", "rows", ds.Len(), "model", a.cfg.LLM.Model)

	stats, runErr := a.runner.Run(ctx, ds)
	if runErr != nil {
		a.writeMetrics()
		return fmt.Errorf("run: %w", runErr)
	}

	if _, err := a.reporter.Report(ctx, ds); err != nil {
		a.writeMetrics()
		return fmt.Errorf("report: %w", err)
	}

	a.logger.Info("analysis finished",
		"processed", stats.Processed,
		"success", stats.Success,
		"errors", stats.Errors,
		"restored", stats.Skipped,
		"output", a.cfg.Output.Path)

	a.writeMetrics()
	return nil
}

func (a *Application) prepare(ctx context.Context) (*domain.Dataset, error) {
	table, err := a.source.Load(ctx, a.cfg.Input.Path)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}

	ds, stats, err := dataset.Prepare(table, dataset.Options{
		TrafficThreshold: a.cfg.Input.TrafficThreshold,
		MaxRows:          a.cfg.Input.MaxRows,
		Logger:           a.logger.With("component", "dataset"),
	})
	if err != nil {
		return nil, fmt.Errorf("prepare dataset: %w", err)
	}

	a.logger.Info("dataset prepared",
		"input_rows", stats.Total,
		"after_traffic", stats.AfterTraffic,
		"after_market", stats.AfterMarket,
		"final", stats.Final)
	return ds, nil
}

// restore pulls finished rows from a previous output. A missing or
// mismatched file only means the run starts from scratch.
func (a *Application) restore(ctx context.Context, ds *domain.Dataset) {
	prev, err := a.source.Load(ctx, a.cfg.Output.Path)
	if errors.Is(err, os.ErrNotExist) {
		a.logger.Info("no previous output to resume from", "path", a.cfg.Output.Path)
		return
	}
	if err != nil {
		a.logger.Warn("previous output unreadable, starting fresh", "path", a.cfg.Output.Path, "error", err)
		return
	}

	restored, err := usecase.Restore(ds, prev)
	if err != nil {
		a.logger.Warn("previous output ignored", "path", a.cfg.Output.Path, "error", err)
		return
	}
	a.logger.Info("resumed from previous output", "restored", restored, "pending", ds.Len()-restored)
}

func (a *Application) writeMetrics() {
	path := a.cfg.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		a.logger.Warn("metrics textfile not written", "path", path, "error", err)
	}
}
