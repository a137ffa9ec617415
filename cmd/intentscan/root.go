package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"IntentScanner/internal/app"
	"IntentScanner/internal/config"
	"IntentScanner/internal/logging"
)

type flags struct {
	configPath  string
	input       string
	sheet       string
	output      string
	model       string
	maxRows     int
	batchSize   int
	delay       float64
	threshold   int
	resume      bool
	logLevel    string
	metricsFile string
}

// Execute builds and runs the root command.
func Execute() error {
	// A missing .env is fine; the environment may already carry the key.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "intentscan",
		Short: "Classify URLs by transactional intent for bankruptcy services",
		Long: `intentscan reads a spreadsheet of URLs with traffic data, keeps the
Russian-market URLs above a traffic threshold, asks an LLM to score each
URL's transactional intent and writes the results as CSV, checkpointing
every batch.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "YAML config file (default $INTENT_SCANNER_CONFIG)")
	fs.StringVarP(&f.input, "input", "i", config.DefaultInputPath, "input spreadsheet (.xlsx or .csv)")
	fs.StringVar(&f.sheet, "sheet", "", "worksheet name (default first sheet)")
	fs.StringVarP(&f.output, "output", "o", config.DefaultOutputPath, "output CSV file")
	fs.StringVarP(&f.model, "model", "m", config.DefaultModel, "LLM model identifier")
	fs.IntVar(&f.maxRows, "max", 0, "maximum number of URLs to analyze (0 = all)")
	fs.IntVar(&f.batchSize, "batch-size", config.DefaultBatchSize, "rows between checkpoints")
	fs.Float64Var(&f.delay, "delay", config.DefaultBatchDelay.Seconds(), "delay between requests in seconds")
	fs.IntVar(&f.threshold, "threshold", config.DefaultHighIntentThreshold, "minimum intent score for the high-intent file")
	fs.BoolVar(&f.resume, "resume", false, "skip rows already finished in the output file")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}

func run(cmd *cobra.Command, f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "config:", err)
		return err
	}
	applyFlags(cmd, f, &cfg)

	logger, closer := logging.FromConfig(cfg.Logging)
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	application := app.New(cfg, logger, cmd.OutOrStdout())
	if err := application.Run(cmd.Context()); err != nil {
		logger.Error("application stopped", "error", err)
		return err
	}
	return nil
}

// applyFlags overrides file and environment settings with flags the user set.
func applyFlags(cmd *cobra.Command, f flags, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("input") {
		cfg.Input.Path = f.input
	}
	if changed("sheet") {
		cfg.Input.Sheet = f.sheet
	}
	if changed("output") {
		cfg.Output.Path = f.output
	}
	if changed("model") {
		cfg.LLM.Model = f.model
	}
	if changed("max") {
		cfg.Input.MaxRows = f.maxRows
	}
	if changed("batch-size") {
		cfg.Batch.Size = f.batchSize
	}
	if changed("delay") {
		cfg.Batch.Delay = time.Duration(f.delay * float64(time.Second))
	}
	if changed("threshold") {
		cfg.Output.HighIntentThreshold = f.threshold
	}
	if changed("resume") {
		cfg.Resume = f.resume
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("metrics-file") {
		cfg.Metrics.TextfilePath = f.metricsFile
	}
}
