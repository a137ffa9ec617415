package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"IntentScanner/internal/config"
)

// New creates a console slog.Logger with provided level string.
func New(level string) *slog.Logger {
	return newLogger(os.Stdout, level)
}

// FromConfig builds a logger that mirrors console output into a rotating
// file when cfg.File is set. The returned closer releases the file.
func FromConfig(cfg config.LoggingConfig) (*slog.Logger, io.Closer) {
	if cfg.File == "" {
		return New(cfg.Level), nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	return newLogger(io.MultiWriter(os.Stdout, file), cfg.Level), file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler)
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
