package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "INTENT_SCANNER_CONFIG"
	apiKeyEnv     = "OPENAI_API_KEY"
	modelEnv      = "OPENAI_MODEL"
	baseURLEnv    = "OPENAI_BASE_URL"
	logLevelEnv   = "INTENT_SCANNER_LOG_LEVEL"

	DefaultModel               = "gpt-4.1-mini"
	DefaultLLMTimeout          = 60 * time.Second
	DefaultInputPath           = "BFLMSKvika.xlsx"
	DefaultOutputPath          = "bankruptcy_intent_results.csv"
	DefaultTrafficThreshold    = 40.0
	DefaultHighIntentThreshold = 7
	DefaultBatchSize           = 10
	DefaultBatchDelay          = 500 * time.Millisecond
)

// ErrMissingAPIKey is returned by Validate when no credential is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Config holds high-level settings required across the application.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Resume  bool          `yaml:"resume"`
}

// LLMConfig defines how to contact the chat-completion API.
type LLMConfig struct {
	APIKey  string        `yaml:"apiKey"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig controls the optional API short-circuit. Zero failures disables it.
type BreakerConfig struct {
	MaxConsecutiveFailures int           `yaml:"maxConsecutiveFailures"`
	OpenTimeout            time.Duration `yaml:"openTimeout"`
}

// InputConfig points at the source spreadsheet and its filters.
type InputConfig struct {
	Path             string  `yaml:"path"`
	Sheet            string  `yaml:"sheet"`
	TrafficThreshold float64 `yaml:"trafficThreshold"`
	MaxRows          int     `yaml:"maxRows"`
}

// OutputConfig describes where results are written.
type OutputConfig struct {
	Path                string `yaml:"path"`
	HighIntentThreshold int    `yaml:"highIntentThreshold"`
}

// BatchConfig sets checkpoint cadence and request pacing.
type BatchConfig struct {
	Size  int           `yaml:"size"`
	Delay time.Duration `yaml:"delay"`
}

// LoggingConfig selects the level and an optional rotating file.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
}

// MetricsConfig enables the Prometheus textfile written after a run.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// Load builds configuration from defaults, an optional YAML file and the
// environment. An empty path falls back to INTENT_SCANNER_CONFIG.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		// Keys absent from the file keep their defaults; present ones win
		// even when zero.
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		slog.Debug("config file applied", "path", path)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Validate checks the settings a run cannot start without.
func (c Config) Validate() error {
	if c.LLM.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Input.Path == "" {
		return errors.New("input path is empty")
	}
	if c.Output.Path == "" {
		return errors.New("output path is empty")
	}
	if c.Batch.Size < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.Batch.Size)
	}
	if c.Input.MaxRows < 0 {
		return fmt.Errorf("max rows must not be negative, got %d", c.Input.MaxRows)
	}
	if c.LLM.Breaker.MaxConsecutiveFailures < 0 {
		return fmt.Errorf("breaker failures must not be negative, got %d", c.LLM.Breaker.MaxConsecutiveFailures)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(modelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(baseURLEnv); v != "" {
		c.LLM.BaseURL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func defaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Model:   DefaultModel,
			Timeout: DefaultLLMTimeout,
			Breaker: BreakerConfig{OpenTimeout: 30 * time.Second},
		},
		Input: InputConfig{
			Path:             DefaultInputPath,
			TrafficThreshold: DefaultTrafficThreshold,
		},
		Output: OutputConfig{
			Path:                DefaultOutputPath,
			HighIntentThreshold: DefaultHighIntentThreshold,
		},
		Batch:   BatchConfig{Size: DefaultBatchSize, Delay: DefaultBatchDelay},
		Logging: LoggingConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 3},
	}
}
