package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IntentScanner/internal/config"
)

func TestApplyFlagsOverridesOnlyChangedFlags(t *testing.T) {
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--input", "urls.csv", "--delay", "1.5", "--max", "20", "--resume"}))

	cfg := config.Config{
		LLM:    config.LLMConfig{Model: "from-file"},
		Output: config.OutputConfig{Path: "from-file.csv", HighIntentThreshold: 60},
		Batch:  config.BatchConfig{Size: 25},
	}

	var f flags
	f.input, _ = cmd.Flags().GetString("input")
	f.delay, _ = cmd.Flags().GetFloat64("delay")
	f.maxRows, _ = cmd.Flags().GetInt("max")
	f.resume, _ = cmd.Flags().GetBool("resume")
	applyFlags(cmd, f, &cfg)

	assert.Equal(t, "urls.csv", cfg.Input.Path)
	assert.Equal(t, 1500*time.Millisecond, cfg.Batch.Delay)
	assert.Equal(t, 20, cfg.Input.MaxRows)
	assert.True(t, cfg.Resume)

	assert.Equal(t, "from-file", cfg.LLM.Model)
	assert.Equal(t, "from-file.csv", cfg.Output.Path)
	assert.Equal(t, 60, cfg.Output.HighIntentThreshold)
	assert.Equal(t, 25, cfg.Batch.Size)
}

func TestRunRejectsMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("INTENT_SCANNER_CONFIG", "")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--input", "missing.xlsx", "--log-level", "error"})
	err := cmd.Execute()
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}
