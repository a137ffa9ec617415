// Package intent classifies URLs by transactional intent. It asks an LLM for
// a JSON verdict, repairs malformed answers, and falls back to a keyword
// heuristic so that classification itself never fails.
package intent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"IntentScanner/internal/domain"
	"IntentScanner/internal/metrics"
	"IntentScanner/internal/ports"
)

// Classifier implements ports.Classifier on top of a Completer.
type Classifier struct {
	completer ports.Completer
	model     string
	heuristic *Heuristic
	logger    *slog.Logger
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier wires the LLM boundary. A nil completer makes every verdict heuristic.
func NewClassifier(completer ports.Completer, model string, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Classifier{
		completer: completer,
		model:     model,
		heuristic: NewHeuristic(),
		logger:    log,
	}
}

// Classify returns a verdict for url. API errors, unusable answers and panics
// all end in the keyword heuristic.
func (c *Classifier) Classify(ctx context.Context, url string) (verdict domain.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("classifier panic recovered", "url", url, "panic", r)
			verdict = c.fallback(url, fmt.Sprintf("internal error: %v", r))
		}
		metrics.ObserveVerdict(verdict.Source)
	}()

	c.logger.Debug("analyze url", "url", url)

	if c.completer == nil {
		return c.fallback(url, "llm: no completer configured")
	}

	started := time.Now()
	content, err := c.completer.Complete(ctx, ports.CompletionRequest{
		Model:        c.model,
		SystemPrompt: SystemPrompt,
		UserPrompt:   BuildPrompt(url),
		Temperature:  Temperature,
		JSONObject:   true,
	})
	metrics.ObserveCompletion(time.Since(started), err)
	if err != nil {
		c.logger.Warn("llm call failed", "url", url, "error", err)
		return c.fallback(url, fmt.Sprintf("llm: %v", err))
	}

	verdict, err = ParseResponse(content)
	if err != nil {
		c.logger.Warn("llm response unusable", "url", url, "error", err, "excerpt", excerpt(content, 100))
		return c.fallback(url, fmt.Sprintf("parse: %v", err))
	}

	c.logger.Debug("url analyzed", "url", url, "score", verdict.IntentScore, "source", verdict.Source)
	return verdict
}

func (c *Classifier) fallback(url, reason string) domain.Verdict {
	v := c.heuristic.Verdict(url, reason)
	c.logger.Info("heuristic verdict", "url", url, "score", v.IntentScore, "category", v.IntentCategory)
	return v
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
