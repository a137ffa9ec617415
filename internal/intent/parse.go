package intent

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"IntentScanner/internal/domain"
)

var (
	errUnparsable   = errors.New("response is not valid JSON after repair")
	errIncomplete   = errors.New("response lacks intentScore or intentCategory")
	errEmptyContent = errors.New("empty completion")
)

// wireVerdict mirrors the JSON object requested in the prompt.
type wireVerdict struct {
	IntentScore           domain.Score                 `json:"intentScore"`
	IntentCategory        string                       `json:"intentCategory"`
	TargetAudience        string                       `json:"targetAudience"`
	TransactionalElements domain.TransactionalElements `json:"transactionalElements"`
	BankruptcyTerms       []string                     `json:"bankruptcySpecificTerms"`
	FunnelStage           string                       `json:"funnelStage"`
	DetailedReasoning     string                       `json:"detailedReasoning"`
	Confidence            domain.Confidence            `json:"confidence"`
}

// ParseResponse normalizes a raw completion and decodes it into a verdict.
// Field values pass through without range checks.
func ParseResponse(content string) (domain.Verdict, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Verdict{}, errEmptyContent
	}

	normalized, pass, ok := Normalize(content)
	if !ok {
		return domain.Verdict{}, errUnparsable
	}

	var wire wireVerdict
	if err := json.Unmarshal([]byte(normalized), &wire); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if !wire.IntentScore.Set || strings.TrimSpace(wire.IntentCategory) == "" {
		return domain.Verdict{}, errIncomplete
	}

	source := domain.SourceAPI
	if pass != "" {
		source = domain.SourceRepaired
	}

	return domain.Verdict{
		IntentScore:           wire.IntentScore.Value,
		IntentCategory:        wire.IntentCategory,
		TargetAudience:        wire.TargetAudience,
		TransactionalElements: wire.TransactionalElements,
		BankruptcyTerms:       wire.BankruptcyTerms,
		FunnelStage:           wire.FunnelStage,
		DetailedReasoning:     wire.DetailedReasoning,
		Confidence:            wire.Confidence,
		Source:                source,
	}, nil
}
