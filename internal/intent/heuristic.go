package intent

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"IntentScanner/internal/domain"
)

// Scores assigned by the keyword heuristic.
const (
	TransactionalScore = 8
	ReferenceScore     = 6
	DefaultScore       = 5
)

const (
	categoryTransactional = "transactional"
	categoryInformational = "informational"
)

// transactionalKeywords mark URLs of firms selling bankruptcy services.
var transactionalKeywords = []string{
	"bankrot", "consult", "lawyer", "advokat", "jurist", "urist",
	"банкрот", "юрист", "адвокат", "центр", "услуг",
}

// referenceKeywords mark legal reference resources: informational but
// worth more than a random article.
var referenceKeywords = []string{"law", "konsult", "garant", "fedresurs"}

// Heuristic builds synthetic verdicts from keywords found in the URL.
// The matchers keep internal state, so a Heuristic is not safe for
// concurrent use.
type Heuristic struct {
	transactional *ahocorasick.Matcher
	reference     *ahocorasick.Matcher
}

// NewHeuristic compiles the keyword automata.
func NewHeuristic() *Heuristic {
	return &Heuristic{
		transactional: ahocorasick.NewStringMatcher(transactionalKeywords),
		reference:     ahocorasick.NewStringMatcher(referenceKeywords),
	}
}

// Verdict classifies url by keywords alone. reason is recorded on the result.
func (h *Heuristic) Verdict(url, reason string) domain.Verdict {
	lower := []byte(strings.ToLower(url))

	var v domain.Verdict
	switch {
	case len(h.transactional.Match(lower)) > 0:
		v = transactionalVerdict()
	case len(h.reference.Match(lower)) > 0:
		v = referenceVerdict()
	default:
		v = DefaultVerdict()
	}

	v.Source = domain.SourceHeuristic
	v.FallbackReason = reason
	return v
}

// DefaultVerdict is the minimal verdict used when nothing else is known.
func DefaultVerdict() domain.Verdict {
	return domain.Verdict{
		IntentScore:    DefaultScore,
		IntentCategory: categoryInformational,
		TargetAudience: "individuals with debts",
		TransactionalElements: domain.TransactionalElements{
			ApplicationForm: domain.FlagSignal(false),
			Calculator:      domain.FlagSignal(false),
			ContactInfo:     domain.FlagSignal(false),
			CallToAction:    domain.FlagSignal(false),
			Chat:            domain.FlagSignal(false),
		},
		BankruptcyTerms:   []string{"bankruptcy", "банкротство"},
		FunnelStage:       "awareness",
		DetailedReasoning: "Analysis based on URL pattern only",
		Confidence:        domain.CategoricalConfidence(domain.ConfidenceLow),
		Source:            domain.SourceHeuristic,
	}
}

func transactionalVerdict() domain.Verdict {
	return domain.Verdict{
		IntentScore:    TransactionalScore,
		IntentCategory: categoryTransactional,
		TargetAudience: "individuals with debts seeking bankruptcy services",
		TransactionalElements: domain.TransactionalElements{
			ApplicationForm: domain.FlagSignal(true),
			Calculator:      domain.FlagSignal(true),
			ContactInfo:     domain.FlagSignal(true),
			CallToAction:    domain.FlagSignal(true),
			Chat:            domain.FlagSignal(true),
		},
		BankruptcyTerms:   []string{"bankruptcy", "банкротство", "списание долгов", "финансовый управляющий"},
		FunnelStage:       "consideration",
		DetailedReasoning: "URL принадлежит юридической компании, предоставляющей услуги по банкротству физлиц",
		Confidence:        domain.CategoricalConfidence(domain.ConfidenceMedium),
	}
}

func referenceVerdict() domain.Verdict {
	return domain.Verdict{
		IntentScore:    ReferenceScore,
		IntentCategory: categoryInformational,
		TargetAudience: "individuals researching bankruptcy options",
		TransactionalElements: domain.TransactionalElements{
			ApplicationForm: domain.FlagSignal(false),
			Calculator:      domain.FlagSignal(false),
			ContactInfo:     domain.FlagSignal(true),
			CallToAction:    domain.FlagSignal(false),
			Chat:            domain.FlagSignal(false),
		},
		BankruptcyTerms:   []string{"bankruptcy", "банкротство", "закон", "процедура"},
		FunnelStage:       "awareness",
		DetailedReasoning: "URL содержит информацию о законодательстве по банкротству физлиц",
		Confidence:        domain.CategoricalConfidence(domain.ConfidenceMedium),
	}
}
