package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// VerdictSource tells which rung of the classification ladder produced a verdict.
type VerdictSource string

const (
	SourceAPI       VerdictSource = "api"
	SourceRepaired  VerdictSource = "repaired"
	SourceHeuristic VerdictSource = "heuristic"
)

// Verdict is the structured intent classification of one URL.
type Verdict struct {
	IntentScore           int
	IntentCategory        string
	TargetAudience        string
	TransactionalElements TransactionalElements
	BankruptcyTerms       []string
	FunnelStage           string
	DetailedReasoning     string
	Confidence            Confidence

	Source VerdictSource
	// FallbackReason is set when Source is SourceHeuristic.
	FallbackReason string
}

// TransactionalElements lists the conversion elements a page is expected to carry.
type TransactionalElements struct {
	ApplicationForm Signal `json:"applicationForm"`
	Calculator      Signal `json:"calculator"`
	ContactInfo     Signal `json:"contactInfo"`
	CallToAction    Signal `json:"callToAction"`
	Chat            Signal `json:"chat"`
}

// SignalKind discriminates Signal values.
type SignalKind int

const (
	SignalUnknown SignalKind = iota
	SignalFlag
	SignalProbability
)

// Signal is either a yes/no flag (heuristic verdicts) or a 0-100 probability
// reported by the model.
type Signal struct {
	Kind        SignalKind
	Flag        bool
	Probability float64
}

// FlagSignal builds a boolean signal.
func FlagSignal(v bool) Signal {
	return Signal{Kind: SignalFlag, Flag: v}
}

// ProbabilitySignal builds a probability signal.
func ProbabilitySignal(p float64) Signal {
	return Signal{Kind: SignalProbability, Probability: p}
}

// String renders the signal for tabular output; unknown renders empty.
func (s Signal) String() string {
	switch s.Kind {
	case SignalFlag:
		return strconv.FormatBool(s.Flag)
	case SignalProbability:
		return formatNumber(s.Probability)
	default:
		return ""
	}
}

// UnmarshalJSON accepts booleans, numbers and their string spellings.
// Anything else decodes to SignalUnknown instead of failing the whole verdict.
func (s *Signal) UnmarshalJSON(data []byte) error {
	*s = ParseSignal(rawScalar(data))
	return nil
}

// ParseSignal interprets a cell or JSON scalar as a signal.
func ParseSignal(raw string) Signal {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "":
		return Signal{}
	case "true", "yes":
		return FlagSignal(true)
	case "false", "no":
		return FlagSignal(false)
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return ProbabilitySignal(v)
	}
	return Signal{}
}

// ConfidenceKind discriminates Confidence values.
type ConfidenceKind int

const (
	ConfidenceUnknown ConfidenceKind = iota
	ConfidenceNumeric
	ConfidenceCategorical
)

// Confidence levels used by heuristic verdicts.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Confidence is either a 0-100 number from the model or a categorical level
// from the heuristic ladder. The two are never converted into each other.
type Confidence struct {
	Kind  ConfidenceKind
	Value float64
	Level string
}

// NumericConfidence builds a numeric confidence.
func NumericConfidence(v float64) Confidence {
	return Confidence{Kind: ConfidenceNumeric, Value: v}
}

// CategoricalConfidence builds a categorical confidence.
func CategoricalConfidence(level string) Confidence {
	return Confidence{Kind: ConfidenceCategorical, Level: level}
}

func (c Confidence) String() string {
	switch c.Kind {
	case ConfidenceNumeric:
		return formatNumber(c.Value)
	case ConfidenceCategorical:
		return c.Level
	default:
		return ""
	}
}

// UnmarshalJSON keeps numbers numeric and strings categorical.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var level string
		if err := json.Unmarshal(trimmed, &level); err != nil {
			return err
		}
		*c = Confidence{}
		if level = strings.TrimSpace(level); level != "" {
			*c = CategoricalConfidence(level)
		}
		return nil
	}
	*c = ParseConfidence(rawScalar(trimmed))
	return nil
}

// ParseConfidence interprets a stored cell: numbers become numeric, other
// non-empty text becomes categorical.
func ParseConfidence(raw string) Confidence {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return Confidence{}
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return NumericConfidence(v)
	}
	return CategoricalConfidence(raw)
}

// Score is an intent score as reported by the model. It accepts integers,
// floats (rounded) and numeric strings; Set reports whether a value was present.
type Score struct {
	Value int
	Set   bool
}

// UnmarshalJSON decodes a score without range validation.
func (s *Score) UnmarshalJSON(data []byte) error {
	raw := rawScalar(data)
	if raw == "" || raw == "null" {
		*s = Score{}
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("score %q is not a number", raw)
	}
	*s = Score{Value: roundHalfUp(v), Set: true}
	return nil
}

func rawScalar(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

func roundHalfUp(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
