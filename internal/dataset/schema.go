package dataset

import (
	"strconv"
	"strings"

	"IntentScanner/internal/domain"
)

// Derived input columns added by Prepare when the source lacks them.
const (
	ColumnURL     = "url"
	ColumnTraffic = "TRAFFIC"
)

// Output columns appended after the input columns.
const (
	ColumnIntentScore       = "intentScore"
	ColumnIntentCategory    = "intentCategory"
	ColumnTargetAudience    = "targetAudience"
	ColumnApplicationForm   = "applicationForm"
	ColumnCalculator        = "calculator"
	ColumnContactInfo       = "contactInfo"
	ColumnCallToAction      = "callToAction"
	ColumnChat              = "chat"
	ColumnBankruptcyTerms   = "bankruptcySpecificTerms"
	ColumnFunnelStage       = "funnelStage"
	ColumnDetailedReasoning = "detailedReasoning"
	ColumnConfidence        = "confidence"
	ColumnStatus            = "analysis_status"
	ColumnErrorMessage      = "error_message"
)

// OutputColumns is the fixed verdict schema, in output order.
var OutputColumns = []string{
	ColumnIntentScore,
	ColumnIntentCategory,
	ColumnTargetAudience,
	ColumnApplicationForm,
	ColumnCalculator,
	ColumnContactInfo,
	ColumnCallToAction,
	ColumnChat,
	ColumnBankruptcyTerms,
	ColumnFunnelStage,
	ColumnDetailedReasoning,
	ColumnConfidence,
	ColumnStatus,
	ColumnErrorMessage,
}

const termsSeparator = ", "

// Header returns the full output header of ds.
func Header(ds *domain.Dataset) []string {
	header := make([]string, 0, len(ds.Header)+len(OutputColumns))
	header = append(header, ds.Header...)
	return append(header, OutputColumns...)
}

// Record renders a row under Header. Unprocessed rows have empty verdict and
// status cells.
func Record(row *domain.Row) []string {
	record := make([]string, 0, len(row.Cells)+len(OutputColumns))
	record = append(record, row.Cells...)

	v := row.Verdict
	if v == nil {
		verdictCells := make([]string, len(OutputColumns))
		verdictCells[len(verdictCells)-2] = string(row.Status)
		verdictCells[len(verdictCells)-1] = row.ErrorMessage
		return append(record, verdictCells...)
	}

	return append(record,
		strconv.Itoa(v.IntentScore),
		v.IntentCategory,
		v.TargetAudience,
		v.TransactionalElements.ApplicationForm.String(),
		v.TransactionalElements.Calculator.String(),
		v.TransactionalElements.ContactInfo.String(),
		v.TransactionalElements.CallToAction.String(),
		v.TransactionalElements.Chat.String(),
		strings.Join(v.BankruptcyTerms, termsSeparator),
		v.FunnelStage,
		v.DetailedReasoning,
		v.Confidence.String(),
		string(row.Status),
		row.ErrorMessage,
	)
}

// DecodeOutcome rebuilds a row outcome from stored output cells. value
// returns the cell for an output column name. Rows without a success status
// are reported as not restorable.
func DecodeOutcome(value func(column string) string) (domain.Verdict, string, bool) {
	if domain.Status(strings.TrimSpace(value(ColumnStatus))) != domain.StatusSuccess {
		return domain.Verdict{}, "", false
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(value(ColumnIntentScore)), 64)
	if err != nil {
		return domain.Verdict{}, "", false
	}

	var terms []string
	if raw := strings.TrimSpace(value(ColumnBankruptcyTerms)); raw != "" {
		for _, term := range strings.Split(raw, termsSeparator) {
			if term = strings.TrimSpace(term); term != "" {
				terms = append(terms, term)
			}
		}
	}

	v := domain.Verdict{
		IntentScore:    int(score),
		IntentCategory: value(ColumnIntentCategory),
		TargetAudience: value(ColumnTargetAudience),
		TransactionalElements: domain.TransactionalElements{
			ApplicationForm: domain.ParseSignal(value(ColumnApplicationForm)),
			Calculator:      domain.ParseSignal(value(ColumnCalculator)),
			ContactInfo:     domain.ParseSignal(value(ColumnContactInfo)),
			CallToAction:    domain.ParseSignal(value(ColumnCallToAction)),
			Chat:            domain.ParseSignal(value(ColumnChat)),
		},
		BankruptcyTerms:   terms,
		FunnelStage:       value(ColumnFunnelStage),
		DetailedReasoning: value(ColumnDetailedReasoning),
		Confidence:        domain.ParseConfidence(value(ColumnConfidence)),
	}

	return v, value(ColumnErrorMessage), true
}

func isOutputColumn(name string) bool {
	for _, col := range OutputColumns {
		if col == name {
			return true
		}
	}
	return false
}
