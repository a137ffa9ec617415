package usecase

import (
	"errors"
	"fmt"

	"IntentScanner/internal/dataset"
	"IntentScanner/internal/domain"
	"IntentScanner/internal/tabular"
)

// ErrResumeMismatch is returned when a previous output cannot be lined up
// with the prepared dataset.
var ErrResumeMismatch = errors.New("previous output does not match dataset")

// Restore copies successful outcomes from a previous output table into ds.
// The previous table must list the same URLs in the same order; rows are
// matched by position, never by URL. It returns the number of restored rows.
func Restore(ds *domain.Dataset, prev tabular.Table) (int, error) {
	columns := make(map[string]int, len(prev.Header))
	for i, name := range prev.Header {
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}

	urlIdx, ok := columns[dataset.ColumnURL]
	if !ok {
		return 0, fmt.Errorf("%w: no %q column", ErrResumeMismatch, dataset.ColumnURL)
	}
	if _, ok := columns[dataset.ColumnStatus]; !ok {
		return 0, fmt.Errorf("%w: no %q column", ErrResumeMismatch, dataset.ColumnStatus)
	}
	if len(prev.Records) != ds.Len() {
		return 0, fmt.Errorf("%w: %d rows, want %d", ErrResumeMismatch, len(prev.Records), ds.Len())
	}
	for i, row := range ds.Rows {
		if got := prev.Cell(i, urlIdx); got != row.URL {
			return 0, fmt.Errorf("%w: row %d is %q, want %q", ErrResumeMismatch, i, got, row.URL)
		}
	}

	restored := 0
	for i, row := range ds.Rows {
		value := func(column string) string {
			idx, ok := columns[column]
			if !ok {
				return ""
			}
			return prev.Cell(i, idx)
		}

		v, msg, ok := dataset.DecodeOutcome(value)
		if !ok {
			continue
		}
		row.Apply(v)
		row.ErrorMessage = msg
		restored++
	}

	return restored, nil
}
