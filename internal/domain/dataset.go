package domain

// Status is the analysis state of a row.
type Status string

const (
	StatusPending Status = ""
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// URLRecord is the input part of a row.
type URLRecord struct {
	URL     string
	Traffic float64
}

// Row is one prepared input row plus its classification outcome.
type Row struct {
	URLRecord
	// Cells holds the original input cells, aligned with Dataset.Header.
	Cells        []string
	Verdict      *Verdict
	Status       Status
	ErrorMessage string
}

// Apply merges a verdict into the row and marks it successful.
func (r *Row) Apply(v Verdict) {
	r.Verdict = &v
	r.Status = StatusSuccess
	r.ErrorMessage = v.FallbackReason
}

// Fail marks the row as failed without a verdict.
func (r *Row) Fail(msg string) {
	r.Verdict = nil
	r.Status = StatusError
	r.ErrorMessage = msg
}

// Processed reports whether the row already carries an outcome.
func (r *Row) Processed() bool {
	return r.Status != StatusPending
}

// Dataset is the ordered set of rows under analysis. Row identity is the
// slice index; duplicate URLs are independent rows.
type Dataset struct {
	Header []string
	Rows   []*Row
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Subset returns a dataset sharing the header and the given rows.
func (d *Dataset) Subset(rows []*Row) *Dataset {
	return &Dataset{Header: d.Header, Rows: rows}
}
