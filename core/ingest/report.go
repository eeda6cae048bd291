package ingest

import "sort"

// Report row dispositions: every input row lands in exactly one bucket,
// in first-seen order within each bucket.
type (
	// CreatedRecord identifies a successfully written root record.
	CreatedRecord struct {
		ID         string `json:"id"`
		NaturalKey string `json:"naturalKey"`
		Name       string `json:"name,omitempty"`
	}

	// SkippedRow is a benign rejection: a pre-existing natural key or a row
	// outside the target roster. Re-running an import lands here, not in errors.
	SkippedRow struct {
		NaturalKey string `json:"naturalKey"`
		Reason     string `json:"reason"`
	}

	// InvalidRow failed static/business validation before any write attempt.
	InvalidRow struct {
		Row    Row    `json:"row"`
		Reason string `json:"reason"`
	}

	// ErrorRow passed validation but failed at write time, or its post-write
	// notification failed (reason prefixed "Email failed: ").
	ErrorRow struct {
		NaturalKey string `json:"naturalKey"`
		Reason     string `json:"reason"`
	}

	Report struct {
		CreatedCount int             `json:"createdCount"`
		Created      []CreatedRecord `json:"created"`
		Skipped      []SkippedRow    `json:"skipped"`
		Invalid      []InvalidRow    `json:"invalid"`
		Errors       []ErrorRow      `json:"errors"`

		errorIdx []int // input row index per Errors entry
	}
)

func newReport() *Report {
	return &Report{
		Created: make([]CreatedRecord, 0),
		Skipped: make([]SkippedRow, 0),
		Invalid: make([]InvalidRow, 0),
		Errors:  make([]ErrorRow, 0),
	}
}

func (r *Report) addCreated(id, naturalKey, name string) {
	r.Created = append(r.Created, CreatedRecord{ID: id, NaturalKey: naturalKey, Name: name})
	r.CreatedCount++
}

func (r *Report) addSkipped(naturalKey, reason string) {
	r.Skipped = append(r.Skipped, SkippedRow{NaturalKey: naturalKey, Reason: reason})
}

func (r *Report) addInvalid(row Row, reason string) {
	r.Invalid = append(r.Invalid, InvalidRow{Row: row, Reason: reason})
}

func (r *Report) addError(idx int, naturalKey, reason string) {
	r.Errors = append(r.Errors, ErrorRow{NaturalKey: naturalKey, Reason: reason})
	r.errorIdx = append(r.errorIdx, idx)
}

// sortErrors restores input-row order in the errors bucket after notification
// failures, which only materialize at join time, are folded in.
func (r *Report) sortErrors() {
	sort.Sort((*errorsByRow)(r))
}

type errorsByRow Report

func (r *errorsByRow) Len() int { return len(r.Errors) }
func (r *errorsByRow) Less(i, j int) bool { return r.errorIdx[i] < r.errorIdx[j] }
func (r *errorsByRow) Swap(i, j int) {
	r.Errors[i], r.Errors[j] = r.Errors[j], r.Errors[i]
	r.errorIdx[i], r.errorIdx[j] = r.errorIdx[j], r.errorIdx[i]
}

// Total is the number of rows accounted for across all buckets.
func (r *Report) Total() int {
	return len(r.Created) + len(r.Skipped) + len(r.Invalid) + len(r.Errors)
}
