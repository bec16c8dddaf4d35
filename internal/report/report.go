// Package report accumulates per-recipient delivery outcomes and renders
// them as a downloadable CSV table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state of a single send attempt.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Outcome records the result of one send attempt. It is immutable once
// appended to a report.
type Outcome struct {
	Recipient string
	Status    Status
	Error     string
	Timestamp time.Time
}

// Report is the ordered record of outcomes for one run, one row per
// recipient in the original parse order.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
}

// New creates an empty report with a fresh run ID.
func New() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Append adds an outcome to the report.
func (r *Report) Append(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Finish stamps the report's completion time.
func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// SentCount returns the number of successful sends.
func (r *Report) SentCount() int {
	return r.count(StatusSent)
}

// FailedCount returns the number of failed sends.
func (r *Report) FailedCount() int {
	return r.count(StatusFailed)
}

func (r *Report) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// WriteCSV renders the report as UTF-8 CSV with a header row followed by
// one data row per outcome in original order. An empty report still yields
// the header row.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"recipient", "status", "error", "timestamp"}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, o := range r.Outcomes {
		row := []string{o.Recipient, string(o.Status), o.Error, o.Timestamp.Format(time.RFC3339)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
