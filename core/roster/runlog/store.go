package runlog

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Append and Query after the store has been
// closed. Callers shutting down concurrently with in-flight queries can
// branch on it instead of surfacing a backend-specific failure.
var ErrClosed = errors.New("run log store is closed")

// AssignmentEntry is one committed pairing inside a run record.
type AssignmentEntry struct {
	ID        string `json:"id"`
	StaffID   string `json:"staff_id"`
	StudentID string `json:"student_id"`
	Session   string `json:"session"`
	Program   string `json:"program"`
	Strategy  string `json:"strategy"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// GapEntry is one residual coverage gap inside a run record.
type GapEntry struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Session     string `json:"session"`
	Program     string `json:"program"`
	Missing     int    `json:"missing"`
}

// RunRecord captures one engine run: the diff it produced and what it
// could not resolve.
type RunRecord struct {
	Timestamp  time.Time         `json:"timestamp"`
	RunID      string            `json:"run_id"`
	Date       time.Time         `json:"date"`
	Created    []AssignmentEntry `json:"created"`
	Removed    []AssignmentEntry `json:"removed"`
	Gaps       []GapEntry        `json:"gaps"`
	Errors     []string          `json:"errors"`
	FillRate   float64           `json:"fill_rate"`
	DurationMS int64             `json:"duration_ms"`
}

// LogQuery defines filters for retrieving run records.
type LogQuery struct {
	Start     time.Time
	End       time.Time
	StaffID   string
	StudentID string
	Strategy  string
}

// LogStore persists RunRecords and supports querying. Close is
// idempotent; once a store is closed, Append and Query return ErrClosed.
type LogStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q LogQuery) ([]RunRecord, error)
	Close() error
}

// matches reports whether the record passes every filter in q.
func (r RunRecord) matches(q LogQuery) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.StaffID != "" && !r.mentionsStaff(q.StaffID) {
		return false
	}
	if q.StudentID != "" && !r.mentionsStudent(q.StudentID) {
		return false
	}
	if q.Strategy != "" && !r.usedStrategy(q.Strategy) {
		return false
	}
	return true
}

func (r RunRecord) mentionsStaff(id string) bool {
	for _, e := range r.Created {
		if e.StaffID == id {
			return true
		}
	}
	for _, e := range r.Removed {
		if e.StaffID == id {
			return true
		}
	}
	return false
}

func (r RunRecord) mentionsStudent(id string) bool {
	for _, e := range r.Created {
		if e.StudentID == id {
			return true
		}
	}
	for _, e := range r.Removed {
		if e.StudentID == id {
			return true
		}
	}
	for _, g := range r.Gaps {
		if g.StudentID == id {
			return true
		}
	}
	return false
}

func (r RunRecord) usedStrategy(s string) bool {
	for _, e := range r.Created {
		if e.Strategy == s {
			return true
		}
	}
	return false
}
