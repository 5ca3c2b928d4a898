package metrics

import (
	"time"

	"github.com/mpelletier/rosterd/core/model"
)

// AssignmentRecord represents one committed staff-student pairing to be
// recorded for observability purposes.
type AssignmentRecord struct {
	RunID     string
	StaffID   string
	StudentID string
	Session   model.Session
	Program   model.Program
	Strategy  model.Strategy
	// Degraded marks assignments that had to reach into the fallback role
	// tier because preferred supply was short.
	Degraded bool
	Time     time.Time
}

// MetricsSink records committed assignments for observability purposes.
type MetricsSink interface {
	RecordAssignments(recs []AssignmentRecord) error
}

// RunSummary captures the aggregate outcome of one engine run.
type RunSummary struct {
	RunID      string
	Date       time.Time
	Created    int
	Removed    int
	Unresolved int
	Degraded   int
	FillRate   float64
	Duration   time.Duration
	Time       time.Time
}

// RunRecorder records per-run summaries.
type RunRecorder interface {
	RecordRunSummary(sum RunSummary) error
}

// GapRecord captures a coverage gap the engine could not resolve.
type GapRecord struct {
	RunID       string
	StudentID   string
	StudentName string
	Session     model.Session
	Program     model.Program
	Missing     int
	Time        time.Time
}

// GapRecorder records unresolved coverage gaps.
type GapRecorder interface {
	RecordGaps(gaps []GapRecord) error
}

// StrategyRecord captures one gap-repair strategy outcome.
type StrategyRecord struct {
	RunID     string
	Strategy  string
	StudentID string
	Session   model.Session
	Program   model.Program
	Resolved  bool
	Time      time.Time
}

// StrategyRecorder records gap-repair strategy attempts.
type StrategyRecorder interface {
	RecordStrategy(rec StrategyRecord) error
}

// RosterSizeRecorder records the roster headcount seen at the start of a run.
type RosterSizeRecorder interface {
	RecordRosterSize(staff, students int) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssignments([]AssignmentRecord) error { return nil }

func (NopSink) RecordRunSummary(RunSummary) error   { return nil }
func (NopSink) RecordGaps([]GapRecord) error        { return nil }
func (NopSink) RecordStrategy(StrategyRecord) error { return nil }

// Ensure NopSink implements RosterSizeRecorder.
func (NopSink) RecordRosterSize(int, int) error { return nil }
