package roster

import (
	"time"

	"github.com/mpelletier/rosterd/core/model"
)

// Stage identifies the phase of a run that produced a trace decision.
type Stage int

const (
	StageDirect   Stage = iota // greedy sweep
	StageRealloc               // gap-repair strategies
	StageFinalize              // partial-coverage stripping and gap reporting
)

func (s Stage) String() string {
	switch s {
	case StageDirect:
		return "direct"
	case StageRealloc:
		return "realloc"
	case StageFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}

// Outcome classifies a trace decision.
type Outcome int

const (
	OutcomeAssigned Outcome = iota // assignment committed
	OutcomeSkipped                 // candidate rejected by validation
	OutcomeRemoved                 // assignment displaced or stripped
	OutcomeFailed                  // student-session left uncovered by this stage
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAssigned:
		return "assigned"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRemoved:
		return "removed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Decision is one entry of the structured trace a run returns alongside
// its diff. The trace replaces ad hoc debug printing: callers that want to
// understand why a student ended up uncovered read the decisions, not logs.
type Decision struct {
	Stage     Stage
	Strategy  model.Strategy
	StudentID string
	StaffID   string
	Session   model.Session
	Program   model.Program
	Outcome   Outcome
	Detail    string
}

// Result is the complete diff of one engine run. NewAssignments holds only
// assignments created by this run and still on the schedule when it
// finished; Removed holds pre-existing assignments the run displaced.
// Errors carries one human-readable diagnostic per unresolved gap.
type Result struct {
	RunID          string
	Date           time.Time
	NewAssignments []model.Assignment
	Removed        []model.Assignment
	Errors         []string
	Trace          []Decision
	Report         Report
	Duration       time.Duration
}

// Unresolved reports how many coverage gaps survived the run.
func (r Result) Unresolved() int { return len(r.Errors) }
