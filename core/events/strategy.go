package events

import "github.com/mpelletier/rosterd/core/model"

// StrategyEvent is emitted when a gap-repair strategy resolves a coverage
// gap. Strategy carries the provenance label of the winning path.
type StrategyEvent struct {
	RunID     string
	Strategy  string
	StudentID string
	Session   model.Session
	Program   model.Program
	Resolved  bool
}

// GapEvent is emitted for every (student, session) left short of its
// required staff count after all repair passes.
type GapEvent struct {
	RunID       string
	StudentID   string
	StudentName string
	Session     model.Session
	Program     model.Program
	Missing     int
}
