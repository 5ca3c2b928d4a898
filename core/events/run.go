package events

import "time"

// RunStartedEvent is published when the engine begins a scheduling run.
type RunStartedEvent struct {
	RunID    string
	Date     time.Time
	Staff    int
	Students int
}

// RunCompletedEvent is published once a run has produced its result.
type RunCompletedEvent struct {
	RunID      string
	Date       time.Time
	Created    int
	Removed    int
	Unresolved int
	FillRate   float64
	Duration   time.Duration
}
