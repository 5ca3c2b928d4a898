package events

import "github.com/mpelletier/rosterd/core/model"

// AssignmentEvent is published for each assignment the engine commits.
type AssignmentEvent struct {
	RunID      string
	Assignment model.Assignment
}

// RemovalEvent is published when the engine displaces or strips an
// assignment from the schedule.
type RemovalEvent struct {
	RunID      string
	Assignment model.Assignment
}
