package model

import (
	"time"

	"github.com/google/uuid"
)

// Strategy identifies which engine path produced an assignment.
type Strategy int

const (
	StrategyManual Strategy = iota
	StrategyAuto
	StrategyAutoPaired
	StrategyAutoDirect
	StrategyAutoSwap
	StrategyAutoChain
	StrategyAutoCross
)

// String returns the provenance label used in logs and exports.
func (s Strategy) String() string {
	switch s {
	case StrategyManual:
		return "manual"
	case StrategyAuto:
		return "auto"
	case StrategyAutoPaired:
		return "auto-paired"
	case StrategyAutoDirect:
		return "auto-direct"
	case StrategyAutoSwap:
		return "auto-swap"
	case StrategyAutoChain:
		return "auto-chain"
	case StrategyAutoCross:
		return "auto-cross"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a provenance label back into a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "manual":
		return StrategyManual, true
	case "auto":
		return StrategyAuto, true
	case "auto-paired":
		return StrategyAutoPaired, true
	case "auto-direct":
		return StrategyAutoDirect, true
	case "auto-swap":
		return StrategyAutoSwap, true
	case "auto-chain":
		return StrategyAutoChain, true
	case "auto-cross":
		return StrategyAutoCross, true
	default:
		return 0, false
	}
}

// Origin records the provenance of an assignment as structured data
// rather than a free-text tag.
type Origin struct {
	Strategy Strategy

	// ChainDepth is the number of moves in the chain that freed the
	// staff member. Zero for everything but chain swaps.
	ChainDepth int

	// ReplacedStaff names the staff member this assignment displaced
	// during a swap or relocation, if any.
	ReplacedStaff string
}

// Assignment pairs one staff member with one student for a session slot.
type Assignment struct {
	ID        string
	StaffID   string
	StudentID string
	Session   Session
	Program   Program
	Date      time.Time
	Locked    bool
	Origin    Origin
}

// NewAssignment mints an assignment with a fresh identifier.
func NewAssignment(staffID, studentID string, ses Session, prog Program, date time.Time, origin Origin) Assignment {
	return Assignment{
		ID:        uuid.NewString(),
		StaffID:   staffID,
		StudentID: studentID,
		Session:   ses,
		Program:   prog,
		Date:      date,
		Origin:    origin,
	}
}
