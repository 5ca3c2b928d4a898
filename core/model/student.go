package model

// Ratio is the staff coverage a student requires for one session.
type Ratio int

const (
	RatioOneToOne Ratio = iota // one staff, one student
	RatioTwoToOne              // two staff, one student
	RatioOneToTwo              // one staff shared by up to two students
)

// GroupCap is the hard ceiling on students sharing one staff member in a
// single slot. Only 1:2 students group, and never more than two of them.
const GroupCap = 2

// String returns the ratio in roster notation.
func (r Ratio) String() string {
	switch r {
	case RatioOneToOne:
		return "1:1"
	case RatioTwoToOne:
		return "2:1"
	case RatioOneToTwo:
		return "1:2"
	default:
		return "unknown"
	}
}

// ParseRatio converts roster notation such as "2:1" into a Ratio.
func ParseRatio(s string) (Ratio, bool) {
	switch s {
	case "1:1":
		return RatioOneToOne, true
	case "2:1":
		return RatioTwoToOne, true
	case "1:2":
		return RatioOneToTwo, true
	default:
		return 0, false
	}
}

// RequiredStaff returns how many distinct staff members the ratio demands
// for full coverage of one session.
func (r Ratio) RequiredStaff() int {
	if r == RatioTwoToOne {
		return 2
	}
	return 1
}

// Student represents one client enrolled in a program cohort.
type Student struct {
	ID      string
	Name    string
	Program Program

	// Ratios are independent per session.
	RatioAM Ratio
	RatioPM Ratio

	// Team is the closed set of staff IDs eligible to serve this
	// student. Assignment outside the team is illegal, not merely
	// dispreferred.
	Team []string

	// PairedWith optionally names exactly one other student that must
	// receive an identical staff set each session, or nothing at all.
	PairedWith string

	// Absence flags for the day.
	AbsentAM      bool
	AbsentPM      bool
	AbsentFullDay bool

	Active bool
}

// RatioFor returns the coverage ratio for the given session.
func (st Student) RatioFor(ses Session) Ratio {
	if ses == SessionAM {
		return st.RatioAM
	}
	return st.RatioPM
}

// RequiredStaff returns the staff count needed to fully cover the student
// for the given session.
func (st Student) RequiredStaff(ses Session) int {
	return st.RatioFor(ses).RequiredStaff()
}

// AvailableFor reports whether the student attends the given session.
func (st Student) AvailableFor(ses Session) bool {
	if st.AbsentFullDay {
		return false
	}
	switch ses {
	case SessionAM:
		return !st.AbsentAM
	case SessionPM:
		return !st.AbsentPM
	default:
		return false
	}
}

// OnTeam reports whether the staff ID belongs to the student's team.
func (st Student) OnTeam(staffID string) bool {
	for _, id := range st.Team {
		if id == staffID {
			return true
		}
	}
	return false
}
