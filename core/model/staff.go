package model

import "math"

// Role is a staff member's certification level. The declaration order is
// the service hierarchy: lower values are preferred when candidates are
// ranked.
type Role int

const (
	RoleRBT Role = iota // registered behavior technician
	RoleBS              // behavior specialist
	RoleEA              // educational assistant
	RoleBCBA            // board certified behavior analyst
	RoleCC              // clinical coordinator
	RoleMHA             // mental health assistant
	RoleTeacher
	RoleDirector
)

// String returns the short role code used in rosters and exports.
func (r Role) String() string {
	switch r {
	case RoleRBT:
		return "RBT"
	case RoleBS:
		return "BS"
	case RoleEA:
		return "EA"
	case RoleBCBA:
		return "BCBA"
	case RoleCC:
		return "CC"
	case RoleMHA:
		return "MHA"
	case RoleTeacher:
		return "Teacher"
	case RoleDirector:
		return "Director"
	default:
		return "unknown"
	}
}

// ParseRole converts a role code such as "RBT" into a Role.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "RBT":
		return RoleRBT, true
	case "BS":
		return RoleBS, true
	case "EA":
		return RoleEA, true
	case "BCBA":
		return RoleBCBA, true
	case "CC":
		return RoleCC, true
	case "MHA":
		return RoleMHA, true
	case "Teacher":
		return RoleTeacher, true
	case "Director":
		return RoleDirector, true
	default:
		return 0, false
	}
}

// DirectService reports whether the role may ever be scheduled for direct
// student service. Teachers and directors are permanently excluded.
func (r Role) DirectService() bool {
	return r != RoleTeacher && r != RoleDirector
}

// HierarchyScore is the ranking score used when ordering candidates.
// Lower is preferred. Blocked roles score +Inf so they can never outrank
// a serviceable role even if one slips past filtering.
func (r Role) HierarchyScore() float64 {
	if !r.DirectService() {
		return math.Inf(1)
	}
	return float64(r)
}

// Preferred reports whether the role belongs to the preferred service
// tier. Staff outside this tier are only blended in when the preferred
// supply cannot cover a student's required count.
func (r Role) Preferred() bool {
	return r == RoleRBT || r == RoleBS
}

// Staff represents one caregiver on the day roster.
type Staff struct {
	ID   string
	Name string
	Role Role

	// Program capability flags. A staff member may float across both
	// cohorts.
	Primary   bool
	Secondary bool

	// Absence flags for the day.
	AbsentAM      bool
	AbsentPM      bool
	AbsentFullDay bool

	// Out-of-session flags mark staff pulled from a window for
	// non-service duties such as assessments or meetings.
	OutOfSessionAM bool
	OutOfSessionPM bool

	Active bool
}

// AvailableFor reports whether the staff member can serve during the
// given session, derived from the absence and out-of-session flags.
func (s Staff) AvailableFor(ses Session) bool {
	if s.AbsentFullDay {
		return false
	}
	switch ses {
	case SessionAM:
		return !s.AbsentAM && !s.OutOfSessionAM
	case SessionPM:
		return !s.AbsentPM && !s.OutOfSessionPM
	default:
		return false
	}
}

// CapableOf reports whether the staff member may serve the program cohort.
func (s Staff) CapableOf(p Program) bool {
	switch p {
	case ProgramPrimary:
		return s.Primary
	case ProgramSecondary:
		return s.Secondary
	default:
		return false
	}
}
