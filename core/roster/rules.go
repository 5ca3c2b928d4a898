package roster

import (
	"fmt"

	"github.com/mpelletier/rosterd/core/model"
)

// RuleID identifies one validation rule. The engine records violated rules
// in its decision trace so an unexpected skip can be traced to the exact
// constraint that caused it.
type RuleID int

const (
	RuleTeam          RuleID = iota // staff must belong to the student's team
	RuleDirectService               // role must permit direct service
	RuleSlotOccupied                // staff already booked in the slot, outside the 1:2 group exception
	RuleRequiredCount               // student already holds the required staff count
	RuleSameDayRepeat               // staff already worked with the student today
	RuleAvailability                // staff absent or out of session
	RuleProgram                     // staff not capable of the program
)

func (r RuleID) String() string {
	switch r {
	case RuleTeam:
		return "team"
	case RuleDirectService:
		return "direct-service"
	case RuleSlotOccupied:
		return "slot-occupied"
	case RuleRequiredCount:
		return "required-count"
	case RuleSameDayRepeat:
		return "same-day-repeat"
	case RuleAvailability:
		return "availability"
	case RuleProgram:
		return "program"
	default:
		return "unknown"
	}
}

// Violation is one failed check for a candidate assignment.
type Violation struct {
	Rule   RuleID
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
}

// Candidate is a hypothetical assignment under validation. It carries only
// identity; the rules resolve rosters and current bookings themselves.
type Candidate struct {
	StaffID   string
	StudentID string
	Session   model.Session
	Program   model.Program
}

// Rules is the single source of truth for assignment legality. Every
// strategy validates through Check before touching the schedule; no path
// bypasses it.
type Rules struct {
	staff    map[string]model.Staff
	students map[string]model.Student
}

// NewRules indexes the day's rosters for validation lookups.
func NewRules(staff []model.Staff, students []model.Student) *Rules {
	r := &Rules{
		staff:    make(map[string]model.Staff, len(staff)),
		students: make(map[string]model.Student, len(students)),
	}
	for _, s := range staff {
		r.staff[s.ID] = s
	}
	for _, st := range students {
		r.students[st.ID] = st
	}
	return r
}

// Staff looks up a roster staff member by ID.
func (r *Rules) Staff(id string) (model.Staff, bool) {
	s, ok := r.staff[id]
	return s, ok
}

// Student looks up a roster student by ID.
func (r *Rules) Student(id string) (model.Student, bool) {
	st, ok := r.students[id]
	return st, ok
}

// Check validates a candidate against the given view and returns every
// violated rule. An empty slice means the candidate is legal. A rule
// failure is a normal outcome, not an error; the error return fires only
// when a required input is missing.
func (r *Rules) Check(view View, c Candidate) ([]Violation, error) {
	if view == nil {
		return nil, fmt.Errorf("rules: nil schedule view")
	}
	staff, ok := r.staff[c.StaffID]
	if !ok {
		return nil, fmt.Errorf("rules: staff %q not on roster", c.StaffID)
	}
	student, ok := r.students[c.StudentID]
	if !ok {
		return nil, fmt.Errorf("rules: student %q not on roster", c.StudentID)
	}

	var violations []Violation

	if !student.OnTeam(staff.ID) {
		violations = append(violations, Violation{
			Rule:   RuleTeam,
			Detail: fmt.Sprintf("staff %s is not on %s's team", staff.ID, student.ID),
		})
	}

	if !staff.Role.DirectService() {
		violations = append(violations, Violation{
			Rule:   RuleDirectService,
			Detail: fmt.Sprintf("role %s is blocked from direct service", staff.Role),
		})
	}

	if v, ok := r.checkSlot(view, staff, student, c); !ok {
		violations = append(violations, v)
	}

	// Required count is per (student, session) regardless of program, per
	// the over-assignment invariant.
	held := 0
	for _, a := range view.ForStudent(student.ID) {
		if a.Session == c.Session {
			held++
		}
	}
	if held >= student.RequiredStaff(c.Session) {
		violations = append(violations, Violation{
			Rule:   RuleRequiredCount,
			Detail: fmt.Sprintf("%s already holds %d of %d staff for %s", student.ID, held, student.RequiredStaff(c.Session), c.Session),
		})
	}

	if view.WorkedTogether(staff.ID, student.ID) {
		violations = append(violations, Violation{
			Rule:   RuleSameDayRepeat,
			Detail: fmt.Sprintf("staff %s already worked with %s today", staff.ID, student.ID),
		})
	}

	if !staff.AvailableFor(c.Session) {
		violations = append(violations, Violation{
			Rule:   RuleAvailability,
			Detail: fmt.Sprintf("staff %s is unavailable for %s", staff.ID, c.Session),
		})
	}

	if !staff.CapableOf(c.Program) {
		violations = append(violations, Violation{
			Rule:   RuleProgram,
			Detail: fmt.Sprintf("staff %s is not capable of %s", staff.ID, c.Program),
		})
	}

	return violations, nil
}

// checkSlot enforces single-booking per slot with the one sanctioned
// exception: a staff member may hold up to GroupCap assignments in a slot
// when every student involved, the candidate included, is 1:2 for that
// session.
func (r *Rules) checkSlot(view View, staff model.Staff, student model.Student, c Candidate) (Violation, bool) {
	var mates []model.Assignment
	for _, a := range view.ForStaff(staff.ID) {
		if a.Session == c.Session && a.Program == c.Program {
			mates = append(mates, a)
		}
	}
	if len(mates) == 0 {
		return Violation{}, true
	}
	if student.RatioFor(c.Session) != model.RatioOneToTwo {
		return Violation{
			Rule:   RuleSlotOccupied,
			Detail: fmt.Sprintf("staff %s is already booked for %s %s", staff.ID, c.Program, c.Session),
		}, false
	}
	if len(mates)+1 > model.GroupCap {
		return Violation{
			Rule:   RuleSlotOccupied,
			Detail: fmt.Sprintf("staff %s's group is already at capacity", staff.ID),
		}, false
	}
	for _, a := range mates {
		mate, ok := r.students[a.StudentID]
		if !ok || mate.RatioFor(c.Session) != model.RatioOneToTwo {
			return Violation{
				Rule:   RuleSlotOccupied,
				Detail: fmt.Sprintf("staff %s's existing booking is not a 1:2 group", staff.ID),
			}, false
		}
	}
	return Violation{}, true
}
