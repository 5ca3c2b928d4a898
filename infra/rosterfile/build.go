package rosterfile

import (
	"fmt"
	"time"

	"github.com/mpelletier/rosterd/core/model"
)

// Day is the in-memory roster a File builds into: the inputs RunDay hands
// to the engine.
type Day struct {
	Date     time.Time
	Staff    []model.Staff
	Students []model.Student
	Schedule *model.Schedule
}

// Build validates the file and converts it into model types. Validation is
// strict: unknown codes and dangling references are errors, not warnings,
// because a silently dropped row surfaces hours later as an uncovered
// student.
func (f File) Build() (Day, error) {
	if f.Date == "" {
		return Day{}, fmt.Errorf("roster date is required")
	}
	date, err := time.Parse("2006-01-02", f.Date)
	if err != nil {
		return Day{}, fmt.Errorf("roster date %q: %w", f.Date, err)
	}

	staff := make([]model.Staff, 0, len(f.Staff))
	staffIDs := make(map[string]struct{}, len(f.Staff))
	for _, e := range f.Staff {
		s, err := e.build()
		if err != nil {
			return Day{}, err
		}
		if _, ok := staffIDs[s.ID]; ok {
			return Day{}, fmt.Errorf("duplicate staff id %q", s.ID)
		}
		staffIDs[s.ID] = struct{}{}
		staff = append(staff, s)
	}

	students := make([]model.Student, 0, len(f.Students))
	studentIDs := make(map[string]struct{}, len(f.Students))
	for _, e := range f.Students {
		st, err := e.build()
		if err != nil {
			return Day{}, err
		}
		if _, ok := studentIDs[st.ID]; ok {
			return Day{}, fmt.Errorf("duplicate student id %q", st.ID)
		}
		studentIDs[st.ID] = struct{}{}
		for _, tid := range st.Team {
			if _, ok := staffIDs[tid]; !ok {
				return Day{}, fmt.Errorf("student %s: team member %q is not on the staff roster", st.ID, tid)
			}
		}
		students = append(students, st)
	}
	for _, st := range students {
		if st.PairedWith == "" {
			continue
		}
		if st.PairedWith == st.ID {
			return Day{}, fmt.Errorf("student %s: paired with itself", st.ID)
		}
		if _, ok := studentIDs[st.PairedWith]; !ok {
			return Day{}, fmt.Errorf("student %s: paired student %q is not on the roster", st.ID, st.PairedWith)
		}
	}

	studentsByID := make(map[string]model.Student, len(students))
	for _, st := range students {
		studentsByID[st.ID] = st
	}

	sched := model.NewSchedule(date)
	for i, e := range f.Assignments {
		if _, ok := staffIDs[e.StaffID]; !ok {
			return Day{}, fmt.Errorf("assignment %d: unknown staff %q", i, e.StaffID)
		}
		st, ok := studentsByID[e.StudentID]
		if !ok {
			return Day{}, fmt.Errorf("assignment %d: unknown student %q", i, e.StudentID)
		}
		ses, ok := model.ParseSession(e.Session)
		if !ok {
			return Day{}, fmt.Errorf("assignment %d: unknown session %q", i, e.Session)
		}
		prog := st.Program
		if e.Program != "" {
			prog, ok = model.ParseProgram(e.Program)
			if !ok {
				return Day{}, fmt.Errorf("assignment %d: unknown program %q", i, e.Program)
			}
		}
		a := model.NewAssignment(e.StaffID, e.StudentID, ses, prog, date,
			model.Origin{Strategy: model.StrategyManual})
		a.Locked = e.Locked
		if err := sched.Add(a); err != nil {
			return Day{}, fmt.Errorf("assignment %d: %w", i, err)
		}
	}

	return Day{Date: date, Staff: staff, Students: students, Schedule: sched}, nil
}

func (e StaffEntry) build() (model.Staff, error) {
	if e.ID == "" {
		return model.Staff{}, fmt.Errorf("staff entry missing id")
	}
	role, ok := model.ParseRole(e.Role)
	if !ok {
		return model.Staff{}, fmt.Errorf("staff %s: unknown role %q", e.ID, e.Role)
	}
	s := model.Staff{
		ID:     e.ID,
		Name:   e.Name,
		Role:   role,
		Active: !e.Inactive,
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if len(e.Programs) == 0 {
		s.Primary, s.Secondary = true, true
	}
	for _, p := range e.Programs {
		prog, ok := model.ParseProgram(p)
		if !ok {
			return model.Staff{}, fmt.Errorf("staff %s: unknown program %q", e.ID, p)
		}
		switch prog {
		case model.ProgramPrimary:
			s.Primary = true
		case model.ProgramSecondary:
			s.Secondary = true
		}
	}
	for _, a := range e.Absent {
		switch a {
		case "AM":
			s.AbsentAM = true
		case "PM":
			s.AbsentPM = true
		case "day":
			s.AbsentFullDay = true
		default:
			return model.Staff{}, fmt.Errorf("staff %s: unknown absence %q", e.ID, a)
		}
	}
	for _, o := range e.OutOfSession {
		switch o {
		case "AM":
			s.OutOfSessionAM = true
		case "PM":
			s.OutOfSessionPM = true
		default:
			return model.Staff{}, fmt.Errorf("staff %s: unknown out-of-session window %q", e.ID, o)
		}
	}
	return s, nil
}

func (e StudentEntry) build() (model.Student, error) {
	if e.ID == "" {
		return model.Student{}, fmt.Errorf("student entry missing id")
	}
	prog, ok := model.ParseProgram(e.Program)
	if !ok {
		return model.Student{}, fmt.Errorf("student %s: unknown program %q", e.ID, e.Program)
	}
	base := e.Ratio
	if base == "" {
		base = "1:1"
	}
	ratioAM, ratioPM := base, base
	if e.RatioAM != "" {
		ratioAM = e.RatioAM
	}
	if e.RatioPM != "" {
		ratioPM = e.RatioPM
	}
	ram, ok := model.ParseRatio(ratioAM)
	if !ok {
		return model.Student{}, fmt.Errorf("student %s: unknown ratio %q", e.ID, ratioAM)
	}
	rpm, ok := model.ParseRatio(ratioPM)
	if !ok {
		return model.Student{}, fmt.Errorf("student %s: unknown ratio %q", e.ID, ratioPM)
	}
	st := model.Student{
		ID:         e.ID,
		Name:       e.Name,
		Program:    prog,
		RatioAM:    ram,
		RatioPM:    rpm,
		Team:       append([]string(nil), e.Team...),
		PairedWith: e.PairedWith,
		Active:     !e.Inactive,
	}
	if st.Name == "" {
		st.Name = st.ID
	}
	for _, a := range e.Absent {
		switch a {
		case "AM":
			st.AbsentAM = true
		case "PM":
			st.AbsentPM = true
		case "day":
			st.AbsentFullDay = true
		default:
			return model.Student{}, fmt.Errorf("student %s: unknown absence %q", e.ID, a)
		}
	}
	return st, nil
}
