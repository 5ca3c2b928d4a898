package roster

import (
	"testing"
	"time"

	"github.com/mpelletier/rosterd/core/model"
	"github.com/mpelletier/rosterd/infra/logger"
)

func testDate() time.Time {
	return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
}

// newStaff builds an active staff member capable of both programs.
func newStaff(id string, role model.Role) model.Staff {
	return model.Staff{ID: id, Name: id, Role: role, Primary: true, Secondary: true, Active: true}
}

// newStudent builds an active Primary student with the same ratio in both
// sessions.
func newStudent(id string, ratio model.Ratio, team ...string) model.Student {
	return model.Student{
		ID:      id,
		Name:    id,
		Program: model.ProgramPrimary,
		RatioAM: ratio,
		RatioPM: ratio,
		Team:    team,
		Active:  true,
	}
}

// amOnly restricts a student to the AM session.
func amOnly(st model.Student) model.Student {
	st.AbsentPM = true
	return st
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	eng, err := NewEngine(cfg, logger.NopLogger{}, nil, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return eng
}

// manual places a pre-existing assignment on the schedule.
func manual(t *testing.T, s *model.Schedule, staffID, studentID string, ses model.Session, prog model.Program, locked bool) model.Assignment {
	t.Helper()
	a := model.NewAssignment(staffID, studentID, ses, prog, s.Date(), model.Origin{Strategy: model.StrategyManual})
	a.Locked = locked
	if err := s.Add(a); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return a
}

// staffFor collects the staff IDs assigned to a student in one session.
func staffFor(s *model.Schedule, studentID string, ses model.Session) []string {
	var ids []string
	for _, a := range s.ForStudent(studentID) {
		if a.Session == ses {
			ids = append(ids, a.StaffID)
		}
	}
	return ids
}
