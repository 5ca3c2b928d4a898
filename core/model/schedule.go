package model

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an assignment ID is not on the schedule.
	ErrNotFound = errors.New("assignment not found")
	// ErrLocked is returned when removing or relocking a locked assignment.
	ErrLocked = errors.New("assignment is locked")
	// ErrDuplicateID is returned when adding an assignment whose ID is
	// already on the schedule.
	ErrDuplicateID = errors.New("duplicate assignment id")
)

// Schedule is the date-scoped collection of assignments for one day. It is
// the only mutable shared state of an engine run; all mutation goes
// through Add and Remove so multi-step changes can be committed as a unit
// by the caller and locked assignments stay untouched.
type Schedule struct {
	date        time.Time
	assignments map[string]Assignment
	order       []string // insertion order, for stable listings
	locked      map[string]struct{}
}

// NewSchedule creates an empty schedule for the given date. The time part
// is truncated; a schedule always spans one civil day.
func NewSchedule(date time.Time) *Schedule {
	return &Schedule{
		date:        date.Truncate(24 * time.Hour),
		assignments: make(map[string]Assignment),
		locked:      make(map[string]struct{}),
	}
}

// Date returns the day this schedule covers.
func (s *Schedule) Date() time.Time { return s.date }

// Len returns the number of assignments currently held.
func (s *Schedule) Len() int { return len(s.assignments) }

// All returns every assignment in insertion order.
func (s *Schedule) All() []Assignment {
	res := make([]Assignment, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, s.assignments[id])
	}
	return res
}

// Get looks up a single assignment by ID.
func (s *Schedule) Get(id string) (Assignment, bool) {
	a, ok := s.assignments[id]
	return a, ok
}

// ForSlot returns the assignments of one (session, program) slot.
func (s *Schedule) ForSlot(ses Session, prog Program) []Assignment {
	var res []Assignment
	for _, id := range s.order {
		a := s.assignments[id]
		if a.Session == ses && a.Program == prog {
			res = append(res, a)
		}
	}
	return res
}

// ForStaff returns a staff member's assignments across both sessions.
func (s *Schedule) ForStaff(staffID string) []Assignment {
	var res []Assignment
	for _, id := range s.order {
		if a := s.assignments[id]; a.StaffID == staffID {
			res = append(res, a)
		}
	}
	return res
}

// ForStudent returns a student's assignments across both sessions.
func (s *Schedule) ForStudent(studentID string) []Assignment {
	var res []Assignment
	for _, id := range s.order {
		if a := s.assignments[id]; a.StudentID == studentID {
			res = append(res, a)
		}
	}
	return res
}

// WorkedTogether reports whether the staff member already holds an
// assignment with the student on this date, in any session.
func (s *Schedule) WorkedTogether(staffID, studentID string) bool {
	for _, a := range s.assignments {
		if a.StaffID == staffID && a.StudentID == studentID {
			return true
		}
	}
	return false
}

// StaffFree reports whether the staff member holds no assignment in the
// given (session, program) slot. Small-group sharing is a validation
// concern, not a freeness one: a staff member inside a 1:2 group is not
// free.
func (s *Schedule) StaffFree(staffID string, ses Session, prog Program) bool {
	for _, a := range s.assignments {
		if a.StaffID == staffID && a.Session == ses && a.Program == prog {
			return false
		}
	}
	return true
}

// Add places an assignment on the schedule. A zero Date is stamped with
// the schedule's own date so same-day queries stay consistent.
func (s *Schedule) Add(a Assignment) error {
	if _, ok := s.assignments[a.ID]; ok {
		return ErrDuplicateID
	}
	if a.Date.IsZero() {
		a.Date = s.date
	}
	s.assignments[a.ID] = a
	s.order = append(s.order, a.ID)
	if a.Locked {
		s.locked[a.ID] = struct{}{}
	}
	return nil
}

// Remove deletes an assignment. Locked assignments cannot be removed by
// the engine; Unlock first through the manual surface.
func (s *Schedule) Remove(id string) error {
	if _, ok := s.assignments[id]; !ok {
		return ErrNotFound
	}
	if _, ok := s.locked[id]; ok {
		return ErrLocked
	}
	delete(s.assignments, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Locked reports whether the assignment is pinned against engine edits.
func (s *Schedule) Locked(id string) bool {
	_, ok := s.locked[id]
	return ok
}

// Lock pins an assignment so the engine cannot remove or replace it.
// Only manual operations call this.
func (s *Schedule) Lock(id string) error {
	a, ok := s.assignments[id]
	if !ok {
		return ErrNotFound
	}
	a.Locked = true
	s.assignments[id] = a
	s.locked[id] = struct{}{}
	return nil
}

// Unlock releases a pinned assignment back to the engine.
func (s *Schedule) Unlock(id string) error {
	a, ok := s.assignments[id]
	if !ok {
		return ErrNotFound
	}
	a.Locked = false
	s.assignments[id] = a
	delete(s.locked, id)
	return nil
}

// Reset discards every assignment and lock, leaving an empty schedule for
// the same date.
func (s *Schedule) Reset() {
	s.assignments = make(map[string]Assignment)
	s.order = nil
	s.locked = make(map[string]struct{})
}
