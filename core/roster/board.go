package roster

import (
	"fmt"
	"time"

	"github.com/mpelletier/rosterd/core/logger"
	"github.com/mpelletier/rosterd/core/model"
)

// View is the read-only slice of the schedule that validation and the
// speculative search read through. Both the live Board and Overlay
// snapshots satisfy it.
type View interface {
	ForSlot(ses model.Session, prog model.Program) []model.Assignment
	ForStaff(staffID string) []model.Assignment
	ForStudent(studentID string) []model.Assignment
	WorkedTogether(staffID, studentID string) bool
	StaffFree(staffID string, ses model.Session, prog model.Program) bool
}

// Board is the schedule collaborator the engine runs against. The engine
// mutates it only through Add and Remove so multi-step changes stay visible
// as single transitions. model.Schedule satisfies Board.
type Board interface {
	View
	Date() time.Time
	Get(id string) (model.Assignment, bool)
	Add(a model.Assignment) error
	Remove(id string) error
	Locked(id string) bool
}

// guardedBoard shields the engine from a malformed collaborator: a panicking
// query is logged and degraded to an empty result instead of aborting the
// run. Mutations that panic degrade to errors.
type guardedBoard struct {
	board Board
	log   logger.Logger
}

// guardBoard wraps board for the duration of a run. A nil board degrades to
// an empty in-memory schedule for the given date so the run still produces
// its full diagnostic list instead of crashing.
func guardBoard(board Board, date time.Time, log logger.Logger) Board {
	if board == nil {
		log.Errorf("schedule board is nil, running against an empty schedule")
		return &guardedBoard{board: model.NewSchedule(date), log: log}
	}
	return &guardedBoard{board: board, log: log}
}

func (g *guardedBoard) recoverQuery(name string) {
	if r := recover(); r != nil {
		g.log.Errorf("schedule query %s panicked, treating result as empty: %v", name, r)
	}
}

func (g *guardedBoard) Date() time.Time {
	defer g.recoverQuery("Date")
	return g.board.Date()
}

func (g *guardedBoard) Get(id string) (a model.Assignment, ok bool) {
	defer g.recoverQuery("Get")
	return g.board.Get(id)
}

func (g *guardedBoard) ForSlot(ses model.Session, prog model.Program) (res []model.Assignment) {
	defer g.recoverQuery("ForSlot")
	return g.board.ForSlot(ses, prog)
}

func (g *guardedBoard) ForStaff(staffID string) (res []model.Assignment) {
	defer g.recoverQuery("ForStaff")
	return g.board.ForStaff(staffID)
}

func (g *guardedBoard) ForStudent(studentID string) (res []model.Assignment) {
	defer g.recoverQuery("ForStudent")
	return g.board.ForStudent(studentID)
}

func (g *guardedBoard) WorkedTogether(staffID, studentID string) (worked bool) {
	defer g.recoverQuery("WorkedTogether")
	return g.board.WorkedTogether(staffID, studentID)
}

func (g *guardedBoard) StaffFree(staffID string, ses model.Session, prog model.Program) (free bool) {
	// On panic the zero value reports the staff member as busy, the
	// conservative reading.
	defer g.recoverQuery("StaffFree")
	return g.board.StaffFree(staffID, ses, prog)
}

func (g *guardedBoard) Locked(id string) (locked bool) {
	defer g.recoverQuery("Locked")
	return g.board.Locked(id)
}

func (g *guardedBoard) Add(a model.Assignment) (err error) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Errorf("schedule Add panicked: %v", r)
			err = fmt.Errorf("schedule add: %v", r)
		}
	}()
	return g.board.Add(a)
}

func (g *guardedBoard) Remove(id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Errorf("schedule Remove panicked: %v", r)
			err = fmt.Errorf("schedule remove: %v", r)
		}
	}()
	return g.board.Remove(id)
}
