package roster

import (
	"fmt"

	"github.com/mpelletier/rosterd/core/model"
)

// directPass runs one greedy sweep over a (program, session) slot. Every
// commit lands on the live board immediately so later students in the same
// sweep see updated availability.
func (rs *runState) directPass(prog model.Program, ses model.Session) {
	var pending []model.Student
	for _, st := range rs.students {
		if !st.Active || st.Program != prog || !st.AvailableFor(ses) {
			continue
		}
		if rs.missing(st, ses) > 0 {
			pending = append(pending, st)
		}
	}
	ordered := rs.ranker.OrderStudents(pending, ses)
	pooled := make(map[string]bool, len(ordered))
	for _, st := range ordered {
		pooled[st.ID] = true
	}

	done := make(map[string]bool, len(ordered))
	for _, st := range ordered {
		if done[st.ID] {
			continue
		}
		done[st.ID] = true
		if rs.missing(st, ses) == 0 {
			// Covered while an earlier student was handled.
			continue
		}
		if st.PairedWith != "" && pooled[st.PairedWith] && !done[st.PairedWith] {
			if partner, ok := rs.rules.Student(st.PairedWith); ok {
				done[partner.ID] = true
				rs.assignPair(st, partner, ses, prog)
				continue
			}
		}
		if st.RatioFor(ses) == model.RatioOneToTwo {
			rs.assignGroup(st, ses, prog)
			continue
		}
		rs.assignDefault(st, ses, prog)
	}
}

// stagePair stages identical staff for two paired students on a fresh
// overlay. It returns the staged assignments and how many staff were
// secured; callers commit only a full set.
func (rs *runState) stagePair(a, b model.Student, ses model.Session, prog model.Program, ranked []model.Staff, required int, strat model.Strategy, stage Stage) ([]model.Assignment, int) {
	ov := NewOverlay(rs.board)
	staged := make([]model.Assignment, 0, 2*required)
	picked := 0
	for _, s := range ranked {
		if picked == required {
			break
		}
		m := ov.Mark()
		ca := Candidate{StaffID: s.ID, StudentID: a.ID, Session: ses, Program: prog}
		if !rs.legal(ov, ca, stage, strat) {
			continue
		}
		aa := model.NewAssignment(s.ID, a.ID, ses, prog, rs.date, model.Origin{Strategy: strat})
		ov.Add(aa)
		cb := Candidate{StaffID: s.ID, StudentID: b.ID, Session: ses, Program: prog}
		if !rs.legal(ov, cb, stage, strat) {
			ov.Rollback(m)
			continue
		}
		ab := model.NewAssignment(s.ID, b.ID, ses, prog, rs.date, model.Origin{Strategy: strat})
		ov.Add(ab)
		staged = append(staged, aa, ab)
		picked++
	}
	return staged, picked
}

// assignPair covers two paired students with an identical staff set in a
// single atomic step. Anything short of the full set commits nothing for
// either student.
func (rs *runState) assignPair(a, b model.Student, ses model.Session, prog model.Program) {
	required := a.RequiredStaff(ses)
	if rb := b.RequiredStaff(ses); rb > required {
		required = rb
	}
	pool := rs.filter.EligibleBoth(a, b, ses, prog)
	cands, _ := pool.Blend(required)
	ranked := rs.ranker.RankStaff(cands, ses)

	staged, picked := rs.stagePair(a, b, ses, prog, ranked, required, model.StrategyAutoPaired, StageDirect)
	if picked < required {
		rs.traceFail(a, ses, prog, StageDirect, fmt.Sprintf("pair with %s aborted: %d of %d staff secured", b.ID, picked, required))
		rs.traceFail(b, ses, prog, StageDirect, fmt.Sprintf("pair with %s aborted: %d of %d staff secured", a.ID, picked, required))
		rs.log.Debugf("pair %s/%s aborted for %s %s: %d of %d staff", a.ID, b.ID, prog, ses, picked, required)
		return
	}
	if err := rs.commit(nil, staged, StageDirect); err != nil {
		rs.log.Errorf("pair commit failed for %s/%s: %v", a.ID, b.ID, err)
	}
}

// assignGroup places a 1:2 student, preferring to join an open group over
// starting a new one. Group compatibility is validation's call; this only
// steers the candidate order.
func (rs *runState) assignGroup(st model.Student, ses model.Session, prog model.Program) {
	pool := rs.filter.Eligible(st, ses, prog)
	cands, _ := pool.Blend(1)
	ranked := rs.ranker.RankStaff(cands, ses)

	hostLoad := make(map[string]int)
	for _, a := range rs.board.ForSlot(ses, prog) {
		hostLoad[a.StaffID]++
	}

	// Join phase: staff serving exactly one student have room for one more.
	for _, s := range ranked {
		if hostLoad[s.ID] != 1 {
			continue
		}
		if rs.placeOne(s, st, ses, prog, model.StrategyAuto, StageDirect) {
			return
		}
	}
	// Open a new group with the best free candidate.
	for _, s := range ranked {
		if hostLoad[s.ID] != 0 {
			continue
		}
		if rs.placeOne(s, st, ses, prog, model.StrategyAuto, StageDirect) {
			return
		}
	}
	rs.traceFail(st, ses, prog, StageDirect, "no eligible staff for group placement")
}

// placeOne validates and commits a single assignment on the live board.
func (rs *runState) placeOne(s model.Staff, st model.Student, ses model.Session, prog model.Program, strat model.Strategy, stage Stage) bool {
	c := Candidate{StaffID: s.ID, StudentID: st.ID, Session: ses, Program: prog}
	if !rs.legal(rs.board, c, stage, strat) {
		return false
	}
	a := model.NewAssignment(s.ID, st.ID, ses, prog, rs.date, model.Origin{Strategy: strat})
	if err := rs.commit(nil, []model.Assignment{a}, stage); err != nil {
		rs.log.Errorf("commit failed for student %s: %v", st.ID, err)
		return false
	}
	return true
}

// assignDefault covers a 1:1 or 2:1 student from its ranked candidate
// list. Staging happens on an overlay so a 2:1 student either receives the
// full staff count or nothing.
func (rs *runState) assignDefault(st model.Student, ses model.Session, prog model.Program) {
	need := rs.missing(st, ses)
	pool := rs.filter.Eligible(st, ses, prog)
	cands, _ := pool.Blend(need)
	if len(cands) < need {
		rs.traceFail(st, ses, prog, StageDirect, fmt.Sprintf("%d candidates for %d required", len(cands), need))
		return
	}
	ranked := rs.ranker.RankStaff(cands, ses)

	ov := NewOverlay(rs.board)
	staged := make([]model.Assignment, 0, need)
	for _, s := range ranked {
		if len(staged) == need {
			break
		}
		c := Candidate{StaffID: s.ID, StudentID: st.ID, Session: ses, Program: prog}
		if !rs.legal(ov, c, StageDirect, model.StrategyAuto) {
			continue
		}
		a := model.NewAssignment(s.ID, st.ID, ses, prog, rs.date, model.Origin{Strategy: model.StrategyAuto})
		ov.Add(a)
		staged = append(staged, a)
	}
	if len(staged) < need {
		rs.traceFail(st, ses, prog, StageDirect, fmt.Sprintf("%d of %d staff validated", len(staged), need))
		return
	}
	if err := rs.commit(nil, staged, StageDirect); err != nil {
		rs.log.Errorf("direct commit failed for student %s: %v", st.ID, err)
	}
}
