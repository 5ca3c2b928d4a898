package roster

import (
	"fmt"
	"strconv"

	"github.com/mpelletier/rosterd/core/events"
	"github.com/mpelletier/rosterd/core/model"
)

// Gap is one (student, session) still short of its required staff count.
type Gap struct {
	Student model.Student
	Session model.Session
	Program model.Program
	Missing int
}

// gapsFor lists the slot's current gaps in assignment priority order.
func (rs *runState) gapsFor(prog model.Program, ses model.Session) []Gap {
	var short []model.Student
	for _, st := range rs.students {
		if !st.Active || st.Program != prog || !st.AvailableFor(ses) {
			continue
		}
		if rs.missing(st, ses) > 0 {
			short = append(short, st)
		}
	}
	ordered := rs.ranker.OrderStudents(short, ses)
	gaps := make([]Gap, 0, len(ordered))
	for _, st := range ordered {
		gaps = append(gaps, Gap{Student: st, Session: ses, Program: prog, Missing: rs.missing(st, ses)})
	}
	return gaps
}

// reallocate repairs residual gaps slot by slot across bounded passes,
// then retries whatever is left in a bounded cyclic reshuffle. Resolving
// one gap can newly enable another, hence the extra passes; a pass that
// resolves nothing ends its loop early.
func (rs *runState) reallocate() {
	for _, prog := range model.Programs() {
		for _, ses := range model.Sessions() {
			for pass := 0; pass < rs.cfg.MaxPasses; pass++ {
				gaps := rs.gapsFor(prog, ses)
				if len(gaps) == 0 {
					break
				}
				resolved := 0
				for _, g := range gaps {
					if rs.fillGap(g) {
						resolved++
					}
				}
				if resolved == 0 {
					break
				}
			}
		}
	}
	rs.reshuffle()
}

// reshuffle cycles the global residual gap queue: an unresolvable gap
// moves to the back and gets another chance after the rest have run. The
// loop stops at the iteration cap or after a full cycle with no progress.
func (rs *runState) reshuffle() {
	var queue []Gap
	for _, prog := range model.Programs() {
		for _, ses := range model.Sessions() {
			queue = append(queue, rs.gapsFor(prog, ses)...)
		}
	}
	stalled := 0
	for iter := 0; iter < rs.cfg.ReshuffleLimit && len(queue) > 0 && stalled < len(queue); iter++ {
		g := queue[0]
		queue = queue[1:]
		if rs.missing(g.Student, g.Session) == 0 {
			// Resolved as a side effect of an earlier repair.
			stalled = 0
			continue
		}
		if rs.fillGap(g) {
			stalled = 0
			if rs.missing(g.Student, g.Session) > 0 {
				queue = append(queue, g)
			}
		} else {
			stalled++
			queue = append(queue, g)
		}
	}
}

// fillGap works one gap with the repair strategies until it closes or
// nothing applies. Paired students are repaired jointly and only by direct
// placement; displacement strategies cannot keep two staff sets identical.
func (rs *runState) fillGap(g Gap) bool {
	if g.Student.PairedWith != "" {
		if partner, ok := rs.rules.Student(g.Student.PairedWith); ok &&
			partner.Active && partner.AvailableFor(g.Session) && rs.missing(partner, g.Session) > 0 {
			return rs.fillPairGap(g, partner)
		}
	}
	filled := false
	for rs.missing(g.Student, g.Session) > 0 {
		if !rs.fillOne(g) {
			break
		}
		filled = true
	}
	return filled
}

// fillOne fills a single slot of the gap, trying strategies in increasing
// cost and stopping at the first success.
func (rs *runState) fillOne(g Gap) bool {
	type attempt struct {
		strategy model.Strategy
		fn       func(Gap) bool
	}
	attempts := []attempt{
		{model.StrategyAutoDirect, rs.tryDirect},
		{model.StrategyAutoSwap, rs.trySwap},
		{model.StrategyAutoChain, rs.tryChain},
		{model.StrategyAutoCross, rs.tryCross},
	}
	for _, at := range attempts {
		if at.fn(g) {
			rs.recordStrategy(g, at.strategy.String(), true)
			return true
		}
	}
	rs.recordStrategy(g, "none", false)
	return false
}

func (rs *runState) recordStrategy(g Gap, strategy string, resolved bool) {
	strategyResolutions.WithLabelValues(strategy, strconv.FormatBool(resolved)).Inc()
	rs.publish(events.StrategyEvent{
		RunID:     rs.runID,
		Strategy:  strategy,
		StudentID: g.Student.ID,
		Session:   g.Session,
		Program:   g.Program,
		Resolved:  resolved,
	})
}

// candidates is the full ranked eligible pool for a slot. At repair time
// the fallback tier is always in play; a degraded placement beats a gap.
func (rs *runState) candidates(st model.Student, ses model.Session, prog model.Program) []model.Staff {
	pool := rs.filter.Eligible(st, ses, prog)
	all := make([]model.Staff, 0, pool.Size())
	all = append(all, pool.Preferred...)
	all = append(all, pool.Fallback...)
	return rs.ranker.RankStaff(all, ses)
}

// slotAssignments returns a staff member's assignments in one slot as seen
// through the given view.
func slotAssignments(v View, staffID string, ses model.Session, prog model.Program) []model.Assignment {
	var res []model.Assignment
	for _, a := range v.ForStaff(staffID) {
		if a.Session == ses && a.Program == prog {
			res = append(res, a)
		}
	}
	return res
}

// soleSlotAssignment returns the staff member's single unlocked assignment
// in the slot. Group hosts and holders of locked work are not displaced.
func (rs *runState) soleSlotAssignment(staffID string, ses model.Session, prog model.Program) (model.Assignment, bool) {
	hits := slotAssignments(rs.board, staffID, ses, prog)
	if len(hits) != 1 {
		return model.Assignment{}, false
	}
	if rs.board.Locked(hits[0].ID) {
		return model.Assignment{}, false
	}
	return hits[0], true
}

// tryDirect places a free eligible staff member straight onto the gap.
// Ordering effects and earlier repairs can leave one available; joining an
// open 1:2 group falls out of validation here as well.
func (rs *runState) tryDirect(g Gap) bool {
	for _, s := range rs.candidates(g.Student, g.Session, g.Program) {
		if rs.placeOne(s, g.Student, g.Session, g.Program, model.StrategyAutoDirect, StageRealloc) {
			return true
		}
	}
	return false
}

// trySwap releases one busy eligible staff member X for the gap by handing
// X's current student to a free replacement Y. Both halves are validated
// on an overlay that already excludes X's existing assignment; the board
// changes only when the whole move holds.
func (rs *runState) trySwap(g Gap) bool {
	for _, x := range rs.candidates(g.Student, g.Session, g.Program) {
		xa, ok := rs.soleSlotAssignment(x.ID, g.Session, g.Program)
		if !ok || xa.StudentID == g.Student.ID {
			continue
		}
		s2, ok := rs.rules.Student(xa.StudentID)
		if !ok {
			// The displaced assignment belongs to a student outside
			// today's roster; leave it alone.
			continue
		}
		ov := NewOverlay(rs.board)
		ov.Remove(xa.ID)
		cx := Candidate{StaffID: x.ID, StudentID: g.Student.ID, Session: g.Session, Program: g.Program}
		if !rs.legal(ov, cx, StageRealloc, model.StrategyAutoSwap) {
			continue
		}
		for _, y := range rs.candidates(s2, g.Session, g.Program) {
			if y.ID == x.ID || !rs.board.StaffFree(y.ID, g.Session, g.Program) {
				continue
			}
			m := ov.Mark()
			cy := Candidate{StaffID: y.ID, StudentID: s2.ID, Session: g.Session, Program: g.Program}
			if !rs.legal(ov, cy, StageRealloc, model.StrategyAutoSwap) {
				continue
			}
			ya := model.NewAssignment(y.ID, s2.ID, g.Session, g.Program, rs.date, model.Origin{
				Strategy:      model.StrategyAutoSwap,
				ReplacedStaff: x.ID,
			})
			ov.Add(ya)
			if !rs.legal(ov, cx, StageRealloc, model.StrategyAutoSwap) {
				ov.Rollback(m)
				continue
			}
			xNew := model.NewAssignment(x.ID, g.Student.ID, g.Session, g.Program, rs.date, model.Origin{
				Strategy: model.StrategyAutoSwap,
			})
			if err := rs.commit([]model.Assignment{xa}, []model.Assignment{ya, xNew}, StageRealloc); err != nil {
				rs.log.Errorf("swap commit failed for student %s: %v", g.Student.ID, err)
				ov.Rollback(m)
				continue
			}
			return true
		}
	}
	return false
}

// tryChain frees a busy eligible staff member through a bounded chain of
// replacements. The whole chain is staged and validated on one overlay;
// the board sees it only as a single committed batch.
func (rs *runState) tryChain(g Gap) bool {
	for _, x := range rs.candidates(g.Student, g.Session, g.Program) {
		xa, ok := rs.soleSlotAssignment(x.ID, g.Session, g.Program)
		if !ok || xa.StudentID == g.Student.ID {
			continue
		}
		ov := NewOverlay(rs.board)
		visited := map[string]bool{x.ID: true}
		if !rs.freeUp(ov, xa, g.Session, g.Program, 1, visited) {
			continue
		}
		cx := Candidate{StaffID: x.ID, StudentID: g.Student.ID, Session: g.Session, Program: g.Program}
		if !rs.legal(ov, cx, StageRealloc, model.StrategyAutoChain) {
			continue
		}
		depth := len(ov.Removals())
		xNew := model.NewAssignment(x.ID, g.Student.ID, g.Session, g.Program, rs.date, model.Origin{
			Strategy:   model.StrategyAutoChain,
			ChainDepth: depth,
		})
		removals := make([]model.Assignment, 0, depth)
		for _, id := range ov.Removals() {
			a, ok := rs.board.Get(id)
			if !ok {
				rs.log.Errorf("chain removal %s vanished from the board", id)
				continue
			}
			removals = append(removals, a)
		}
		adds := make([]model.Assignment, 0, len(ov.Additions())+1)
		adds = append(adds, ov.Additions()...)
		adds = append(adds, xNew)
		if err := rs.commit(removals, adds, StageRealloc); err != nil {
			rs.log.Errorf("chain commit failed for student %s: %v", g.Student.ID, err)
			continue
		}
		return true
	}
	return false
}

// freeUp releases the holder of assignment xa by finding a replacement for
// its student, recursing when the replacement is itself busy. Staging
// stays on the overlay; the visited set breaks cycles and the depth bound
// caps the search.
func (rs *runState) freeUp(ov *Overlay, xa model.Assignment, ses model.Session, prog model.Program, depth int, visited map[string]bool) bool {
	if depth > rs.cfg.ChainDepth {
		return false
	}
	s2, ok := rs.rules.Student(xa.StudentID)
	if !ok {
		return false
	}
	ov.Remove(xa.ID)
	for _, y := range rs.candidates(s2, ses, prog) {
		if visited[y.ID] {
			continue
		}
		held := slotAssignments(ov, y.ID, ses, prog)
		if len(held) > 1 {
			// Group hosts stay put.
			continue
		}
		m := ov.Mark()
		if len(held) == 1 {
			if rs.board.Locked(held[0].ID) {
				continue
			}
			visited[y.ID] = true
			if !rs.freeUp(ov, held[0], ses, prog, depth+1, visited) {
				ov.Rollback(m)
				continue
			}
		}
		cy := Candidate{StaffID: y.ID, StudentID: s2.ID, Session: ses, Program: prog}
		if !rs.legal(ov, cy, StageRealloc, model.StrategyAutoChain) {
			ov.Rollback(m)
			continue
		}
		ov.Add(model.NewAssignment(y.ID, s2.ID, ses, prog, rs.date, model.Origin{
			Strategy:      model.StrategyAutoChain,
			ReplacedStaff: xa.StaffID,
		}))
		return true
	}
	return false
}

// tryCross relocates a staff member serving the target student in the
// opposite session. They move into the gapped session and a validated
// replacement covers the session they leave, so no coverage is traded
// away.
func (rs *runState) tryCross(g Gap) bool {
	other := g.Session.Other()
	for _, za := range rs.board.ForStudent(g.Student.ID) {
		if za.Session != other || rs.board.Locked(za.ID) {
			continue
		}
		z, ok := rs.rules.Staff(za.StaffID)
		if !ok {
			continue
		}
		if !rs.board.StaffFree(z.ID, g.Session, g.Program) {
			continue
		}
		ov := NewOverlay(rs.board)
		ov.Remove(za.ID)
		cz := Candidate{StaffID: z.ID, StudentID: g.Student.ID, Session: g.Session, Program: g.Program}
		if !rs.legal(ov, cz, StageRealloc, model.StrategyAutoCross) {
			continue
		}
		zNew := model.NewAssignment(z.ID, g.Student.ID, g.Session, g.Program, rs.date, model.Origin{
			Strategy: model.StrategyAutoCross,
		})
		ov.Add(zNew)
		for _, w := range rs.candidates(g.Student, other, za.Program) {
			if w.ID == z.ID {
				continue
			}
			cw := Candidate{StaffID: w.ID, StudentID: g.Student.ID, Session: other, Program: za.Program}
			if !rs.legal(ov, cw, StageRealloc, model.StrategyAutoCross) {
				continue
			}
			wNew := model.NewAssignment(w.ID, g.Student.ID, other, za.Program, rs.date, model.Origin{
				Strategy:      model.StrategyAutoCross,
				ReplacedStaff: z.ID,
			})
			if err := rs.commit([]model.Assignment{za}, []model.Assignment{zNew, wNew}, StageRealloc); err != nil {
				rs.log.Errorf("cross-session commit failed for student %s: %v", g.Student.ID, err)
				continue
			}
			return true
		}
	}
	return false
}

// fillPairGap repairs two paired students together: identical staff, all
// or nothing.
func (rs *runState) fillPairGap(g Gap, partner model.Student) bool {
	a, b := g.Student, partner
	required := rs.missing(a, g.Session)
	if rb := rs.missing(b, g.Session); rb > required {
		required = rb
	}
	pool := rs.filter.EligibleBoth(a, b, g.Session, g.Program)
	all := make([]model.Staff, 0, pool.Size())
	all = append(all, pool.Preferred...)
	all = append(all, pool.Fallback...)
	ranked := rs.ranker.RankStaff(all, g.Session)

	staged, picked := rs.stagePair(a, b, g.Session, g.Program, ranked, required, model.StrategyAutoDirect, StageRealloc)
	if picked < required {
		rs.recordStrategy(g, "none", false)
		return false
	}
	if err := rs.commit(nil, staged, StageRealloc); err != nil {
		rs.log.Errorf("pair repair commit failed for %s/%s: %v", a.ID, b.ID, err)
		return false
	}
	rs.recordStrategy(g, model.StrategyAutoDirect.String(), true)
	return true
}

// finalize strips the partial coverage this run created for still-short
// students, then reports every residual gap. Pre-existing assignments are
// never stripped here; displacing operator work is a job for the validated
// strategies only.
func (rs *runState) finalize() {
	for _, prog := range model.Programs() {
		for _, ses := range model.Sessions() {
			for _, st := range rs.students {
				if !st.Active || st.Program != prog || !st.AvailableFor(ses) {
					continue
				}
				if rs.missing(st, ses) == 0 {
					continue
				}
				for _, a := range rs.board.ForStudent(st.ID) {
					if a.Session != ses {
						continue
					}
					if _, mine := rs.created[a.ID]; !mine {
						continue
					}
					if err := rs.commit([]model.Assignment{a}, nil, StageFinalize); err != nil {
						rs.log.Errorf("stripping partial coverage %s failed: %v", a.ID, err)
					}
				}
				miss := rs.missing(st, ses)
				rs.gaps = append(rs.gaps, Gap{Student: st, Session: ses, Program: prog, Missing: miss})
				rs.errors = append(rs.errors, fmt.Sprintf("%s could not be assigned in %s %s", st.Name, prog, ses))
				rs.traceFail(st, ses, prog, StageFinalize, fmt.Sprintf("unresolved, %d staff missing", miss))
				rs.publish(events.GapEvent{
					RunID:       rs.runID,
					StudentID:   st.ID,
					StudentName: st.Name,
					Session:     ses,
					Program:     prog,
					Missing:     miss,
				})
			}
		}
	}
}
