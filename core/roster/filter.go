package roster

import "github.com/mpelletier/rosterd/core/model"

// Pool is the eligible staff for one (student, session, program) query,
// partitioned by service tier. Preferred staff cover the student alone
// whenever their supply suffices; fallback staff are blended in only when
// it does not.
type Pool struct {
	Preferred []model.Staff
	Fallback  []model.Staff
}

// Size returns the total candidate count across both tiers.
func (p Pool) Size() int { return len(p.Preferred) + len(p.Fallback) }

// Blend produces the candidate list for a required staff count. When the
// preferred tier alone covers the count, fallback staff are withheld
// entirely. Blended reports whether fallback staff made it into the list,
// which the caller surfaces as a degraded outcome if one of them is used.
func (p Pool) Blend(required int) (candidates []model.Staff, blended bool) {
	if len(p.Preferred) >= required || len(p.Fallback) == 0 {
		return p.Preferred, false
	}
	candidates = make([]model.Staff, 0, p.Size())
	candidates = append(candidates, p.Preferred...)
	candidates = append(candidates, p.Fallback...)
	return candidates, true
}

// Filter narrows a (student, session, program) query to the staff who
// could legally serve it. Team membership is a hard filter here, not a
// ranking preference. Slot occupancy is deliberately not checked: a booked
// staff member stays in the pool so group joins and swaps can consider
// them, and validation rejects the rest.
type Filter struct {
	rules *Rules
}

// NewFilter builds a filter over the day's rosters.
func NewFilter(rules *Rules) *Filter { return &Filter{rules: rules} }

// Eligible returns the partitioned pool for one student in one slot.
func (f *Filter) Eligible(student model.Student, ses model.Session, prog model.Program) Pool {
	var pool Pool
	for _, id := range student.Team {
		s, ok := f.rules.Staff(id)
		if !ok {
			// Team entries may reference staff missing from today's
			// roster; they simply cannot serve.
			continue
		}
		if !s.Active || !s.Role.DirectService() {
			continue
		}
		if !s.AvailableFor(ses) || !s.CapableOf(prog) {
			continue
		}
		if s.Role.Preferred() {
			pool.Preferred = append(pool.Preferred, s)
		} else {
			pool.Fallback = append(pool.Fallback, s)
		}
	}
	return pool
}

// EligibleBoth returns the pool able to serve two paired students at once:
// the first student's eligible pool restricted to the second student's
// team.
func (f *Filter) EligibleBoth(a, b model.Student, ses model.Session, prog model.Program) Pool {
	pool := f.Eligible(a, ses, prog)
	var both Pool
	for _, s := range pool.Preferred {
		if b.OnTeam(s.ID) {
			both.Preferred = append(both.Preferred, s)
		}
	}
	for _, s := range pool.Fallback {
		if b.OnTeam(s.ID) {
			both.Fallback = append(both.Fallback, s)
		}
	}
	return both
}
