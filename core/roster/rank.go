package roster

import (
	"math/rand"
	"sort"

	"github.com/mpelletier/rosterd/core/model"
)

// Ranker orders the two sides of the matching problem: students waiting
// for staff and staff candidates for one student. The random source is
// seeded once per run so a run is reproducible from its seed.
type Ranker struct {
	rng      *rand.Rand
	pmJitter float64
}

// NewRanker builds a ranker with the given seed and PM jitter bound. The
// bound must stay below 1.0, the gap between adjacent hierarchy tiers, so
// jitter reorders staff within a tier but never across tiers.
func NewRanker(seed int64, pmJitter float64) *Ranker {
	return &Ranker{
		rng:      rand.New(rand.NewSource(seed)),
		pmJitter: pmJitter,
	}
}

// OrderStudents sorts students by descending assignment priority for one
// session: multi-staff ratios first, then scarcer teams, then name so
// equal-priority students resolve deterministically.
func (r *Ranker) OrderStudents(students []model.Student, ses model.Session) []model.Student {
	ordered := make([]model.Student, len(students))
	copy(ordered, students)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.RequiredStaff(ses) != b.RequiredStaff(ses) {
			return a.RequiredStaff(ses) > b.RequiredStaff(ses)
		}
		if len(a.Team) != len(b.Team) {
			return len(a.Team) < len(b.Team)
		}
		return a.Name < b.Name
	})
	return ordered
}

// RankStaff orders candidates for one student by hierarchy score, lower
// first. In the PM session each score receives a bounded jitter so
// repeat pairings spread across days within a tier; the AM ordering stays
// strictly deterministic. Equal scores fall back to name order.
func (r *Ranker) RankStaff(candidates []model.Staff, ses model.Session) []model.Staff {
	type scored struct {
		staff model.Staff
		score float64
	}
	entries := make([]scored, len(candidates))
	for i, s := range candidates {
		score := s.Role.HierarchyScore()
		if ses == model.SessionPM && r.pmJitter > 0 {
			score += r.rng.Float64() * r.pmJitter
		}
		entries[i] = scored{staff: s, score: score}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score < entries[j].score
		}
		return entries[i].staff.Name < entries[j].staff.Name
	})
	ranked := make([]model.Staff, len(entries))
	for i, e := range entries {
		ranked[i] = e.staff
	}
	return ranked
}
