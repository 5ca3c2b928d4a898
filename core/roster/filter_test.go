package roster

import (
	"testing"

	"github.com/mpelletier/rosterd/core/model"
)

func poolIDs(staff []model.Staff) []string {
	ids := make([]string, len(staff))
	for i, s := range staff {
		ids[i] = s.ID
	}
	return ids
}

func TestFilterEligiblePartitionsTiers(t *testing.T) {
	rules := NewRules(
		[]model.Staff{
			newStaff("rbt1", model.RoleRBT),
			newStaff("bs1", model.RoleBS),
			newStaff("ea1", model.RoleEA),
			newStaff("bcba1", model.RoleBCBA),
		},
		nil,
	)
	f := NewFilter(rules)
	st := newStudent("kid1", model.RatioOneToOne, "rbt1", "bs1", "ea1", "bcba1")

	pool := f.Eligible(st, model.SessionAM, model.ProgramPrimary)
	if got := poolIDs(pool.Preferred); len(got) != 2 || got[0] != "rbt1" || got[1] != "bs1" {
		t.Errorf("preferred tier = %v, want [rbt1 bs1]", got)
	}
	if got := poolIDs(pool.Fallback); len(got) != 2 || got[0] != "ea1" || got[1] != "bcba1" {
		t.Errorf("fallback tier = %v, want [ea1 bcba1]", got)
	}
	if pool.Size() != 4 {
		t.Errorf("pool size = %d, want 4", pool.Size())
	}
}

func TestFilterEligibleExclusions(t *testing.T) {
	inactive := newStaff("gone", model.RoleRBT)
	inactive.Active = false
	absent := newStaff("absent", model.RoleRBT)
	absent.AbsentFullDay = true
	outAM := newStaff("meeting", model.RoleRBT)
	outAM.OutOfSessionAM = true
	primaryOnly := newStaff("prim", model.RoleRBT)
	primaryOnly.Secondary = false

	rules := NewRules(
		[]model.Staff{
			inactive,
			absent,
			outAM,
			primaryOnly,
			newStaff("lead", model.RoleTeacher),
			newStaff("ok", model.RoleRBT),
		},
		nil,
	)
	f := NewFilter(rules)
	st := newStudent("kid1", model.RatioOneToOne, "gone", "absent", "meeting", "prim", "lead", "ok", "not-on-roster")
	st.Program = model.ProgramSecondary

	pool := f.Eligible(st, model.SessionAM, model.ProgramSecondary)
	if got := poolIDs(pool.Preferred); len(got) != 1 || got[0] != "ok" {
		t.Errorf("eligible = %v, want [ok]", got)
	}
	if len(pool.Fallback) != 0 {
		t.Errorf("fallback should be empty, got %v", poolIDs(pool.Fallback))
	}

	// The out-of-session staff returns for PM.
	pool = f.Eligible(st, model.SessionPM, model.ProgramSecondary)
	if got := poolIDs(pool.Preferred); len(got) != 2 {
		t.Errorf("PM eligible = %v, want meeting and ok", got)
	}
}

func TestPoolBlend(t *testing.T) {
	rbt := newStaff("rbt1", model.RoleRBT)
	ea := newStaff("ea1", model.RoleEA)

	pool := Pool{Preferred: []model.Staff{rbt}, Fallback: []model.Staff{ea}}
	cands, blended := pool.Blend(1)
	if blended {
		t.Errorf("preferred supply covers 1, fallback should be withheld")
	}
	if got := poolIDs(cands); len(got) != 1 || got[0] != "rbt1" {
		t.Errorf("candidates = %v, want [rbt1]", got)
	}

	cands, blended = pool.Blend(2)
	if !blended {
		t.Errorf("required 2 exceeds preferred supply, fallback should blend in")
	}
	if got := poolIDs(cands); len(got) != 2 {
		t.Errorf("candidates = %v, want both tiers", got)
	}

	empty := Pool{Preferred: []model.Staff{rbt}}
	cands, blended = empty.Blend(3)
	if blended || len(cands) != 1 {
		t.Errorf("no fallback to blend, got %v blended=%v", poolIDs(cands), blended)
	}
}

func TestFilterEligibleBoth(t *testing.T) {
	rules := NewRules(
		[]model.Staff{
			newStaff("shared", model.RoleRBT),
			newStaff("onlyA", model.RoleRBT),
			newStaff("onlyB", model.RoleRBT),
		},
		nil,
	)
	f := NewFilter(rules)
	a := newStudent("kidA", model.RatioOneToTwo, "shared", "onlyA")
	b := newStudent("kidB", model.RatioOneToTwo, "shared", "onlyB")

	pool := f.EligibleBoth(a, b, model.SessionAM, model.ProgramPrimary)
	if got := poolIDs(pool.Preferred); len(got) != 1 || got[0] != "shared" {
		t.Errorf("intersection = %v, want [shared]", got)
	}
}

func TestFilterKeepsBookedStaff(t *testing.T) {
	// Occupancy is validation's concern. A staff member already booked in
	// the slot must stay in the pool so group joins and swaps can see them.
	rules := NewRules(
		[]model.Staff{newStaff("rbt1", model.RoleRBT)},
		[]model.Student{
			newStudent("kid1", model.RatioOneToTwo, "rbt1"),
			newStudent("kid2", model.RatioOneToTwo, "rbt1"),
		},
	)
	f := NewFilter(rules)
	st, _ := rules.Student("kid2")

	pool := f.Eligible(st, model.SessionAM, model.ProgramPrimary)
	if got := poolIDs(pool.Preferred); len(got) != 1 || got[0] != "rbt1" {
		t.Errorf("eligible = %v, want [rbt1]", got)
	}
}
