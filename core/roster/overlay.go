package roster

import "github.com/mpelletier/rosterd/core/model"

// Overlay is a speculative snapshot layered over a base view. Repair
// strategies stage removals and additions on an overlay and validate the
// whole move there; the live schedule is only touched once every step of
// the move has passed. Overlays nest, so a chain search can layer one per
// recursion level or mark and roll back a single shared one.
type Overlay struct {
	base     View
	removed  map[string]struct{}
	removals []string
	added    []model.Assignment
}

// NewOverlay creates an empty overlay on top of base.
func NewOverlay(base View) *Overlay {
	return &Overlay{
		base:    base,
		removed: make(map[string]struct{}),
	}
}

// Remove stages the removal of a base assignment. The assignment stays on
// the live schedule until the move is committed.
func (o *Overlay) Remove(id string) {
	if _, ok := o.removed[id]; ok {
		return
	}
	o.removed[id] = struct{}{}
	o.removals = append(o.removals, id)
}

// Add stages a new assignment on top of the base view.
func (o *Overlay) Add(a model.Assignment) {
	o.added = append(o.added, a)
}

// Removals returns the staged removal IDs in staging order.
func (o *Overlay) Removals() []string { return o.removals }

// Additions returns the staged assignments in staging order.
func (o *Overlay) Additions() []model.Assignment { return o.added }

// Mark captures the current staged state so a failed branch of the search
// can be unwound.
type Mark struct {
	removals int
	added    int
}

// Mark returns a rollback point for the overlay's current staged state.
func (o *Overlay) Mark() Mark {
	return Mark{removals: len(o.removals), added: len(o.added)}
}

// Rollback discards every staged change made after the mark was taken.
func (o *Overlay) Rollback(m Mark) {
	for _, id := range o.removals[m.removals:] {
		delete(o.removed, id)
	}
	o.removals = o.removals[:m.removals]
	o.added = o.added[:m.added]
}

func (o *Overlay) ForSlot(ses model.Session, prog model.Program) []model.Assignment {
	var res []model.Assignment
	for _, a := range o.base.ForSlot(ses, prog) {
		if _, gone := o.removed[a.ID]; !gone {
			res = append(res, a)
		}
	}
	for _, a := range o.added {
		if a.Session == ses && a.Program == prog {
			res = append(res, a)
		}
	}
	return res
}

func (o *Overlay) ForStaff(staffID string) []model.Assignment {
	var res []model.Assignment
	for _, a := range o.base.ForStaff(staffID) {
		if _, gone := o.removed[a.ID]; !gone {
			res = append(res, a)
		}
	}
	for _, a := range o.added {
		if a.StaffID == staffID {
			res = append(res, a)
		}
	}
	return res
}

func (o *Overlay) ForStudent(studentID string) []model.Assignment {
	var res []model.Assignment
	for _, a := range o.base.ForStudent(studentID) {
		if _, gone := o.removed[a.ID]; !gone {
			res = append(res, a)
		}
	}
	for _, a := range o.added {
		if a.StudentID == studentID {
			res = append(res, a)
		}
	}
	return res
}

// WorkedTogether is recomputed from the effective assignment set rather
// than delegated, so staged removals release the same-day pairing rule and
// staged additions engage it.
func (o *Overlay) WorkedTogether(staffID, studentID string) bool {
	for _, a := range o.ForStaff(staffID) {
		if a.StudentID == studentID {
			return true
		}
	}
	return false
}

func (o *Overlay) StaffFree(staffID string, ses model.Session, prog model.Program) bool {
	for _, a := range o.ForStaff(staffID) {
		if a.Session == ses && a.Program == prog {
			return false
		}
	}
	return true
}
