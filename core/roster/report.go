package roster

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/mpelletier/rosterd/core/model"
)

// GapSummary describes one unresolved (student, session) in the report.
type GapSummary struct {
	StudentID   string
	StudentName string
	Session     model.Session
	Program     model.Program
	Missing     int
}

// Report aggregates the outcome of one run: coverage, strategy mix, and
// the load distribution across serviceable staff.
type Report struct {
	TotalSlots  int
	FilledSlots int
	FillRate    float64
	// Degraded counts this run's assignments served by fallback-tier
	// staff.
	Degraded   int
	ByStrategy map[string]int
	Gaps       []GapSummary
	// Load statistics cover active direct-service staff, including those
	// holding zero assignments.
	StaffLoadMean   float64
	StaffLoadStdDev float64
	MaxChainDepth   int
}

// String renders a compact one-line summary for logs.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "filled %d/%d (%.0f%%)", r.FilledSlots, r.TotalSlots, r.FillRate*100)
	if r.Degraded > 0 {
		fmt.Fprintf(&b, ", %d degraded", r.Degraded)
	}
	if len(r.Gaps) > 0 {
		fmt.Fprintf(&b, ", %d gaps", len(r.Gaps))
	}
	return b.String()
}

// buildReport computes aggregate statistics from the finished board.
func (rs *runState) buildReport(res Result) Report {
	rep := Report{ByStrategy: make(map[string]int)}

	for _, st := range rs.students {
		if !st.Active {
			continue
		}
		for _, ses := range model.Sessions() {
			if !st.AvailableFor(ses) {
				continue
			}
			need := st.RequiredStaff(ses)
			rep.TotalSlots += need
			rep.FilledSlots += need - rs.missing(st, ses)
		}
	}
	if rep.TotalSlots > 0 {
		rep.FillRate = float64(rep.FilledSlots) / float64(rep.TotalSlots)
	} else {
		rep.FillRate = 1
	}

	for _, a := range res.NewAssignments {
		rep.ByStrategy[a.Origin.Strategy.String()]++
		if rs.degraded[a.ID] {
			rep.Degraded++
		}
		if a.Origin.ChainDepth > rep.MaxChainDepth {
			rep.MaxChainDepth = a.Origin.ChainDepth
		}
	}

	var loads []float64
	for _, s := range rs.staff {
		if !s.Active || !s.Role.DirectService() {
			continue
		}
		loads = append(loads, float64(len(rs.board.ForStaff(s.ID))))
	}
	if len(loads) > 0 {
		rep.StaffLoadMean = stat.Mean(loads, nil)
	}
	if len(loads) > 1 {
		rep.StaffLoadStdDev = stat.StdDev(loads, nil)
	}

	rep.Gaps = make([]GapSummary, 0, len(rs.gaps))
	for _, g := range rs.gaps {
		rep.Gaps = append(rep.Gaps, GapSummary{
			StudentID:   g.Student.ID,
			StudentName: g.Student.Name,
			Session:     g.Session,
			Program:     g.Program,
			Missing:     g.Missing,
		})
	}
	return rep
}
