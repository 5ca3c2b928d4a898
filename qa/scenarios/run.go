package scenarios

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/mpelletier/rosterd/core/metrics"
	"github.com/mpelletier/rosterd/core/roster"
	"github.com/mpelletier/rosterd/infra/logger"
	"github.com/mpelletier/rosterd/infra/metrics"
	"github.com/mpelletier/rosterd/internal/eventbus"
)

// RunScenario builds the scenario's day, runs the engine over it and checks
// the result against the scenario's expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	day, err := sc.Roster.Build()
	if err != nil {
		t.Fatalf("build roster: %v", err)
	}

	bus := eventbus.New()
	eng, err := roster.NewEngine(roster.Config{Seed: sc.Seed}, logger.NopLogger{}, sink, bus)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			t.Errorf("close engine: %v", err)
		}
	}()

	res := eng.Run(day.Schedule, day.Staff, day.Students)

	if got := len(res.NewAssignments); got != sc.Expected.Created {
		t.Errorf("scenario %s expected %d assignments, got %d", sc.Name, sc.Expected.Created, got)
	}
	if got := len(res.Removed); got != sc.Expected.Removed {
		t.Errorf("scenario %s expected %d removals, got %d", sc.Name, sc.Expected.Removed, got)
	}
	if got := res.Unresolved(); got != sc.Expected.Unresolved {
		t.Errorf("scenario %s expected %d unresolved, got %d (%v)", sc.Name, sc.Expected.Unresolved, got, res.Errors)
	}
	if got := res.Report.Degraded; got != sc.Expected.Degraded {
		t.Errorf("scenario %s expected %d degraded, got %d", sc.Name, sc.Expected.Degraded, got)
	}
	if got := res.Report.FillRate; math.Abs(got-sc.Expected.FillRate) > 1e-9 {
		t.Errorf("scenario %s expected fill rate %.4f, got %.4f", sc.Name, sc.Expected.FillRate, got)
	}
	for strategy, want := range sc.Expected.Strategies {
		if got := res.Report.ByStrategy[strategy]; got != want {
			t.Errorf("scenario %s expected %d %s assignments, got %d", sc.Name, want, strategy, got)
		}
	}
}
