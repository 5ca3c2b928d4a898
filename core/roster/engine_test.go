package roster

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mpelletier/rosterd/core/events"
	"github.com/mpelletier/rosterd/core/metrics"
	"github.com/mpelletier/rosterd/core/model"
	"github.com/mpelletier/rosterd/core/roster/runlog"
	"github.com/mpelletier/rosterd/infra/logger"
	"github.com/mpelletier/rosterd/internal/eventbus"
)

type captureSink struct {
	mu    sync.Mutex
	recs  []metrics.AssignmentRecord
	sums  []metrics.RunSummary
	sizes [][2]int
}

func (c *captureSink) RecordAssignments(recs []metrics.AssignmentRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, recs...)
	return nil
}

func (c *captureSink) RecordRunSummary(sum metrics.RunSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sums = append(c.sums, sum)
	return nil
}

func (c *captureSink) RecordRosterSize(staff, students int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sizes = append(c.sizes, [2]int{staff, students})
	return nil
}

type memLogStore struct {
	mu     sync.Mutex
	recs   []runlog.RunRecord
	closed bool
}

func (m *memLogStore) Append(_ context.Context, rec runlog.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memLogStore) Query(_ context.Context, _ runlog.LogQuery) ([]runlog.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]runlog.RunRecord, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *memLogStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func drainEvents(ch <-chan eventbus.Event) []eventbus.Event {
	var out []eventbus.Event
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestNewEngineNilLogger(t *testing.T) {
	if _, err := NewEngine(Config{}, nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestNewEngineInvalidConfig(t *testing.T) {
	if _, err := NewEngine(Config{ChainDepth: 9}, logger.NopLogger{}, nil, nil); err == nil {
		t.Fatalf("expected error for out-of-range chain depth")
	}
}

func TestRunPublishesEvents(t *testing.T) {
	bus := eventbus.New()
	eng, err := NewEngine(Config{Seed: 1}, logger.NopLogger{}, nil, bus)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	ch := bus.Subscribe()

	board := model.NewSchedule(testDate())
	staff := []model.Staff{
		newStaff("rbt1", model.RoleRBT),
		newStaff("rbt2", model.RoleRBT),
	}
	students := []model.Student{
		amOnly(newStudent("X", model.RatioOneToOne, "rbt1")),
		amOnly(newStudent("Y", model.RatioOneToOne, "rbt2")),
	}
	res := eng.Run(board, staff, students)
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v", res.Errors)
	}

	var started, completed, assigned int
	for _, e := range drainEvents(ch) {
		switch evt := e.(type) {
		case events.RunStartedEvent:
			started++
			if evt.RunID != res.RunID {
				t.Errorf("start event run ID = %s, want %s", evt.RunID, res.RunID)
			}
		case events.AssignmentEvent:
			assigned++
		case events.RunCompletedEvent:
			completed++
			if evt.Created != 2 || evt.Unresolved != 0 {
				t.Errorf("completion event = %+v, want 2 created, 0 unresolved", evt)
			}
		}
	}
	if started != 1 || completed != 1 || assigned != 2 {
		t.Errorf("events: started=%d assigned=%d completed=%d", started, assigned, completed)
	}
}

func TestRunPublishesGapEvents(t *testing.T) {
	bus := eventbus.New()
	eng, err := NewEngine(Config{Seed: 1}, logger.NopLogger{}, nil, bus)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	ch := bus.Subscribe()

	gone := newStaff("rbt1", model.RoleRBT)
	gone.AbsentFullDay = true
	board := model.NewSchedule(testDate())
	eng.Run(board, []model.Staff{gone}, []model.Student{
		amOnly(newStudent("Z", model.RatioOneToOne, "rbt1")),
	})

	var gaps, strategies int
	for _, e := range drainEvents(ch) {
		switch evt := e.(type) {
		case events.GapEvent:
			gaps++
			if evt.StudentID != "Z" || evt.Missing != 1 {
				t.Errorf("gap event = %+v", evt)
			}
		case events.StrategyEvent:
			strategies++
			if evt.Resolved {
				t.Errorf("strategy event resolved = true for an unfillable gap: %+v", evt)
			}
		}
	}
	if gaps != 1 {
		t.Errorf("gap events = %d, want 1", gaps)
	}
	if strategies == 0 {
		t.Errorf("expected strategy exhaustion events")
	}
}

func TestRunRecordsSink(t *testing.T) {
	sink := &captureSink{}
	eng, err := NewEngine(Config{Seed: 1}, logger.NopLogger{}, sink, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	board := model.NewSchedule(testDate())
	staff := []model.Staff{
		newStaff("rbt1", model.RoleRBT),
		newStaff("ea1", model.RoleEA),
	}
	students := []model.Student{
		amOnly(newStudent("kid1", model.RatioTwoToOne, "rbt1", "ea1")),
	}
	res := eng.Run(board, staff, students)
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v", res.Errors)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.recs) != 2 {
		t.Fatalf("assignment records = %d, want 2", len(sink.recs))
	}
	var degraded int
	for _, r := range sink.recs {
		if r.RunID != res.RunID {
			t.Errorf("record run ID = %s, want %s", r.RunID, res.RunID)
		}
		if r.Degraded {
			degraded++
		}
	}
	if degraded != 1 {
		t.Errorf("degraded records = %d, want 1 for the fallback staff", degraded)
	}
	if len(sink.sums) != 1 || sink.sums[0].Created != 2 || sink.sums[0].Degraded != 1 {
		t.Errorf("run summary = %+v", sink.sums)
	}
	if len(sink.sizes) != 1 || sink.sizes[0] != [2]int{2, 1} {
		t.Errorf("roster sizes = %v, want [[2 1]]", sink.sizes)
	}
}

func TestRunAppendsRunLog(t *testing.T) {
	store := &memLogStore{}
	eng := newTestEngine(t, Config{Seed: 1})
	eng.SetLogStore(store)

	board := model.NewSchedule(testDate())
	staff := []model.Staff{newStaff("rbt1", model.RoleRBT)}
	students := []model.Student{
		amOnly(newStudent("kid1", model.RatioOneToOne, "rbt1")),
	}
	res := eng.Run(board, staff, students)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.recs) != 1 {
		t.Fatalf("run records = %d, want 1", len(store.recs))
	}
	rec := store.recs[0]
	if rec.RunID != res.RunID {
		t.Errorf("record run ID = %s, want %s", rec.RunID, res.RunID)
	}
	if len(rec.Created) != 1 || rec.Created[0].StudentID != "kid1" {
		t.Errorf("created entries = %+v", rec.Created)
	}
	if rec.Created[0].Strategy != "auto" {
		t.Errorf("strategy label = %q, want auto", rec.Created[0].Strategy)
	}
	if rec.FillRate != 1 {
		t.Errorf("fill rate = %g, want 1", rec.FillRate)
	}
}

func TestRunUpdatesCollectors(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)

	eng := newTestEngine(t, Config{Seed: 1})
	board := model.NewSchedule(testDate())
	staff := []model.Staff{
		newStaff("rbt1", model.RoleRBT),
		newStaff("rbt2", model.RoleRBT),
	}
	students := []model.Student{
		amOnly(newStudent("X", model.RatioOneToOne, "rbt1")),
		amOnly(newStudent("Y", model.RatioOneToOne, "rbt2")),
	}
	res := eng.Run(board, staff, students)
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v", res.Errors)
	}

	if got := testutil.ToFloat64(assignmentsCreated.WithLabelValues("auto")); got != 2 {
		t.Errorf("assignments created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(fillRate); got != 1 {
		t.Errorf("fill rate gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(unresolvedGaps); got != 0 {
		t.Errorf("unresolved gaps gauge = %v, want 0", got)
	}
	if got := testutil.ToFloat64(rosterStaff); got != 2 {
		t.Errorf("roster staff gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rosterStudents); got != 2 {
		t.Errorf("roster students gauge = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(runDuration); got != 1 {
		t.Errorf("run duration series = %d, want 1", got)
	}
}

func TestRunNilBoard(t *testing.T) {
	eng := newTestEngine(t, Config{Seed: 1})
	staff := []model.Staff{newStaff("rbt1", model.RoleRBT)}
	students := []model.Student{
		amOnly(newStudent("kid1", model.RatioOneToOne, "rbt1")),
	}

	res := eng.Run(nil, staff, students)
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v, want the run to degrade to an empty schedule", res.Errors)
	}
	if len(res.NewAssignments) != 1 {
		t.Errorf("created %d assignments, want 1", len(res.NewAssignments))
	}
}

func TestRunPanickingBoard(t *testing.T) {
	eng := newTestEngine(t, Config{Seed: 1})
	staff := []model.Staff{newStaff("rbt1", model.RoleRBT)}
	students := []model.Student{
		amOnly(newStudent("kid1", model.RatioOneToOne, "rbt1")),
	}

	// Every mutation fails, so the run must complete with the student
	// reported rather than crash.
	res := eng.Run(panicBoard{}, staff, students)
	if len(res.NewAssignments) != 0 {
		t.Errorf("NewAssignments = %v on a board that rejects writes", res.NewAssignments)
	}
	if len(res.Errors) != 1 {
		t.Errorf("errors = %v, want the student reported", res.Errors)
	}
}

func TestEngineCloseClosesStore(t *testing.T) {
	store := &memLogStore{}
	eng := newTestEngine(t, Config{Seed: 1})
	eng.SetLogStore(store)

	if err := eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if !store.closed {
		t.Errorf("store not closed")
	}
}

func TestRunDistinctRunIDs(t *testing.T) {
	eng := newTestEngine(t, Config{Seed: 1})
	a := eng.Run(model.NewSchedule(testDate()), nil, nil)
	b := eng.Run(model.NewSchedule(testDate()), nil, nil)
	if a.RunID == "" || a.RunID == b.RunID {
		t.Errorf("run IDs not unique: %q vs %q", a.RunID, b.RunID)
	}
}
