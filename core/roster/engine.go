package roster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mpelletier/rosterd/core/events"
	"github.com/mpelletier/rosterd/core/logger"
	"github.com/mpelletier/rosterd/core/metrics"
	"github.com/mpelletier/rosterd/core/model"
	"github.com/mpelletier/rosterd/core/roster/runlog"
	"github.com/mpelletier/rosterd/internal/eventbus"
)

// Engine computes one day's staff-to-student schedule: a greedy direct
// pass per (program, session) followed by bounded gap-repair passes. One
// Run is a single synchronous computation; callers must not edit the board
// while a run is in flight.
type Engine struct {
	cfg     Config
	logger  logger.Logger
	metrics metrics.MetricsSink
	bus     eventbus.EventBus
	store   runlog.LogStore
	mu      sync.Mutex
}

// NewEngine creates an engine. A nil sink disables metrics recording; a
// nil bus disables event publishing. Zero config fields take defaults.
func NewEngine(cfg Config, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus) (*Engine, error) {
	if log == nil {
		return nil, fmt.Errorf("roster: nil logger provided to NewEngine")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{cfg: cfg, logger: log, metrics: sink, bus: bus}, nil
}

// SetLogStore configures the store used to persist run records.
func (e *Engine) SetLogStore(store runlog.LogStore) {
	e.mu.Lock()
	e.store = store
	e.mu.Unlock()
}

// Close releases resources held by the engine.
func (e *Engine) Close() error {
	if e.bus != nil {
		e.bus.Close()
	}
	e.mu.Lock()
	store := e.store
	e.mu.Unlock()
	if store != nil {
		return store.Close()
	}
	return nil
}

// Run computes the schedule for the given board and rosters and returns
// the complete diff. The run never aborts: constraint failures steer the
// search, unresolved gaps end up in Result.Errors, and a malformed board
// degrades to empty query results.
func (e *Engine) Run(board Board, staff []model.Staff, students []model.Student) Result {
	start := time.Now()
	gb := guardBoard(board, time.Now(), e.logger)
	date := gb.Date()
	seed := e.cfg.Seed
	if seed == 0 {
		seed = date.Unix()
	}
	runID := uuid.NewString()

	rules := NewRules(staff, students)
	rs := &runState{
		eng:      e,
		log:      e.logger,
		runID:    runID,
		date:     date,
		board:    gb,
		rules:    rules,
		filter:   NewFilter(rules),
		ranker:   NewRanker(seed, e.cfg.PMJitter),
		cfg:      e.cfg,
		staff:    staff,
		students: students,
		created:  make(map[string]model.Assignment),
		degraded: make(map[string]bool),
	}

	e.logger.Infof("run %s: %d staff, %d students for %s", runID, len(staff), len(students), date.Format("2006-01-02"))
	rs.publish(events.RunStartedEvent{RunID: runID, Date: date, Staff: len(staff), Students: len(students)})
	if rr, ok := e.metrics.(metrics.RosterSizeRecorder); ok {
		if err := rr.RecordRosterSize(len(staff), len(students)); err != nil {
			e.logger.Errorf("roster size metrics error: %v", err)
		}
	}

	for _, prog := range model.Programs() {
		for _, ses := range model.Sessions() {
			rs.directPass(prog, ses)
		}
	}
	rs.reallocate()
	rs.finalize()

	res := rs.buildResult(start)
	e.recordMetrics(res, rs)
	e.appendLog(res, rs.degraded)
	rs.publish(events.RunCompletedEvent{
		RunID:      runID,
		Date:       date,
		Created:    len(res.NewAssignments),
		Removed:    len(res.Removed),
		Unresolved: len(res.Errors),
		FillRate:   res.Report.FillRate,
		Duration:   res.Duration,
	})
	e.logger.Infof("run %s: %d created, %d removed, %d unresolved in %s",
		runID, len(res.NewAssignments), len(res.Removed), len(res.Errors), res.Duration)
	return res
}

// recordMetrics forwards the run outcome to the sink and updates the
// package collectors.
func (e *Engine) recordMetrics(res Result, rs *runState) {
	now := time.Now()
	if len(res.NewAssignments) > 0 {
		recs := make([]metrics.AssignmentRecord, 0, len(res.NewAssignments))
		for _, a := range res.NewAssignments {
			recs = append(recs, metrics.AssignmentRecord{
				RunID:     res.RunID,
				StaffID:   a.StaffID,
				StudentID: a.StudentID,
				Session:   a.Session,
				Program:   a.Program,
				Strategy:  a.Origin.Strategy,
				Degraded:  rs.degraded[a.ID],
				Time:      now,
			})
		}
		if err := e.metrics.RecordAssignments(recs); err != nil {
			e.logger.Errorf("assignment metrics error: %v", err)
		}
	}
	if rr, ok := e.metrics.(metrics.RunRecorder); ok {
		sum := metrics.RunSummary{
			RunID:      res.RunID,
			Date:       res.Date,
			Created:    len(res.NewAssignments),
			Removed:    len(res.Removed),
			Unresolved: len(res.Errors),
			Degraded:   res.Report.Degraded,
			FillRate:   res.Report.FillRate,
			Duration:   res.Duration,
			Time:       now,
		}
		if err := rr.RecordRunSummary(sum); err != nil {
			e.logger.Errorf("run summary metrics error: %v", err)
		}
	}
	rosterStaff.Set(float64(len(rs.staff)))
	rosterStudents.Set(float64(len(rs.students)))
	fillRate.Set(res.Report.FillRate)
	unresolvedGaps.Set(float64(len(res.Errors)))
	runDuration.Observe(res.Duration.Seconds())
}

// appendLog persists the run record if a store is configured.
func (e *Engine) appendLog(res Result, degraded map[string]bool) {
	e.mu.Lock()
	store := e.store
	e.mu.Unlock()
	if store == nil {
		return
	}
	rec := runlog.RunRecord{
		Timestamp:  time.Now(),
		RunID:      res.RunID,
		Date:       res.Date,
		Created:    toEntries(res.NewAssignments, degraded),
		Removed:    toEntries(res.Removed, nil),
		Errors:     res.Errors,
		FillRate:   res.Report.FillRate,
		DurationMS: res.Duration.Milliseconds(),
	}
	for _, g := range res.Report.Gaps {
		rec.Gaps = append(rec.Gaps, runlog.GapEntry{
			StudentID:   g.StudentID,
			StudentName: g.StudentName,
			Session:     g.Session.String(),
			Program:     g.Program.String(),
			Missing:     g.Missing,
		})
	}
	if err := store.Append(context.Background(), rec); err != nil {
		e.logger.Errorf("run log append error: %v", err)
	}
}

func toEntries(asgs []model.Assignment, degraded map[string]bool) []runlog.AssignmentEntry {
	entries := make([]runlog.AssignmentEntry, 0, len(asgs))
	for _, a := range asgs {
		entries = append(entries, runlog.AssignmentEntry{
			ID:        a.ID,
			StaffID:   a.StaffID,
			StudentID: a.StudentID,
			Session:   a.Session.String(),
			Program:   a.Program.String(),
			Strategy:  a.Origin.Strategy.String(),
			Degraded:  degraded[a.ID],
		})
	}
	return entries
}

// runState carries the working set of one engine run.
type runState struct {
	eng      *Engine
	log      logger.Logger
	runID    string
	date     time.Time
	board    Board
	rules    *Rules
	filter   *Filter
	ranker   *Ranker
	cfg      Config
	staff    []model.Staff
	students []model.Student

	created      map[string]model.Assignment // this run's assignments still on the board
	createdOrder []string
	degraded     map[string]bool // assignment ID -> served by fallback tier
	removedPre   []model.Assignment
	trace        []Decision
	errors       []string
	gaps         []Gap // unresolved at finalization
}

func (rs *runState) publish(evt eventbus.Event) {
	if rs.eng.bus != nil {
		rs.eng.bus.Publish(evt)
	}
}

// missing returns how many staff the student still needs for the session.
func (rs *runState) missing(st model.Student, ses model.Session) int {
	held := 0
	for _, a := range rs.board.ForStudent(st.ID) {
		if a.Session == ses {
			held++
		}
	}
	if need := st.RequiredStaff(ses) - held; need > 0 {
		return need
	}
	return 0
}

// legal validates the candidate on the given view. Rule failures are
// traced as skips so an uncovered student can be explained afterwards.
func (rs *runState) legal(view View, c Candidate, stage Stage, strat model.Strategy) bool {
	vs, err := rs.rules.Check(view, c)
	if err != nil {
		rs.log.Warnf("validation error for staff %s / student %s: %v", c.StaffID, c.StudentID, err)
		return false
	}
	if len(vs) == 0 {
		return true
	}
	rs.trace = append(rs.trace, Decision{
		Stage:     stage,
		Strategy:  strat,
		StudentID: c.StudentID,
		StaffID:   c.StaffID,
		Session:   c.Session,
		Program:   c.Program,
		Outcome:   OutcomeSkipped,
		Detail:    vs[0].String(),
	})
	return false
}

// commit applies a validated move to the live board: removals first, then
// additions, undone best-effort if the board rejects a step. Bookkeeping,
// trace entries, and events follow only when the whole move applied.
func (rs *runState) commit(removals, adds []model.Assignment, stage Stage) error {
	for i, a := range removals {
		if err := rs.board.Remove(a.ID); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = rs.board.Add(removals[j])
			}
			return fmt.Errorf("remove %s: %w", a.ID, err)
		}
	}
	for i, a := range adds {
		if err := rs.board.Add(a); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = rs.board.Remove(adds[j].ID)
			}
			for _, r := range removals {
				_ = rs.board.Add(r)
			}
			return fmt.Errorf("add for student %s: %w", a.StudentID, err)
		}
	}
	for _, a := range removals {
		if _, mine := rs.created[a.ID]; mine {
			delete(rs.created, a.ID)
		} else {
			rs.removedPre = append(rs.removedPre, a)
		}
		assignmentsRemoved.Inc()
		rs.trace = append(rs.trace, Decision{
			Stage:     stage,
			Strategy:  a.Origin.Strategy,
			StudentID: a.StudentID,
			StaffID:   a.StaffID,
			Session:   a.Session,
			Program:   a.Program,
			Outcome:   OutcomeRemoved,
		})
		rs.publish(events.RemovalEvent{RunID: rs.runID, Assignment: a})
	}
	for _, a := range adds {
		rs.created[a.ID] = a
		rs.createdOrder = append(rs.createdOrder, a.ID)
		if s, ok := rs.rules.Staff(a.StaffID); ok && !s.Role.Preferred() {
			rs.degraded[a.ID] = true
		}
		assignmentsCreated.WithLabelValues(a.Origin.Strategy.String()).Inc()
		rs.log.Debugw("assignment committed", map[string]any{
			"stage":    stage.String(),
			"strategy": a.Origin.Strategy.String(),
			"staff":    a.StaffID,
			"student":  a.StudentID,
			"session":  a.Session.String(),
			"program":  a.Program.String(),
		})
		rs.trace = append(rs.trace, Decision{
			Stage:     stage,
			Strategy:  a.Origin.Strategy,
			StudentID: a.StudentID,
			StaffID:   a.StaffID,
			Session:   a.Session,
			Program:   a.Program,
			Outcome:   OutcomeAssigned,
		})
		rs.publish(events.AssignmentEvent{RunID: rs.runID, Assignment: a})
	}
	return nil
}

// traceFail records a student-session the current stage could not cover.
func (rs *runState) traceFail(st model.Student, ses model.Session, prog model.Program, stage Stage, detail string) {
	rs.trace = append(rs.trace, Decision{
		Stage:     stage,
		StudentID: st.ID,
		Session:   ses,
		Program:   prog,
		Outcome:   OutcomeFailed,
		Detail:    detail,
	})
}

func (rs *runState) buildResult(start time.Time) Result {
	res := Result{
		RunID:    rs.runID,
		Date:     rs.date,
		Errors:   rs.errors,
		Trace:    rs.trace,
		Removed:  rs.removedPre,
		Duration: time.Since(start),
	}
	for _, id := range rs.createdOrder {
		if a, ok := rs.created[id]; ok {
			res.NewAssignments = append(res.NewAssignments, a)
		}
	}
	res.Report = rs.buildReport(res)
	return res
}
