package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apiroster "github.com/mpelletier/rosterd/api/roster"
	"github.com/mpelletier/rosterd/config"
	coremetrics "github.com/mpelletier/rosterd/core/metrics"
	"github.com/mpelletier/rosterd/core/model"
	"github.com/mpelletier/rosterd/core/roster"
	"github.com/mpelletier/rosterd/core/roster/runlog"
	"github.com/mpelletier/rosterd/infra/logger"
	"github.com/mpelletier/rosterd/infra/metrics"
	"github.com/mpelletier/rosterd/infra/notify"
	"github.com/mpelletier/rosterd/internal/eventbus"
)

// Service orchestrates the roster engine and its adapters.
type Service struct {
	Engine   *roster.Engine
	bus      eventbus.EventBus
	sink     coremetrics.MetricsSink
	store    runlog.LogStore
	notifier notify.Notifier
	log      logger.Logger
	cfg      *config.Config
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.New()
	engine, err := roster.NewEngine(cfg.Engine, logger.New("engine"), sink, bus)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	store, err := NewRunLogStore(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log store: %w", err)
	}
	engine.SetLogStore(store)

	svc := &Service{Engine: engine, bus: bus, sink: sink, store: store, log: logg, cfg: cfg}
	if cfg.Notify.Broker != "" {
		notifier, err := notify.NewPahoNotifier(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
		svc.notifier = notifier
	}
	return svc, nil
}

// NewRunLogStore builds the run log store selected by the configuration.
func NewRunLogStore(cfg config.RunLogConfig) (runlog.LogStore, error) {
	switch cfg.Backend {
	case "jsonl":
		return runlog.NewJSONLStore(cfg.Path)
	case "jsonl_rotating":
		return runlog.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return runlog.NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown run log backend %s", cfg.Backend)
	}
}

// RunDay runs the engine against one day's roster and pushes the outcome to
// the configured notifier. Gap records go to the sink directly here; the bus
// collector only runs inside Run, and a one-shot process may exit before it
// drains.
func (s *Service) RunDay(board roster.Board, staff []model.Staff, students []model.Student) roster.Result {
	res := s.Engine.Run(board, staff, students)
	s.recordGaps(res)
	s.notifyRun(res)
	return res
}

// Run starts the long-lived adapters and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.notifier != nil {
		notify.StartRunNotifier(ctx, s.bus, s.notifier)
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if addr := s.cfg.API.Addr; addr != "" {
		go func() {
			if err := apiroster.StartServer(ctx, addr, s.store, s.cfg.API.Token); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.notifier != nil {
		s.notifier.Close()
	}
	return s.Engine.Close()
}

func (s *Service) recordGaps(res roster.Result) {
	gr, ok := s.sink.(coremetrics.GapRecorder)
	if !ok || len(res.Report.Gaps) == 0 {
		return
	}
	now := time.Now()
	recs := make([]coremetrics.GapRecord, 0, len(res.Report.Gaps))
	for _, g := range res.Report.Gaps {
		recs = append(recs, coremetrics.GapRecord{
			RunID:       res.RunID,
			StudentID:   g.StudentID,
			StudentName: g.StudentName,
			Session:     g.Session,
			Program:     g.Program,
			Missing:     g.Missing,
			Time:        now,
		})
	}
	if err := gr.RecordGaps(recs); err != nil {
		s.log.Errorf("gap metrics error: %v", err)
	}
}

func (s *Service) notifyRun(res roster.Result) {
	if s.notifier == nil {
		return
	}
	msg := notify.Message{
		MessageID:  uuid.NewString(),
		RunID:      res.RunID,
		Date:       res.Date.Format("2006-01-02"),
		Created:    len(res.NewAssignments),
		Removed:    len(res.Removed),
		Unresolved: res.Unresolved(),
		FillRate:   res.Report.FillRate,
		DurationMS: res.Duration.Milliseconds(),
		Timestamp:  time.Now().UnixMilli(),
	}
	for _, g := range res.Report.Gaps {
		msg.Gaps = append(msg.Gaps, notify.Gap{
			StudentID:   g.StudentID,
			StudentName: g.StudentName,
			Session:     g.Session.String(),
			Program:     g.Program.String(),
			Missing:     g.Missing,
		})
	}
	if err := s.notifier.PublishRunSummary(msg); err != nil {
		s.log.Errorf("notify run %s: %v", res.RunID, err)
	}
}
