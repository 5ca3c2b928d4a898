package metrics

import (
	"strconv"

	coremetrics "github.com/mpelletier/rosterd/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records scheduling outcomes in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	gaps        *prometheus.CounterVec
	strategies  *prometheus.CounterVec
	duration    prometheus.Histogram
	fillRate    prometheus.Gauge
	roster      *prometheus.GaugeVec
}

// NewPromSink registers scheduling metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_assignments_total",
		Help: "Total number of committed assignment events",
	}, []string{"session", "program", "strategy", "degraded"})
	gaps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_gaps_total",
		Help: "Total number of coverage gaps left unresolved",
	}, []string{"session", "program"})
	strategies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_strategy_attempts_total",
		Help: "Gap-repair strategy attempts by outcome",
	}, []string{"strategy", "resolved"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_run_duration_seconds",
		Help:    "Wall-clock duration of scheduling runs",
		Buckets: prometheus.DefBuckets,
	})
	fillRate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_fill_rate",
		Help: "Fraction of required slots covered by the latest run",
	})
	roster := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_roster_size",
		Help: "Active roster headcount seen at run start",
	}, []string{"kind"})

	if err := reg.Register(assignments); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			assignments = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(gaps); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			gaps = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(strategies); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			strategies = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fillRate); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fillRate = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(roster); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			roster = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		assignments: assignments,
		gaps:        gaps,
		strategies:  strategies,
		duration:    duration,
		fillRate:    fillRate,
		roster:      roster,
	}, nil
}

// RecordAssignments increments the counter for each committed assignment.
func (s *PromSink) RecordAssignments(recs []coremetrics.AssignmentRecord) error {
	for _, r := range recs {
		s.assignments.WithLabelValues(r.Session.String(), r.Program.String(), r.Strategy.String(), strconv.FormatBool(r.Degraded)).Inc()
	}
	return nil
}

// RecordRunSummary observes the run duration and updates the fill-rate gauge.
func (s *PromSink) RecordRunSummary(sum coremetrics.RunSummary) error {
	s.duration.Observe(sum.Duration.Seconds())
	s.fillRate.Set(sum.FillRate)
	return nil
}

// RecordGaps increments the gap counter per unresolved slot.
func (s *PromSink) RecordGaps(gaps []coremetrics.GapRecord) error {
	for _, g := range gaps {
		s.gaps.WithLabelValues(g.Session.String(), g.Program.String()).Inc()
	}
	return nil
}

// RecordStrategy increments the strategy attempt counter.
func (s *PromSink) RecordStrategy(rec coremetrics.StrategyRecord) error {
	s.strategies.WithLabelValues(rec.Strategy, strconv.FormatBool(rec.Resolved)).Inc()
	return nil
}

// RecordRosterSize sets the roster headcount gauges.
func (s *PromSink) RecordRosterSize(staff, students int) error {
	if s.roster != nil {
		s.roster.WithLabelValues("staff").Set(float64(staff))
		s.roster.WithLabelValues("students").Set(float64(students))
	}
	return nil
}
