package roster

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	assignmentsCreated  *prometheus.CounterVec
	assignmentsRemoved  prometheus.Counter
	strategyResolutions *prometheus.CounterVec
	unresolvedGaps      prometheus.Gauge
	fillRate            prometheus.Gauge
	rosterStaff         prometheus.Gauge
	rosterStudents      prometheus.Gauge
	runDuration         prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, *prometheus.CounterVec, prometheus.Gauge, prometheus.Gauge, prometheus.Gauge, prometheus.Gauge, prometheus.Histogram) {
	created := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_assignments_created_total",
			Help: "Assignments committed by the engine",
		},
		[]string{"strategy"},
	)
	removed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roster_assignments_removed_total",
			Help: "Assignments displaced or stripped by the engine",
		},
	)
	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_strategy_resolutions_total",
			Help: "Gap-repair strategy outcomes",
		},
		[]string{"strategy", "resolved"},
	)
	gaps := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_unresolved_gaps",
			Help: "Coverage gaps left by the last run",
		},
	)
	fill := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_fill_rate",
			Help: "Fraction of required slots covered by the last run",
		},
	)
	staff := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_staff",
			Help: "Staff on the roster at the last run",
		},
	)
	students := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_students",
			Help: "Students on the roster at the last run",
		},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roster_run_duration_seconds",
			Help:    "Wall time of engine runs",
			Buckets: prometheus.DefBuckets,
		},
	)
	return created, removed, resolutions, gaps, fill, staff, students, duration
}

func init() {
	assignmentsCreated, assignmentsRemoved, strategyResolutions, unresolvedGaps, fillRate, rosterStaff, rosterStudents, runDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers engine metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(assignmentsCreated, assignmentsRemoved, strategyResolutions, unresolvedGaps, fillRate, rosterStaff, rosterStudents, runDuration)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	assignmentsCreated, assignmentsRemoved, strategyResolutions, unresolvedGaps, fillRate, rosterStaff, rosterStudents, runDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
