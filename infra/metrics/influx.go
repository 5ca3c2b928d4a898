package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/mpelletier/rosterd/core/metrics"
	"github.com/mpelletier/rosterd/infra/logger"
)

// InfluxSink writes scheduling outcomes to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink connects the sink to an InfluxDB endpoint. A full write URL
// is accepted and trimmed down to its base.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback health-checks the instance first and degrades to
// a NopSink when it is unreachable, so a missing InfluxDB never blocks a run.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx unreachable, falling back to nop sink: %v", err)
		} else {
			sink.log.Errorf("influx reported health %q, falling back to nop sink", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAssignments writes committed assignments as line protocol events.
func (s *InfluxSink) RecordAssignments(recs []coremetrics.AssignmentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("assignment_event").
			AddTag("run_id", r.RunID).
			AddTag("staff_id", r.StaffID).
			AddTag("student_id", r.StudentID).
			AddTag("session", r.Session.String()).
			AddTag("program", r.Program.String()).
			AddTag("strategy", r.Strategy.String()).
			AddTag("component", "roster_engine").
			AddField("degraded", r.Degraded).
			AddField("count", 1).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunSummary persists the aggregate outcome of one run.
func (s *InfluxSink) RecordRunSummary(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", sum.RunID).
		AddTag("component", "roster_engine").
		AddField("created", sum.Created).
		AddField("removed", sum.Removed).
		AddField("unresolved", sum.Unresolved).
		AddField("degraded", sum.Degraded).
		AddField("fill_rate", round3(sum.FillRate)).
		AddField("duration_ms", round3(sum.Duration.Seconds()*1000)).
		SetTime(sum.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordGaps writes one point per unresolved coverage gap.
func (s *InfluxSink) RecordGaps(gaps []coremetrics.GapRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, g := range gaps {
		p := write.NewPointWithMeasurement("coverage_gap").
			AddTag("run_id", g.RunID).
			AddTag("student_id", g.StudentID).
			AddTag("session", g.Session.String()).
			AddTag("program", g.Program.String()).
			AddTag("component", "roster_engine").
			AddField("missing", g.Missing).
			AddField("student_name", g.StudentName).
			SetTime(g.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordStrategy records a gap-repair strategy attempt.
func (s *InfluxSink) RecordStrategy(rec coremetrics.StrategyRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("strategy_attempt").
		AddTag("run_id", rec.RunID).
		AddTag("strategy", rec.Strategy).
		AddTag("student_id", rec.StudentID).
		AddTag("session", rec.Session.String()).
		AddTag("program", rec.Program.String()).
		AddTag("resolved", strconv.FormatBool(rec.Resolved)).
		AddTag("component", "roster_engine").
		AddField("count", 1).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRosterSize writes the roster headcount seen at run start.
func (s *InfluxSink) RecordRosterSize(staff, students int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("roster_size").
		AddTag("component", "roster_engine").
		AddField("staff", staff).
		AddField("students", students).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
