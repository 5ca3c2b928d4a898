package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/mpelletier/rosterd/core/metrics"
	"github.com/mpelletier/rosterd/core/model"
)

func lineCapture(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, strings.TrimSpace(string(data)))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func TestInfluxSink_RecordAssignments(t *testing.T) {
	srv, bodies := lineCapture(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	rec := coremetrics.AssignmentRecord{
		RunID:     "run-1",
		StaffID:   "rbt1",
		StudentID: "kid1",
		Session:   model.SessionAM,
		Program:   model.ProgramPrimary,
		Strategy:  model.StrategyAuto,
		Degraded:  true,
		Time:      now,
	}

	if err := sink.RecordAssignments([]coremetrics.AssignmentRecord{rec}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("assignment_event").
		AddTag("run_id", "run-1").
		AddTag("staff_id", "rbt1").
		AddTag("student_id", "kid1").
		AddTag("session", "AM").
		AddTag("program", "Primary").
		AddTag("strategy", "auto").
		AddTag("component", "roster_engine").
		AddField("degraded", true).
		AddField("count", 1).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(*bodies) != 1 || (*bodies)[0] != expected {
		t.Errorf("unexpected bodies: %#v", *bodies)
	}
}

func TestInfluxSink_RecordRunSummary(t *testing.T) {
	srv, bodies := lineCapture(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	sum := coremetrics.RunSummary{
		RunID:      "run-1",
		Date:       now,
		Created:    12,
		Removed:    3,
		Unresolved: 1,
		Degraded:   2,
		FillRate:   0.91666,
		Duration:   1500 * time.Millisecond,
		Time:       now,
	}
	if err := sink.RecordRunSummary(sum); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", "run-1").
		AddTag("component", "roster_engine").
		AddField("created", 12).
		AddField("removed", 3).
		AddField("unresolved", 1).
		AddField("degraded", 2).
		AddField("fill_rate", 0.917).
		AddField("duration_ms", 1500.0).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(*bodies) != 1 || (*bodies)[0] != expected {
		t.Errorf("unexpected bodies: %#v", *bodies)
	}
}

func TestInfluxSink_RecordGaps(t *testing.T) {
	srv, bodies := lineCapture(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	gap := coremetrics.GapRecord{
		RunID:       "run-1",
		StudentID:   "kid3",
		StudentName: "Zeke",
		Session:     model.SessionPM,
		Program:     model.ProgramSecondary,
		Missing:     2,
		Time:        now,
	}
	if err := sink.RecordGaps([]coremetrics.GapRecord{gap}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("coverage_gap").
		AddTag("run_id", "run-1").
		AddTag("student_id", "kid3").
		AddTag("session", "PM").
		AddTag("program", "Secondary").
		AddTag("component", "roster_engine").
		AddField("missing", 2).
		AddField("student_name", "Zeke").
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(*bodies) != 1 || (*bodies)[0] != expected {
		t.Errorf("unexpected bodies: %#v", *bodies)
	}
}

func TestInfluxSink_RecordStrategy(t *testing.T) {
	srv, bodies := lineCapture(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	rec := coremetrics.StrategyRecord{
		RunID:     "run-1",
		Strategy:  "auto-swap",
		StudentID: "kid3",
		Session:   model.SessionAM,
		Program:   model.ProgramPrimary,
		Resolved:  true,
		Time:      now,
	}
	if err := sink.RecordStrategy(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("strategy_attempt").
		AddTag("run_id", "run-1").
		AddTag("strategy", "auto-swap").
		AddTag("student_id", "kid3").
		AddTag("session", "AM").
		AddTag("program", "Primary").
		AddTag("resolved", "true").
		AddTag("component", "roster_engine").
		AddField("count", 1).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(*bodies) != 1 || (*bodies)[0] != expected {
		t.Errorf("unexpected bodies: %#v", *bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestNewInfluxSinkWithFallback_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"influxdb","status":"pass"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL, "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); !ok {
		t.Fatalf("expected InfluxSink when health check passes, got %T", sink)
	}
}
