package metrics_test

import (
	"strings"
	"testing"

	"github.com/mpelletier/rosterd/core/factory"
	metrics "github.com/mpelletier/rosterd/core/metrics"
	_ "github.com/mpelletier/rosterd/infra/metrics"
)

// The blank infra/metrics import registers the builtin sinks; these tests
// drive the registry through the public constructor only.

func TestNewMetricsSink_Builtins(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("create nop: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
	types := metrics.SinkTypes()
	for _, want := range []string{"influx", "nop", "prometheus"} {
		found := false
		for _, name := range types {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("builtin sink %q not registered (have %v)", want, types)
		}
	}
}

func TestNewMetricsSink_NoConfig(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink default, got %T", s)
	}
}

func TestNewMetricsSink_Multi(t *testing.T) {
	cfgs := []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}
	s, err := metrics.NewMetricsSink(cfgs)
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}
}

func TestNewMetricsSink_UnknownType(t *testing.T) {
	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "statsd"}}); err == nil {
		t.Fatal("expected error for unknown sink type")
	}
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "statsd"}})
	if err == nil {
		t.Fatal("expected error for unknown sink type in multi config")
	}
	if !strings.Contains(err.Error(), "sink 1") {
		t.Fatalf("error should name the failing entry, got %q", err)
	}
}
