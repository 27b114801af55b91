package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	rec := RunResult{
		RunID:       "test-run",
		Scenario:    "base",
		Hours:       24,
		DemandMWh:   4800,
		UnservedMWh: 12.5,
		SurplusMWh:  300,
		Duration:    150 * time.Millisecond,
	}
	if err := sink.RecordRun(rec); err != nil {
		t.Fatalf("record run: %v", err)
	}

	if got := testutil.ToFloat64(sink.runs.WithLabelValues("base")); got != 1 {
		t.Fatalf("runs counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sink.unserved.WithLabelValues("base")); got != 12.5 {
		t.Fatalf("unserved gauge = %v, want 12.5", got)
	}
	if got := testutil.ToFloat64(sink.surplus.WithLabelValues("base")); got != 300 {
		t.Fatalf("surplus gauge = %v, want 300", got)
	}
}

func TestPromSink_RecordFleet(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	res := []GeneratorResult{
		{Scenario: "base", Label: "wind farm", Tech: "wind", SuppliedMWh: 800},
		{Scenario: "base", Label: "gas", Tech: "ocgt", SuppliedMWh: 200},
	}
	if err := sink.RecordFleet(res); err != nil {
		t.Fatalf("record fleet: %v", err)
	}

	if got := testutil.ToFloat64(sink.supplied.WithLabelValues("base", "wind farm", "wind")); got != 800 {
		t.Fatalf("supplied gauge = %v, want 800", got)
	}
}

func TestPromSink_DoubleRegistrationTolerated(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSink(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSink(reg); err != nil {
		t.Fatalf("second registration: %v", err)
	}
}

func TestNewSink(t *testing.T) {
	s, err := NewSink(Config{})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("empty config sink = %T, want NopSink", s)
	}

	if _, err := NewSink(Config{Sinks: []string{"bogus"}}); err == nil {
		t.Fatal("expected error for unknown sink")
	}
}

func TestMultiSink_FansOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	ps, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	m := MultiSink{NopSink{}, ps}
	if err := m.RecordRun(RunResult{Scenario: "multi"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(ps.runs.WithLabelValues("multi")); got != 1 {
		t.Fatalf("runs counter = %v, want 1", got)
	}
}
