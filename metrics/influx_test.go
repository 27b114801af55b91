package metrics

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewInfluxSinkWithFallback_Unreachable(t *testing.T) {
	cfg := Config{InfluxURL: "http://127.0.0.1:1", InfluxToken: "t", InfluxOrg: "o", InfluxBucket: "b"}
	sink := NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(NopSink); !ok {
		t.Fatalf("sink = %T, want NopSink fallback", sink)
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

	cfg := Config{InfluxURL: srv.URL, InfluxToken: "t", InfluxOrg: "o", InfluxBucket: "b"}
	sink := NewInfluxSinkWithFallback(cfg)
	is, ok := sink.(*InfluxSink)
	if !ok {
		t.Fatalf("sink = %T, want InfluxSink", sink)
	}
	defer func() {
		_ = is.Close()
	}()

	if err := is.RecordRun(RunResult{RunID: "r", Scenario: "s", Hours: 1}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := is.RecordFleet([]GeneratorResult{{RunID: "r", Scenario: "s", Label: "g", Tech: "wind"}}); err != nil {
		t.Fatalf("record fleet: %v", err)
	}
}

func TestRound3(t *testing.T) {
	if round3(1.23456) != 1.235 {
		t.Fatalf("round3 = %v", round3(1.23456))
	}
	if round3(math.NaN()) != 0 {
		t.Fatal("NaN must map to 0")
	}
}
