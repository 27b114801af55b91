// Package metrics records simulation outcomes for observability: a
// Prometheus sink for scrape-based monitoring and an InfluxDB sink for
// dashboarding hourly series. Sinks are strictly write-only consumers of
// the simulation outputs.
package metrics

import (
	"fmt"
	"time"
)

// RunResult summarises one simulation run.
type RunResult struct {
	RunID           string
	Scenario        string
	Hours           int
	DemandMWh       float64
	UnservedMWh     float64
	SurplusMWh      float64
	UnservedPercent float64
	Duration        time.Duration
}

// GeneratorResult summarises one generator's activity over a run.
type GeneratorResult struct {
	RunID          string
	Scenario       string
	Label          string
	Tech           string
	CapacityMW     float64
	SuppliedMWh    float64
	SpilledMWh     float64
	CapacityFactor float64
}

// Sink records simulation results.
type Sink interface {
	RecordRun(RunResult) error
	RecordFleet([]GeneratorResult) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunResult) error           { return nil }
func (NopSink) RecordFleet([]GeneratorResult) error { return nil }

// Config selects and configures the metrics sinks.
type Config struct {
	// Sinks lists the enabled sinks: "nop", "prometheus", "influx".
	Sinks []string `json:"sinks"`

	// PromAddr is the listen address of the Prometheus scrape endpoint,
	// e.g. ":2112". Empty disables the HTTP server.
	PromAddr string `json:"promAddr"`

	InfluxURL    string `json:"influxUrl"`
	InfluxToken  string `json:"influxToken"`
	InfluxOrg    string `json:"influxOrg"`
	InfluxBucket string `json:"influxBucket"`
}

// NewSink builds the configured sink set. An empty configuration yields a
// NopSink.
func NewSink(cfg Config) (Sink, error) {
	var sinks []Sink
	for _, name := range cfg.Sinks {
		switch name {
		case "", "nop":
			sinks = append(sinks, NopSink{})
		case "prometheus":
			s, err := NewPromSink(nil)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		case "influx":
			sinks = append(sinks, NewInfluxSinkWithFallback(cfg))
		default:
			return nil, fmt.Errorf("metrics: unknown sink %q", name)
		}
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return MultiSink(sinks), nil
	}
}

// MultiSink fans records out to several sinks, returning the first error.
type MultiSink []Sink

func (m MultiSink) RecordRun(r RunResult) error {
	for _, s := range m {
		if err := s.RecordRun(r); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) RecordFleet(res []GeneratorResult) error {
	for _, s := range m {
		if err := s.RecordFleet(res); err != nil {
			return err
		}
	}
	return nil
}
