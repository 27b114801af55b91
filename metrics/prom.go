package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records simulation runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	unserved *prometheus.GaugeVec
	surplus  *prometheus.GaugeVec
	supplied *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

// NewPromSink registers simulation metrics on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_runs_total",
			Help: "Total number of simulation runs",
		}, []string{"scenario"}),
		unserved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simulation_unserved_mwh",
			Help: "Unserved energy of the last run",
		}, []string{"scenario"}),
		surplus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simulation_surplus_mwh",
			Help: "Spilled energy not absorbed by storage in the last run",
		}, []string{"scenario"}),
		supplied: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simulation_generation_mwh",
			Help: "Energy supplied per generator in the last run",
		}, []string{"scenario", "generator", "tech"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simulation_duration_seconds",
			Help:    "Wall-clock duration of a simulation run",
			Buckets: prometheus.DefBuckets,
		}, []string{"scenario"}),
	}
	for _, c := range []prometheus.Collector{s.runs, s.unserved, s.surplus, s.supplied, s.duration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordRun updates the run counters and gauges.
func (s *PromSink) RecordRun(r RunResult) error {
	s.runs.WithLabelValues(r.Scenario).Inc()
	s.unserved.WithLabelValues(r.Scenario).Set(r.UnservedMWh)
	s.surplus.WithLabelValues(r.Scenario).Set(r.SurplusMWh)
	s.duration.WithLabelValues(r.Scenario).Observe(r.Duration.Seconds())
	return nil
}

// RecordFleet updates the per-generator supplied energy gauges.
func (s *PromSink) RecordFleet(res []GeneratorResult) error {
	for _, r := range res {
		s.supplied.WithLabelValues(r.Scenario, r.Label, r.Tech).Set(r.SuppliedMWh)
	}
	return nil
}
