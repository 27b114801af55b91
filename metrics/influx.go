package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/mwheeler/gridsim/infra/logger"
)

// InfluxSink writes simulation results to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
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

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg Config) Sink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return NopSink{}
	}
	return sink
}

// RecordRun writes the run summary as one point.
func (s *InfluxSink) RecordRun(r RunResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_run").
		AddTag("run_id", r.RunID).
		AddTag("scenario", r.Scenario).
		AddField("hours", r.Hours).
		AddField("demand_mwh", round3(r.DemandMWh)).
		AddField("unserved_mwh", round3(r.UnservedMWh)).
		AddField("surplus_mwh", round3(r.SurplusMWh)).
		AddField("unserved_percent", round3(r.UnservedPercent)).
		AddField("duration_ms", r.Duration.Milliseconds()).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleet writes one point per generator.
func (s *InfluxSink) RecordFleet(res []GeneratorResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	now := time.Now()
	for _, r := range res {
		p := write.NewPointWithMeasurement("generator_run").
			AddTag("run_id", r.RunID).
			AddTag("scenario", r.Scenario).
			AddTag("generator", r.Label).
			AddTag("tech", r.Tech).
			AddField("capacity_mw", round3(r.CapacityMW)).
			AddField("supplied_mwh", round3(r.SuppliedMWh)).
			AddField("spilled_mwh", round3(r.SpilledMWh)).
			AddField("capacity_factor", round3(r.CapacityFactor)).
			SetTime(now)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Round(f*1000) / 1000
}
