// Package app wires the configuration into a runnable simulation service.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mwheeler/gridsim/config"
	"github.com/mwheeler/gridsim/core/costs"
	"github.com/mwheeler/gridsim/core/demand"
	"github.com/mwheeler/gridsim/core/fitness"
	"github.com/mwheeler/gridsim/core/sim"
	"github.com/mwheeler/gridsim/core/topology"
	"github.com/mwheeler/gridsim/core/trace"
	"github.com/mwheeler/gridsim/infra/logger"
	"github.com/mwheeler/gridsim/metrics"
)

// Service holds a fully assembled simulation: grid, demand, fleet and the
// metrics sinks it reports to.
type Service struct {
	Sim    *sim.Context
	Tables *costs.Tables
	Limits fitness.Limits

	scenario string
	sink     metrics.Sink
	promAddr string
	log      logger.Logger
}

// New builds a Service from the configuration. Traces and the demand
// series are fetched eagerly so a broken source fails here, not mid-run.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	grid, err := cfg.BuildGrid()
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}

	dem, err := loadDemand(ctx, cfg.Demand.Source, grid)
	if err != nil {
		return nil, fmt.Errorf("demand: %w", err)
	}

	cache := trace.NewCache(nil)
	fleet, err := cfg.BuildFleet(ctx, cache)
	if err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}

	tables, err := cfg.BuildCosts()
	if err != nil {
		return nil, fmt.Errorf("costs: %w", err)
	}

	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	c := sim.New(grid, fleet, dem)
	c.NSPLimit = cfg.NSPLimit
	c.TrackExchanges = cfg.TrackExchanges
	c.RelStd = cfg.RelStd
	c.Log = logger.New("sim")

	return &Service{
		Sim:      c,
		Tables:   tables,
		Limits:   cfg.BuildLimits(),
		scenario: cfg.Scenario,
		sink:     sink,
		promAddr: cfg.Metrics.PromAddr,
		log:      logg,
	}, nil
}

// Run executes the full simulated period once and reports the results.
func (s *Service) Run(ctx context.Context) error {
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	start := time.Now()
	if err := s.Sim.Run(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	elapsed := time.Since(start)
	s.log.Infof("simulated %d hours in %s", s.Sim.Demand.Hours(), elapsed)

	if err := s.sink.RecordRun(metrics.CollectRun(s.Sim, s.scenario, elapsed)); err != nil {
		s.log.Errorf("record run: %v", err)
	}
	if err := s.sink.RecordFleet(metrics.CollectFleet(s.Sim, s.scenario)); err != nil {
		s.log.Errorf("record fleet: %v", err)
	}
	return nil
}

// Evaluate runs the simulation and scores it against the cost tables and
// planning limits.
func (s *Service) Evaluate() (fitness.Result, error) {
	return fitness.Evaluate(s.Sim, s.Tables, s.Limits, nil)
}

// Close releases resources held by the metrics sinks.
func (s *Service) Close() error {
	if c, ok := s.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// loadDemand fetches the half-hourly regional demand series and apportions
// it over the grid's polygons.
func loadDemand(ctx context.Context, source string, grid *topology.Grid) (*demand.Matrix, error) {
	r, err := openSource(ctx, source)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	hourly, err := demand.ReadHalfHourly(r, len(grid.Regions()))
	if err != nil {
		return nil, err
	}
	return demand.Apportion(hourly, grid)
}

func openSource(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
		}
		return resp.Body, nil
	}
	return os.Open(source)
}
