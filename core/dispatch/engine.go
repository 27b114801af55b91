// Package dispatch implements the per-hour merit-order allocation engine.
// The engine itself carries no cross-hour state: storage behaviour lives in
// the generator state machines it drives.
package dispatch

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/mwheeler/gridsim/core/generator"
	"github.com/mwheeler/gridsim/core/logger"
	"github.com/mwheeler/gridsim/core/topology"
)

// ExchangeRecorder receives the power transferred along each directed
// polygon edge during dispatch.
type ExchangeRecorder interface {
	AddExchange(hour int, src, dst topology.Polygon, mw float64)
}

// Config configures an Engine for one simulation run.
type Config struct {
	Grid *topology.Grid
	// Scope restricts routing to paths that stay within these regions.
	Scope []*topology.Region
	// Generators in merit order, already filtered to the scoped regions.
	// The engine never reorders this list.
	Generators []generator.Generator
	// NSPLimit is the fraction of an hour's demand that may be served by
	// non-synchronous generation, in [0,1].
	NSPLimit float64
	TrackExchanges bool
	// LoadPolygons lists the polygons carrying demand, used to precompute
	// the connection paths walked during exchange tracking.
	LoadPolygons []topology.Polygon
	Log logger.Logger
}

// Engine allocates one hour of demand at a time across a fixed merit
// order, honouring the non-synchronous penetration limit and redistributing
// spill into storage.
type Engine struct {
	grid     *topology.Grid
	gens     []generator.Generator
	nspLimit float64
	track    bool
	conns    map[topology.Polygon][]topology.Path
	log      logger.Logger
}

// New validates the configuration and precomputes connection paths. Every
// generator must be assigned a polygon when exchange tracking is
// requested.
func New(cfg Config) (*Engine, error) {
	if cfg.Grid == nil {
		return nil, fmt.Errorf("dispatch: nil grid")
	}
	if cfg.NSPLimit < 0 || cfg.NSPLimit > 1 {
		return nil, fmt.Errorf("dispatch: nsp limit %.3f outside [0,1]", cfg.NSPLimit)
	}
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	e := &Engine{
		grid:     cfg.Grid,
		gens:     cfg.Generators,
		nspLimit: cfg.NSPLimit,
		track:    cfg.TrackExchanges,
		log:      log,
	}
	if cfg.TrackExchanges {
		e.conns = make(map[topology.Polygon][]topology.Path)
		for _, g := range cfg.Generators {
			if g.Polygon() == 0 {
				return nil, fmt.Errorf("dispatch: generator %s has no polygon assignment", g.Label())
			}
			if _, done := e.conns[g.Polygon()]; done {
				continue
			}
			e.conns[g.Polygon()] = cfg.Grid.Connections(g.Polygon(), cfg.Scope, cfg.LoadPolygons)
		}
	}
	return e, nil
}

// DispatchHour allocates one hour's demand across the merit order.
// hourDemand is indexed by polygon-1 and is consumed in place as power is
// routed. generation and spill are indexed by merit position. It returns
// the residual unmet demand for the hour.
func (e *Engine) DispatchHour(hour int, hourDemand []float64, residual float64, generation, spill []float64, rec ExchangeRecorder) float64 {
	// asyncCap is the ceiling on the demand that may be met from
	// non-synchronous generation this hour. Non-synchronous generation in
	// excess of it must be spilled.
	asyncCap := residual * e.nspLimit

	for gi, g := range e.gens {
		offered := residual
		if !g.Synchronous() && asyncCap < residual {
			offered = asyncCap
		}
		power, spilled := g.Step(hour, offered)
		if power > offered && !isClose(power, offered) {
			panic(fmt.Sprintf("dispatch: generation (%.4f) > demand (%.4f) for %s", power, offered, g.Label()))
		}
		generation[gi] = power

		if !g.Synchronous() {
			asyncCap -= power
			if asyncCap < 0 && !isClose(asyncCap, 0) {
				panic(fmt.Sprintf("dispatch: async cap %.6f below zero after %s", asyncCap, g.Label()))
			}
			asyncCap = math.Max(0, asyncCap)
		}

		residual -= power
		if residual < 0 && !isClose(residual, 0) {
			panic(fmt.Sprintf("dispatch: residual demand %.6f below zero after %s", residual, g.Label()))
		}
		residual = math.Max(0, residual)

		e.log.Debugf("hour %d: %s generation %.1f spill %.1f residual %.1f async %.1f",
			hour, g.Label(), power, spilled, residual, asyncCap)

		if e.track && rec != nil {
			e.route(hour, g.Polygon(), power, hourDemand, rec)
		}

		if spilled > 0 {
			spill[gi] = e.storeSpills(hour, g, spilled, rec)
		}
	}
	return residual
}

// route distributes delivered power across the precomputed connection
// paths, local delivery first, consuming each destination polygon's
// remaining demand. Multi-hop transfers are recorded on every edge of the
// path.
func (e *Engine) route(hour int, src topology.Polygon, power float64, hourDemand []float64, rec ExchangeRecorder) {
	for _, path := range e.conns[src] {
		if power <= 0 {
			return
		}
		sink := path.Sink(src)
		transfer := math.Min(power, hourDemand[sink-1])
		if transfer <= 0 {
			continue
		}
		if path.Hops() == 0 {
			rec.AddExchange(hour, sink, sink, transfer)
		} else {
			for _, edge := range path {
				rec.AddExchange(hour, edge.From, edge.To, transfer)
			}
		}
		hourDemand[sink-1] -= transfer
		power -= transfer
	}
}

// storeSpills offers spilled power to every other storage-capable
// generator in merit order and returns the remainder, which is curtailed.
// Acceptance order is part of the observable contract: the first store in
// the merit order fills first.
func (e *Engine) storeSpills(hour int, spiller generator.Generator, spl float64, rec ExchangeRecorder) float64 {
	if spl <= 0 {
		panic(fmt.Sprintf("dispatch: storeSpills called with %.6f", spl))
	}
	for _, other := range e.gens {
		if other == spiller {
			continue
		}
		store, ok := other.(generator.Storer)
		if !ok {
			continue
		}
		stored := store.Store(hour, spl)
		spl -= stored
		if spl < 0 {
			if !isClose(spl, 0) {
				panic(fmt.Sprintf("dispatch: spill %.6f below zero after %s", spl, other.Label()))
			}
			spl = 0
		}
		if stored > 0 {
			e.log.Debugf("hour %d: store %s -> %s (%.1f)", hour, spiller.Label(), other.Label(), stored)
			if e.track && rec != nil {
				if path, ok := e.grid.Path(spiller.Polygon(), other.Polygon()); ok {
					for _, edge := range path {
						rec.AddExchange(hour, edge.From, edge.To, stored)
					}
				}
			}
		}
		if spl == 0 {
			break
		}
	}
	return spl
}

func isClose(a, b float64) bool {
	return scalar.EqualWithinAbs(a, b, generator.Tolerance)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
