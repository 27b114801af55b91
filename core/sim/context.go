// Package sim orchestrates simulation runs: it owns the output arrays,
// drives the dispatch engine over an hour range and derives summary
// statistics. A Context is cheap to recreate and a run leaves no residual
// state behind, so an optimizer may evaluate thousands of candidates
// against fresh or reused contexts.
package sim

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/mwheeler/gridsim/core/demand"
	"github.com/mwheeler/gridsim/core/generator"
	"github.com/mwheeler/gridsim/core/logger"
	"github.com/mwheeler/gridsim/core/topology"
)

// DefaultReliabilityStd is the reliability standard: the tolerable
// unserved energy as a percentage of total demand.
const DefaultReliabilityStd = 0.002

// Shortfall is one hour of unserved energy.
type Shortfall struct {
	Hour int
	MW   float64
}

// Context carries the scenario under simulation and its outputs.
type Context struct {
	Grid *topology.Grid
	// Regions is the scope of the run; demand outside it is zeroed.
	Regions []*topology.Region
	// Generators in merit order. The list order IS the merit order and is
	// never resorted.
	Generators []generator.Generator
	Demand     *demand.Matrix
	// NSPLimit is the non-synchronous penetration limit in [0,1].
	NSPLimit       float64
	TrackExchanges bool
	// RelStd is the reliability standard in percent of total demand.
	RelStd float64
	Log    logger.Logger

	// Outputs, valid after Run.
	RunID        uuid.UUID
	Generation   *mat.Dense // hours x generators
	Spill        *mat.Dense // hours x generators
	Exchanges    *Exchanges // nil unless TrackExchanges
	Unserved     []Shortfall
	scopedDemand *demand.Matrix
}

// New returns a Context covering all regions of the grid with the default
// reliability standard and a unity penetration limit.
func New(grid *topology.Grid, gens []generator.Generator, dem *demand.Matrix) *Context {
	return &Context{
		Grid:       grid,
		Regions:    grid.Regions(),
		Generators: gens,
		Demand:     dem,
		NSPLimit:   1.0,
		RelStd:     DefaultReliabilityStd,
	}
}

// SetCapacities applies a candidate parameter vector by walking each
// generator's setters in order, clamping every value to the setter bounds.
// The vector length must match the total setter count.
func (c *Context) SetCapacities(caps []float64) error {
	n := 0
	for _, g := range c.Generators {
		for _, s := range g.Setters() {
			if n >= len(caps) {
				return fmt.Errorf("sim: capacity vector too short: %d values", len(caps))
			}
			v := caps[n]
			if v < s.Min {
				v = s.Min
			}
			if v > s.Max {
				v = s.Max
			}
			s.Set(v)
			n++
		}
	}
	if n != len(caps) {
		return fmt.Errorf("sim: capacity vector has %d values, want %d", len(caps), n)
	}
	return nil
}

// Exchanges records the power transferred along every directed
// polygon-to-polygon edge used during dispatch, per hour.
type Exchanges struct {
	hours int
	polys int
	data  []float64
}

// NewExchanges returns a zeroed hours x polys x polys exchange array.
func NewExchanges(hours, polys int) *Exchanges {
	return &Exchanges{
		hours: hours,
		polys: polys,
		data:  make([]float64, hours*polys*polys),
	}
}

// AddExchange accumulates a transfer from src to dst in the given hour.
func (e *Exchanges) AddExchange(hour int, src, dst topology.Polygon, mw float64) {
	e.data[hour*e.polys*e.polys+(int(src)-1)*e.polys+(int(dst)-1)] += mw
}

// At returns the power transferred from src to dst in the given hour.
func (e *Exchanges) At(hour int, src, dst topology.Polygon) float64 {
	return e.data[hour*e.polys*e.polys+(int(src)-1)*e.polys+(int(dst)-1)]
}

// NonZero calls fn for every non-zero directed transfer in the given hour.
func (e *Exchanges) NonZero(hour int, fn func(src, dst topology.Polygon, mw float64)) {
	base := hour * e.polys * e.polys
	for s := 0; s < e.polys; s++ {
		for d := 0; d < e.polys; d++ {
			if v := e.data[base+s*e.polys+d]; v != 0 {
				fn(topology.Polygon(s+1), topology.Polygon(d+1), v)
			}
		}
	}
}
