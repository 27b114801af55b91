package sim

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/mwheeler/gridsim/core/dispatch"
	"github.com/mwheeler/gridsim/core/generator"
	"github.com/mwheeler/gridsim/core/topology"
)

// Run simulates every hour of the demand trace.
func (c *Context) Run() error {
	if c.Demand == nil {
		return fmt.Errorf("sim: no demand matrix")
	}
	return c.RunHours(0, c.Demand.Hours())
}

// RunHours simulates the half-open hour range [start, end). Hours are
// processed strictly in order because storage carries state forward.
func (c *Context) RunHours(start, end int) error {
	if len(c.Regions) == 0 {
		return fmt.Errorf("sim: regions is not a proper region list")
	}
	if c.Demand == nil {
		return fmt.Errorf("sim: no demand matrix")
	}
	if start < 0 || end > c.Demand.Hours() || start > end {
		return fmt.Errorf("sim: hour range [%d, %d) outside trace of %d hours", start, end, c.Demand.Hours())
	}
	if c.Demand.Polygons() != c.Grid.NumPolygons() {
		return fmt.Errorf("sim: demand has %d polygons, grid has %d", c.Demand.Polygons(), c.Grid.NumPolygons())
	}

	// Reset generator internal state so repeated runs of one scenario
	// reproduce identical outputs.
	for _, g := range c.Generators {
		g.Reset()
	}

	c.RunID = uuid.New()
	hours := c.Demand.Hours()
	c.Generation = mat.NewDense(hours, len(c.Generators), nil)
	c.Spill = mat.NewDense(hours, len(c.Generators), nil)
	c.Unserved = nil
	c.Exchanges = nil
	if c.TrackExchanges {
		c.Exchanges = NewExchanges(hours, c.Grid.NumPolygons())
	}

	// Work on a copy with out-of-scope polygons zeroed; the input demand
	// matrix stays untouched.
	scoped := c.Demand.Copy()
	for _, r := range c.Grid.Regions() {
		if r.In(c.Regions) {
			continue
		}
		for p := range r.Shares {
			scoped.ZeroPolygon(p)
		}
	}
	c.scopedDemand = scoped

	gens, indices := c.scopedGenerators()

	engine, err := dispatch.New(dispatch.Config{
		Grid:           c.Grid,
		Scope:          c.Regions,
		Generators:     gens,
		NSPLimit:       c.NSPLimit,
		TrackExchanges: c.TrackExchanges,
		LoadPolygons:   c.loadPolygons(),
		Log:            c.Log,
	})
	if err != nil {
		return err
	}

	// The dispatch loop scribbles on this copy as power is routed.
	working := scoped.Copy()
	generation := make([]float64, len(gens))
	spill := make([]float64, len(gens))

	for h := start; h < end; h++ {
		row := working.Row(h)
		residual := floats.Sum(row)
		for i := range generation {
			generation[i], spill[i] = 0, 0
		}
		engine.DispatchHour(h, row, residual, generation, spill, c.Exchanges)
		for i, gi := range indices {
			c.Generation.Set(h, gi, generation[i])
			c.Spill.Set(h, gi, spill[i])
		}
	}

	c.collectUnserved(start, end)
	return nil
}

// scopedGenerators extracts the merit-ordered generators whose polygon
// falls inside the scoped regions, preserving order, along with their
// positions in the full list. Generators without a polygon assignment are
// kept: they are wildcards.
func (c *Context) scopedGenerators() ([]generator.Generator, []int) {
	var gens []generator.Generator
	var indices []int
	for i, g := range c.Generators {
		if g.Polygon() != 0 {
			if r, ok := c.Grid.RegionOf(g.Polygon()); ok && !r.In(c.Regions) {
				continue
			}
		}
		gens = append(gens, g)
		indices = append(indices, i)
	}
	return gens, indices
}

// loadPolygons lists the polygons carrying a non-zero demand share in the
// scoped regions.
func (c *Context) loadPolygons() []topology.Polygon {
	var loads []topology.Polygon
	for _, r := range c.Regions {
		for _, p := range r.Polygons() {
			if r.Shares[p] > 0 {
				loads = append(loads, p)
			}
		}
	}
	return loads
}

// collectUnserved derives the per-hour unserved energy, ignoring
// shortfalls within tolerance of zero.
func (c *Context) collectUnserved(start, end int) {
	for h := start; h < end; h++ {
		short := c.scopedDemand.HourTotal(h) - floats.Sum(c.Generation.RawRowView(h))
		if short <= 0 || scalar.EqualWithinAbs(short, 0, generator.Tolerance) {
			continue
		}
		c.Unserved = append(c.Unserved, Shortfall{Hour: h, MW: short})
	}
}
