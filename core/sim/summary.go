package sim

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TotalDemand returns the total scoped demand energy of the last run in
// MWh, or the full trace total if the context has not run yet.
func (c *Context) TotalDemand() float64 {
	if c.scopedDemand != nil {
		return c.scopedDemand.Total()
	}
	if c.Demand != nil {
		return c.Demand.Total()
	}
	return 0
}

// UnservedEnergy returns the total unserved energy in MWh.
func (c *Context) UnservedEnergy() float64 {
	var sum float64
	for _, s := range c.Unserved {
		sum += s.MW
	}
	return sum
}

// SurplusEnergy returns the total spilled energy not absorbed by storage,
// in MWh.
func (c *Context) SurplusEnergy() float64 {
	if c.Spill == nil {
		return 0
	}
	return mat.Sum(c.Spill)
}

// UnservedPercent returns unserved energy as a percentage of total demand,
// or NaN when there is no demand.
func (c *Context) UnservedPercent() float64 {
	total := c.TotalDemand()
	if total == 0 {
		return math.NaN()
	}
	return c.UnservedEnergy() / total * 100
}

// UnservedEvents counts runs of consecutive unserved hours.
func (c *Context) UnservedEvents() int {
	events := 0
	prev := -2
	for _, s := range c.Unserved {
		if s.Hour != prev+1 {
			events++
		}
		prev = s.Hour
	}
	return events
}

// ShortfallBounds returns the smallest and largest hourly shortfall in MW.
func (c *Context) ShortfallBounds() (min, max float64) {
	if len(c.Unserved) == 0 {
		return 0, 0
	}
	min, max = c.Unserved[0].MW, c.Unserved[0].MW
	for _, s := range c.Unserved[1:] {
		min = math.Min(min, s.MW)
		max = math.Max(max, s.MW)
	}
	return min, max
}

// MeanShortfall returns the mean hourly shortfall in MW, or 0 when every
// hour was served.
func (c *Context) MeanShortfall() float64 {
	if len(c.Unserved) == 0 {
		return 0
	}
	mws := make([]float64, len(c.Unserved))
	for i, s := range c.Unserved {
		mws[i] = s.MW
	}
	return stat.Mean(mws, nil)
}

// Summary renders a human-readable account of the last run.
func (c *Context) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n", c.RunID)
	fmt.Fprintf(&b, "Demand energy: %s\n", fmtEnergy(c.TotalDemand()))
	fmt.Fprintf(&b, "Unused surplus energy: %s\n", fmtEnergy(c.SurplusEnergy()))
	if len(c.Unserved) == 0 {
		b.WriteString("No unserved energy")
		return b.String()
	}
	fmt.Fprintf(&b, "Unserved energy: %.3f%%\n", c.UnservedPercent())
	if c.UnservedPercent() > c.RelStd*1.001 {
		b.WriteString("WARNING: reliability standard exceeded\n")
	}
	fmt.Fprintf(&b, "Unserved total hours: %d\n", len(c.Unserved))
	fmt.Fprintf(&b, "Number of unserved energy events: %d\n", c.UnservedEvents())
	minShort, maxShort := c.ShortfallBounds()
	fmt.Fprintf(&b, "Shortfalls (min, mean, max): (%.1f MW, %.1f MW, %.1f MW)",
		minShort, c.MeanShortfall(), maxShort)
	return b.String()
}

// FleetSummary renders one line per generator: supplied energy, capacity
// factor, surplus and run hours where the variant tracks them.
func (c *Context) FleetSummary() string {
	var b strings.Builder
	for i, g := range c.Generators {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: supplied %s", g.Label(), fmtEnergy(g.SuppliedEnergy()))
		if cf := g.CapacityFactor(); !math.IsNaN(cf) && cf > 0 {
			fmt.Fprintf(&b, ", CF %.1f%%", cf*100)
		}
		if spilled := g.SpilledEnergy(); spilled > 0 {
			fmt.Fprintf(&b, ", surplus %s", fmtEnergy(spilled))
		}
		if rh, ok := g.(interface{ RunHours() int }); ok {
			fmt.Fprintf(&b, ", ran %d hours", rh.RunHours())
		}
	}
	return b.String()
}

// fmtEnergy renders an MWh quantity with a compact unit.
func fmtEnergy(mwh float64) string {
	switch {
	case math.Abs(mwh) >= 1e6:
		return fmt.Sprintf("%.1f TWh", mwh/1e6)
	case math.Abs(mwh) >= 1e3:
		return fmt.Sprintf("%.1f GWh", mwh/1e3)
	default:
		return fmt.Sprintf("%.1f MWh", mwh)
	}
}
