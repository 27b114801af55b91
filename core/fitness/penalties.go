// Package fitness exposes the simulation as an optimizer fitness surface:
// Evaluate sets candidate capacities, runs a full simulation and scores
// the outcome with cubic penalty terms for violated planning limits.
package fitness

import (
	"math"
	"strings"

	"github.com/mwheeler/gridsim/core/generator"
	"github.com/mwheeler/gridsim/core/sim"
)

// Reason is a bitmask naming which limits a candidate violated.
type Reason uint32

const (
	ReasonUnserved Reason = 1 << iota
	ReasonEmissions
	ReasonFossil
	ReasonBioenergy
	ReasonHydro
	ReasonReserves
	ReasonMinRegional
)

var reasonLabels = []struct {
	bit   Reason
	label string
}{
	{ReasonUnserved, "unserved"},
	{ReasonEmissions, "emissions"},
	{ReasonFossil, "fossil"},
	{ReasonBioenergy, "bioenergy"},
	{ReasonHydro, "hydro"},
	{ReasonReserves, "reserves"},
	{ReasonMinRegional, "min-regional-gen"},
}

func (r Reason) String() string {
	var parts []string
	for _, rl := range reasonLabels {
		if r&rl.bit != 0 {
			parts = append(parts, rl.label)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// twh converts MWh to TWh.
const twh = 1e6

// Limits are the planning constraints applied as penalties. A negative
// value disables the corresponding limit.
type Limits struct {
	// EmissionsLimitMt is the annual emissions budget in Mt CO2-e.
	EmissionsLimitMt float64
	// FossilFraction limits fossil generation to a fraction of demand.
	FossilFraction float64
	// BioenergyLimitTWh limits annual biofuel generation.
	BioenergyLimitTWh float64
	// HydroLimitTWh limits annual hydro generation, pumped hydro excluded.
	HydroLimitTWh float64
	// ReservesMW is the minimum spare capacity plus spill in every hour.
	ReservesMW float64
	// MinRegionalFraction is the minimum share of each region's demand
	// that must be generated within the region.
	MinRegionalFraction float64
}

// NoLimits returns Limits with every constraint disabled.
func NoLimits() Limits {
	return Limits{
		EmissionsLimitMt:    -1,
		FossilFraction:      -1,
		BioenergyLimitTWh:   -1,
		HydroLimitTWh:       -1,
		ReservesMW:          -1,
		MinRegionalFraction: -1,
	}
}

func cubed(x float64) float64 { return x * x * x }

// unservedPenalty penalises unserved energy beyond the reliability
// standard.
func unservedPenalty(c *sim.Context) (float64, Reason) {
	minUse := c.TotalDemand() * (c.RelStd / 100)
	use := math.Max(0, c.UnservedEnergy()-minUse)
	if use <= 0 {
		return 0, 0
	}
	return cubed(use), ReasonUnserved
}

// emissionsPenalty penalises total emissions above the annual budget.
func emissionsPenalty(c *sim.Context, limitMt, years float64) (float64, Reason) {
	var total float64
	for _, g := range c.Generators {
		if e, ok := g.(generator.Emitter); ok {
			total += g.SuppliedEnergy() * e.Intensity()
		}
	}
	exceedance := math.Max(0, total-limitMt*1e6*years)
	if exceedance <= 0 {
		return 0, 0
	}
	return cubed(exceedance), ReasonEmissions
}

// fossilPenalty limits fossil generation to a fraction of annual demand.
func fossilPenalty(c *sim.Context, fraction, years float64) (float64, Reason) {
	var fossil float64
	for _, g := range c.Generators {
		if g.Tech().Fossil() {
			fossil += g.SuppliedEnergy()
		}
	}
	exceedance := math.Max(0, fossil-c.TotalDemand()*fraction*years)
	if exceedance <= 0 {
		return 0, 0
	}
	return cubed(exceedance), ReasonFossil
}

// bioenergyPenalty limits biofuel use.
func bioenergyPenalty(c *sim.Context, limitTWh, years float64) (float64, Reason) {
	var energy float64
	for _, g := range c.Generators {
		if g.Tech() == generator.TechBiofuel {
			energy += g.SuppliedEnergy()
		}
	}
	exceedance := math.Max(0, energy-limitTWh*twh*years)
	if exceedance <= 0 {
		return 0, 0
	}
	return cubed(exceedance), ReasonBioenergy
}

// hydroPenalty limits hydro use, excluding pumped storage.
func hydroPenalty(c *sim.Context, limitTWh, years float64) (float64, Reason) {
	var energy float64
	for _, g := range c.Generators {
		if g.Tech() == generator.TechHydro {
			energy += g.SuppliedEnergy()
		}
	}
	exceedance := math.Max(0, energy-limitTWh*twh*years)
	if exceedance <= 0 {
		return 0, 0
	}
	return cubed(exceedance), ReasonHydro
}

// reservesPenalty requires spare fuelled capacity plus spill to cover the
// reserve margin every hour. Pumped hydro and CST headroom are excluded:
// their spare capacity depends on their store.
func reservesPenalty(c *sim.Context, reservesMW float64) (float64, Reason) {
	var pen float64
	var reason Reason
	for h := 0; h < c.Demand.Hours(); h++ {
		var reserve, spilled float64
		for _, g := range c.Generators {
			spilled += g.SeriesSpilled()[h]
			if g.Tech().Fuelled() && !g.Tech().CST() {
				reserve += g.Capacity() - g.SeriesPower()[h]
			}
		}
		if reserve+spilled < reservesMW {
			reason = ReasonReserves
			pen += cubed(reservesMW - reserve + spilled)
		}
	}
	return pen, reason
}

// minRegionalPenalty requires each scoped region to generate a minimum
// share of its own demand.
func minRegionalPenalty(c *sim.Context, fraction float64) (float64, Reason) {
	var shortfall float64
	for _, r := range c.Regions {
		var regionalDemand float64
		for p := range r.Shares {
			regionalDemand += c.Demand.PolygonTotal(p)
		}
		var regionalGen float64
		for _, g := range c.Generators {
			if rg, ok := c.Grid.RegionOf(g.Polygon()); ok && rg == r {
				regionalGen += g.SuppliedEnergy()
			}
		}
		shortfall += math.Max(0, regionalDemand*fraction-regionalGen)
	}
	if shortfall <= 0 {
		return 0, 0
	}
	return cubed(shortfall), ReasonMinRegional
}
