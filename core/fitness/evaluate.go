package fitness

import (
	"github.com/mwheeler/gridsim/core/costs"
	"github.com/mwheeler/gridsim/core/sim"
)

// Result is one candidate evaluation.
type Result struct {
	// Score is the annualised system cost in $ billion, penalties
	// excluded.
	Score float64
	// Penalty accumulates the cubic penalty terms, in $ billion.
	Penalty float64
	// Reasons names the limits the candidate violated.
	Reasons Reason
	// UnservedPercent is the unserved energy share of the run.
	UnservedPercent float64
}

// hoursPerYear matches the trace-length heuristic used to derive years
// from hours.
const hoursPerYear = 365.25 * 24

func years(hours int) float64 {
	if hours == 8760 || hours == 8784 {
		return 1
	}
	return float64(hours) / hoursPerYear
}

// Evaluate applies a candidate capacity vector, runs a full simulation and
// scores it. A nil caps vector evaluates the context as configured. The
// context exposes no state between successive evaluations beyond what the
// run itself resets.
func Evaluate(c *sim.Context, tables *costs.Tables, limits Limits, caps []float64) (Result, error) {
	if caps != nil {
		if err := c.SetCapacities(caps); err != nil {
			return Result{}, err
		}
	}
	if err := c.Run(); err != nil {
		return Result{}, err
	}

	yrs := years(c.Demand.Hours())
	var cost float64
	for _, g := range c.Generators {
		cost += tables.CapCost(g)/tables.AnnuityFactor*yrs + tables.OpCost(g)
	}

	var penalty float64
	var reasons Reason
	add := func(p float64, r Reason) {
		penalty += p
		reasons |= r
	}
	add(unservedPenalty(c))
	if limits.EmissionsLimitMt >= 0 {
		add(emissionsPenalty(c, limits.EmissionsLimitMt, yrs))
	}
	if limits.FossilFraction >= 0 {
		add(fossilPenalty(c, limits.FossilFraction, yrs))
	}
	if limits.BioenergyLimitTWh >= 0 {
		add(bioenergyPenalty(c, limits.BioenergyLimitTWh, yrs))
	}
	if limits.HydroLimitTWh >= 0 {
		add(hydroPenalty(c, limits.HydroLimitTWh, yrs))
	}
	if limits.ReservesMW >= 0 {
		add(reservesPenalty(c, limits.ReservesMW))
	}
	if limits.MinRegionalFraction >= 0 {
		add(minRegionalPenalty(c, limits.MinRegionalFraction))
	}

	const billion = 1e9
	return Result{
		Score:           cost / billion,
		Penalty:         penalty / billion,
		Reasons:         reasons,
		UnservedPercent: c.UnservedPercent(),
	}, nil
}
