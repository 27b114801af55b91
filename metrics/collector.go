package metrics

import (
	"math"
	"time"

	"github.com/mwheeler/gridsim/core/sim"
)

// CollectRun converts a finished simulation context into a RunResult.
func CollectRun(c *sim.Context, scenario string, duration time.Duration) RunResult {
	return RunResult{
		RunID:           c.RunID.String(),
		Scenario:        scenario,
		Hours:           c.Demand.Hours(),
		DemandMWh:       c.TotalDemand(),
		UnservedMWh:     c.UnservedEnergy(),
		SurplusMWh:      c.SurplusEnergy(),
		UnservedPercent: c.UnservedPercent(),
		Duration:        duration,
	}
}

// CollectFleet converts the per-generator outcomes of a finished run.
func CollectFleet(c *sim.Context, scenario string) []GeneratorResult {
	res := make([]GeneratorResult, 0, len(c.Generators))
	for _, g := range c.Generators {
		cf := g.CapacityFactor()
		if math.IsNaN(cf) {
			cf = 0
		}
		res = append(res, GeneratorResult{
			RunID:          c.RunID.String(),
			Scenario:       scenario,
			Label:          g.Label(),
			Tech:           g.Tech().String(),
			CapacityMW:     g.Capacity(),
			SuppliedMWh:    g.SuppliedEnergy(),
			SpilledMWh:     g.SpilledEnergy(),
			CapacityFactor: cf,
		})
	}
	return res
}
