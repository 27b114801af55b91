package generator

import (
	"fmt"
	"math"

	"github.com/mwheeler/gridsim/core/topology"
)

// TraceGenerator is a non-dispatchable generator whose hourly availability
// comes from a normalised production trace: available power in an hour is
// trace[hour] x capacity. Excess above the offered demand is spilled,
// except for technologies that discard it by convention.
type TraceGenerator struct {
	base
	trace        []float64
	discardSpill bool
}

func newTrace(tech Tech, polygon topology.Polygon, capacity float64, trace []float64, label string, synchronous bool) *TraceGenerator {
	g := &TraceGenerator{
		base:  newBase(tech, polygon, capacity, label, synchronous),
		trace: trace,
	}
	g.setters = []Setter{{Set: g.SetCapacity, Min: 0, Max: maxBuildGW}}
	return g
}

// LimitBuild lowers the upper bound of the capacity setter to maxGW.
func (g *TraceGenerator) LimitBuild(maxGW float64) {
	if maxGW < g.setters[0].Max {
		g.setters[0].Max = maxGW
	}
}

// NewWind returns an onshore wind farm driven by the given trace.
func NewWind(polygon topology.Polygon, capacity float64, trace []float64, label string) *TraceGenerator {
	return newTrace(TechWind, polygon, capacity, trace, label, false)
}

// NewWindOffshore returns an offshore wind farm driven by the given trace.
func NewWindOffshore(polygon topology.Polygon, capacity float64, trace []float64, label string) *TraceGenerator {
	return newTrace(TechWindOffshore, polygon, capacity, trace, label, false)
}

// NewPV returns a fixed photovoltaic array driven by the given trace.
func NewPV(polygon topology.Polygon, capacity float64, trace []float64, label string) *TraceGenerator {
	return newTrace(TechPV, polygon, capacity, trace, label, false)
}

// NewPV1Axis returns a single-axis tracking photovoltaic array.
func NewPV1Axis(polygon topology.Polygon, capacity float64, trace []float64, label string) *TraceGenerator {
	return newTrace(TechPV1Axis, polygon, capacity, trace, label, false)
}

// NewBehindMeterPV returns a behind-the-meter photovoltaic array.
func NewBehindMeterPV(polygon topology.Polygon, capacity float64, trace []float64, label string) *TraceGenerator {
	return newTrace(TechBehindMeterPV, polygon, capacity, trace, label, false)
}

// NewGeothermalHSA returns a hot sedimentary aquifer geothermal plant.
// Geothermal traces already account for plant availability, so excess
// generation is discarded rather than spilled.
func NewGeothermalHSA(polygon topology.Polygon, capacity float64, trace []float64, label string) *TraceGenerator {
	g := newTrace(TechGeothermalHSA, polygon, capacity, trace, label, true)
	g.discardSpill = true
	return g
}

// NewGeothermalEGS returns an enhanced geothermal systems plant.
func NewGeothermalEGS(polygon topology.Polygon, capacity float64, trace []float64, label string) *TraceGenerator {
	g := newTrace(TechGeothermalEGS, polygon, capacity, trace, label, true)
	g.discardSpill = true
	return g
}

func (g *TraceGenerator) traceValue(hour int) float64 {
	if hour < 0 || hour >= len(g.trace) {
		panic(fmt.Sprintf("generator %s: hour %d outside trace of %d entries", g.label, hour, len(g.trace)))
	}
	return g.trace[hour]
}

// Step delivers min(available, demand) and spills the remainder.
func (g *TraceGenerator) Step(hour int, demand float64) (float64, float64) {
	available := g.traceValue(hour) * g.capacity
	power := math.Min(available, demand)
	g.power[hour] = power
	if g.discardSpill {
		g.spilled[hour] = 0
		return power, 0
	}
	spilled := available - power
	g.spilled[hour] = spilled
	return power, spilled
}

// Reset clears the dispatch series.
func (g *TraceGenerator) Reset() {
	g.reset()
}
