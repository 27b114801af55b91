package generator

import (
	"fmt"
	"math"

	"github.com/mwheeler/gridsim/core/topology"
)

// CST is a concentrating solar thermal plant with integral thermal
// storage. Each hour the field produces trace[hour] x capacity x solar
// multiple of thermal input; surplus above the instantaneous demand is
// banked (clipped at the store capacity) and shortfalls are covered from
// the store. Delivered power never exceeds demand.
type CST struct {
	base
	trace      []float64
	multiple   float64 // solar multiple
	hours      float64 // storage duration at full output
	maxStorage float64
	stored     float64
}

func newCST(tech Tech, polygon topology.Polygon, capacity, multiple, hours float64, trace []float64, label string) *CST {
	g := &CST{
		base:     newBase(tech, polygon, capacity, label, true),
		trace:    trace,
		multiple: multiple,
	}
	g.SetStorageHours(hours)
	g.setters = []Setter{{Set: g.SetCapacityGW, Min: 0, Max: maxBuildGW}}
	return g
}

// NewCST returns a generic CST plant.
func NewCST(polygon topology.Polygon, capacity, multiple, hours float64, trace []float64, label string) *CST {
	return newCST(TechCST, polygon, capacity, multiple, hours, trace, label)
}

// NewParabolicTrough returns a parabolic trough CST plant.
func NewParabolicTrough(polygon topology.Polygon, capacity, multiple, hours float64, trace []float64, label string) *CST {
	return newCST(TechParabolicTrough, polygon, capacity, multiple, hours, trace, label)
}

// NewCentralReceiver returns a central receiver CST plant.
func NewCentralReceiver(polygon topology.Polygon, capacity, multiple, hours float64, trace []float64, label string) *CST {
	return newCST(TechCentralReceiver, polygon, capacity, multiple, hours, trace, label)
}

// SetCapacityGW changes the plant capacity, scaling the thermal store with
// it.
func (g *CST) SetCapacityGW(capGW float64) {
	g.SetCapacity(capGW)
	g.maxStorage = g.capacity * g.hours
}

// SetMultiple changes the solar multiple.
func (g *CST) SetMultiple(multiple float64) {
	g.multiple = multiple
}

// SetStorageHours changes the storage duration and re-seeds the store at
// half charge.
func (g *CST) SetStorageHours(hours float64) {
	g.hours = hours
	g.maxStorage = g.capacity * hours
	g.stored = 0.5 * g.maxStorage
}

// Multiple returns the solar multiple.
func (g *CST) Multiple() float64 { return g.multiple }

// StorageHours returns the storage duration in hours.
func (g *CST) StorageHours() float64 { return g.hours }

// Stored returns the banked thermal energy in MWh.
func (g *CST) Stored() float64 { return g.stored }

// Step produces demand-matched output, banking surplus thermal input and
// drawing down the store to cover shortfalls.
func (g *CST) Step(hour int, demand float64) (float64, float64) {
	if hour < 0 || hour >= len(g.trace) {
		panic(fmt.Sprintf("generator %s: hour %d outside trace of %d entries", g.label, hour, len(g.trace)))
	}
	generation := g.trace[hour] * g.capacity * g.multiple
	remainder := math.Min(g.capacity, demand)
	if generation > remainder {
		toStorage := generation - remainder
		generation -= toStorage
		g.stored = math.Min(g.stored+toStorage, g.maxStorage)
	} else {
		fromStorage := math.Min(remainder-generation, g.stored)
		generation += fromStorage
		g.stored -= fromStorage
	}
	if g.stored < -Tolerance || g.stored > g.maxStorage+Tolerance {
		panic(fmt.Sprintf("generator %s: thermal store out of bounds: %.6f of %.6f MWh", g.label, g.stored, g.maxStorage))
	}
	g.stored = math.Max(0, math.Min(g.stored, g.maxStorage))
	g.power[hour] = generation
	g.spilled[hour] = 0

	// rounding can push generation a hair over demand
	generation = math.Min(generation, demand)
	return generation, 0
}

// Reset clears the series and re-seeds the store at half charge.
func (g *CST) Reset() {
	g.reset()
	g.stored = 0.5 * g.maxStorage
}
