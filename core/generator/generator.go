// Package generator implements the simulated generator and storage state
// machines dispatched by the engine. Each variant implements Step and
// Reset; storage-capable variants additionally implement Storer. The
// numeric invariants (power within offered demand, stored energy within
// bounds) are enforced with a small tolerance and violations beyond it
// panic: they signal a composition defect, not a runtime condition.
package generator

import (
	"fmt"

	"github.com/mwheeler/gridsim/core/topology"
)

// Tolerance is the absolute tolerance applied to floating point
// comparisons throughout the simulation.
const Tolerance = 1e-6

// Generator is the polymorphic operation set shared by every variant.
// Step offers demand for one hour and returns the power delivered and the
// power spilled. Hours must be stepped in chronological order because
// storage-backed variants carry state forward.
type Generator interface {
	Label() string
	Tech() Tech
	Polygon() topology.Polygon
	Capacity() float64
	// Synchronous reports whether the generator is a rotating machine.
	// Non-synchronous generation is subject to the penetration limit.
	Synchronous() bool
	Step(hour int, demand float64) (power, spilled float64)
	Reset()
	// SeriesPower and SeriesSpilled expose the per-hour series written by
	// Step, keyed by hour. Read-only for reporting and penalty functions.
	SeriesPower() map[int]float64
	SeriesSpilled() map[int]float64
	// SuppliedEnergy and SpilledEnergy total the series in MWh;
	// CapacityFactor is the fraction of nameplate output delivered over
	// the stepped hours.
	SuppliedEnergy() float64
	SpilledEnergy() float64
	CapacityFactor() float64
	// Setters returns the capacity-like parameters an optimizer may vary,
	// in a fixed order.
	Setters() []Setter
}

// Storer is the orthogonal storage capability composed into variants that
// can absorb spilled energy. Store offers power for one hour and returns
// the pre-loss amount accepted.
type Storer interface {
	Store(hour int, power float64) float64
}

// Setter is one optimizer-adjustable parameter with its bounds. Set is
// called with a value in GW (or GWh for storage parameters).
type Setter struct {
	Set      func(value float64)
	Min, Max float64
}

// maxBuildGW is the default upper bound on a capacity setter.
const maxBuildGW = 40

// base carries the state common to all generator variants.
type base struct {
	label       string
	tech        Tech
	polygon     topology.Polygon
	capacity    float64 // MW
	synchronous bool
	power       map[int]float64
	spilled     map[int]float64
	setters     []Setter
}

func newBase(tech Tech, polygon topology.Polygon, capacity float64, label string, synchronous bool) base {
	if label == "" {
		label = tech.String()
	}
	b := base{
		label:       label,
		tech:        tech,
		polygon:     polygon,
		capacity:    capacity,
		synchronous: synchronous,
		power:       make(map[int]float64),
		spilled:     make(map[int]float64),
	}
	return b
}

func (b *base) Label() string                  { return b.label }
func (b *base) Tech() Tech                     { return b.tech }
func (b *base) Polygon() topology.Polygon      { return b.polygon }
func (b *base) Capacity() float64              { return b.capacity }
func (b *base) Synchronous() bool              { return b.synchronous }
func (b *base) SeriesPower() map[int]float64   { return b.power }
func (b *base) SeriesSpilled() map[int]float64 { return b.spilled }
func (b *base) Setters() []Setter              { return b.setters }

// SetCapacity changes the generator capacity to cap GW.
func (b *base) SetCapacity(capGW float64) {
	b.capacity = capGW * 1000
}

func (b *base) reset() {
	clear(b.power)
	clear(b.spilled)
}

// SuppliedEnergy returns the total energy delivered so far in MWh.
func (b *base) SuppliedEnergy() float64 {
	var sum float64
	for _, p := range b.power {
		sum += p
	}
	return sum
}

// SpilledEnergy returns the total energy spilled so far in MWh.
func (b *base) SpilledEnergy() float64 {
	var sum float64
	for _, s := range b.spilled {
		sum += s
	}
	return sum
}

// CapacityFactor returns the capacity factor over the stepped hours as a
// fraction, or NaN before any dispatch.
func (b *base) CapacityFactor() float64 {
	hours := len(b.power)
	if hours == 0 || b.capacity == 0 {
		return nan()
	}
	return b.SuppliedEnergy() / (b.capacity * float64(hours))
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func (b *base) String() string {
	return fmt.Sprintf("%s (polygon %d), %.0f MW", b.label, b.polygon, b.capacity)
}
