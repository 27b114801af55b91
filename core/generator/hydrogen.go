package generator

import (
	"fmt"
	"math"

	"github.com/mwheeler/gridsim/core/topology"
)

// HydrogenTank is a hydrogen storage vessel shared between an
// electrolyser and a hydrogen turbine. Quantities are thermal MWh.
type HydrogenTank struct {
	label      string
	maxStorage float64
	stored     float64
}

// NewHydrogenTank returns a tank starting half full.
func NewHydrogenTank(maxStorage float64, label string) *HydrogenTank {
	t := &HydrogenTank{label: label}
	t.SetStorage(maxStorage)
	return t
}

// SetStorage changes the tank capacity and refills it to half.
func (t *HydrogenTank) SetStorage(maxStorage float64) {
	t.maxStorage = maxStorage
	t.stored = maxStorage / 2
}

// Stored returns the hydrogen held, in MWh.
func (t *HydrogenTank) Stored() float64 { return t.stored }

// Full reports whether the tank is at capacity.
func (t *HydrogenTank) Full() bool { return t.stored == t.maxStorage }

// Charge adds up to amount to the tank and returns the quantity accepted.
func (t *HydrogenTank) Charge(amount float64) float64 {
	if amount < 0 {
		panic(fmt.Sprintf("hydrogen tank %s: negative charge %.6f", t.label, amount))
	}
	delta := math.Min(t.maxStorage-t.stored, amount)
	t.stored = math.Min(t.maxStorage, t.stored+amount)
	return delta
}

// Discharge removes up to amount from the tank and returns the quantity
// withdrawn.
func (t *HydrogenTank) Discharge(amount float64) float64 {
	if amount < 0 {
		panic(fmt.Sprintf("hydrogen tank %s: negative discharge %.6f", t.label, amount))
	}
	delta := math.Min(t.stored, amount)
	t.stored = math.Max(0, t.stored-amount)
	return delta
}

// Electrolyser consumes surplus electricity to make hydrogen. It is a
// storage-only pseudo-generator: Step never produces power.
type Electrolyser struct {
	base
	tank       *HydrogenTank
	efficiency float64
}

// NewElectrolyser returns an electrolyser feeding the given tank.
func NewElectrolyser(tank *HydrogenTank, polygon topology.Polygon, capacity, efficiency float64, label string) (*Electrolyser, error) {
	if tank == nil {
		return nil, fmt.Errorf("electrolyser %s: nil hydrogen tank", label)
	}
	if efficiency <= 0 || efficiency > 1 {
		return nil, fmt.Errorf("electrolyser %s: efficiency %.4f outside (0, 1]", label, efficiency)
	}
	g := &Electrolyser{
		base:       newBase(TechElectrolyser, polygon, capacity, label, true),
		tank:       tank,
		efficiency: efficiency,
	}
	g.setters = []Setter{
		{Set: g.SetCapacity, Min: 0, Max: maxBuildGW},
		{Set: tank.SetStorage, Min: 0, Max: 10000},
	}
	return g, nil
}

// Step returns zero: an electrolyser is a load, not a generator.
func (g *Electrolyser) Step(hour int, demand float64) (float64, float64) {
	return 0, 0
}

// Store converts offered power to hydrogen, limited by the electrolyser
// rating and the tank headroom. Returns the pre-loss power accepted.
func (g *Electrolyser) Store(hour int, power float64) float64 {
	power = math.Min(power, g.capacity)
	stored := g.tank.Charge(power * g.efficiency)
	return stored / g.efficiency
}

// Reset clears the series and refills the shared tank to half. Resetting
// a shared tank twice is harmless.
func (g *Electrolyser) Reset() {
	g.reset()
	g.tank.SetStorage(g.tank.maxStorage)
}

// HydrogenGT is a combustion turbine burning hydrogen from a shared tank.
type HydrogenGT struct {
	Fuelled
	tank       *HydrogenTank
	efficiency float64
}

// NewHydrogenGT returns a hydrogen turbine drawing on the given tank.
func NewHydrogenGT(tank *HydrogenTank, polygon topology.Polygon, capacity, efficiency float64, label string) (*HydrogenGT, error) {
	if tank == nil {
		return nil, fmt.Errorf("hydrogen GT %s: nil hydrogen tank", label)
	}
	if efficiency <= 0 || efficiency > 1 {
		return nil, fmt.Errorf("hydrogen GT %s: efficiency %.4f outside (0, 1]", label, efficiency)
	}
	g := &HydrogenGT{
		Fuelled:    newFuelled(TechHydrogenGT, polygon, capacity, label),
		tank:       tank,
		efficiency: efficiency,
	}
	g.setters = []Setter{{Set: g.SetCapacity, Min: 0, Max: maxBuildGW}}
	return g, nil
}

// Step burns hydrogen to serve min(capacity, demand), limited by the fuel
// in the tank.
func (g *HydrogenGT) Step(hour int, demand float64) (float64, float64) {
	need := math.Min(g.capacity, demand) / g.efficiency
	power := g.tank.Discharge(need) * g.efficiency
	g.power[hour] = power
	if power > 0 {
		g.runHours++
	}
	return power, 0
}

// Reset clears the series and refills the shared tank to half.
func (g *HydrogenGT) Reset() {
	g.Fuelled.Reset()
	g.tank.SetStorage(g.tank.maxStorage)
}
