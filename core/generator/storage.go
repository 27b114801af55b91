package generator

import (
	"fmt"
	"math"

	"github.com/mwheeler/gridsim/core/topology"
)

// noHour marks a last-run tracker as unset.
const noHour = -1

// storageState is the storage trait composed into storage-capable
// variants. It tracks the energy bank, the round-trip efficiency, the
// power already accepted in the current hour (several producers may spill
// into one store within the same hour) and the hour the device last ran,
// used to keep charge and discharge mutually exclusive within an hour.
type storageState struct {
	maxStorage float64 // MWh
	stored     float64 // MWh
	rte        float64
	chargeHour int
	charged    float64 // power accepted so far in chargeHour
	lastRun    int
}

func newStorageState(maxStorage, initial, rte float64) storageState {
	return storageState{
		maxStorage: maxStorage,
		stored:     initial,
		rte:        rte,
		chargeHour: noHour,
		lastRun:    noHour,
	}
}

// Stored returns the energy currently banked in MWh.
func (s *storageState) Stored() float64 { return s.stored }

// MaxStorage returns the energy capacity of the store in MWh.
func (s *storageState) MaxStorage() float64 { return s.maxStorage }

// SOC returns the state of charge as a fraction.
func (s *storageState) SOC() float64 {
	if s.maxStorage == 0 {
		return 0
	}
	return s.stored / s.maxStorage
}

// accept banks up to the offered power for one hour, limited by the rated
// power, the remaining per-hour charge headroom and the remaining energy
// headroom adjusted for round-trip losses. It returns the pre-loss power
// accepted.
func (s *storageState) accept(hour int, offered, ratedPower float64) float64 {
	if s.chargeHour != hour {
		s.chargeHour = hour
		s.charged = 0
	}
	power := math.Min(offered, ratedPower-s.charged)
	power = math.Min(power, (s.maxStorage-s.stored)/s.rte)
	if power <= 0 {
		return 0
	}
	s.stored += power * s.rte
	if s.stored > s.maxStorage {
		// rounding only; anything larger is a defect
		s.check()
		s.stored = s.maxStorage
	}
	s.charged += power
	return power
}

// drain withdraws up to amount from the store and returns the energy
// actually withdrawn.
func (s *storageState) drain(amount float64) float64 {
	delta := math.Min(s.stored, amount)
	s.stored -= delta
	s.check()
	return delta
}

// check panics when the stored energy leaves [0, maxStorage] beyond
// tolerance.
func (s *storageState) check() {
	if s.stored < -Tolerance || s.stored > s.maxStorage+Tolerance {
		panic(fmt.Sprintf("storage out of bounds: %.6f MWh of %.6f MWh", s.stored, s.maxStorage))
	}
	s.stored = math.Max(0, math.Min(s.stored, s.maxStorage))
}

func (s *storageState) resetTo(initial float64) {
	s.stored = initial
	s.chargeHour = noHour
	s.charged = 0
	s.lastRun = noHour
}

// PumpedHydro is a pumped storage hydro plant: a reservoir pair with a
// pump and a turbine sharing one rating. It refuses to pump and generate
// in the same hour.
type PumpedHydro struct {
	base
	storageState
	runHours int
}

// NewPumpedHydro returns a pumped storage hydro plant. Half the water
// starts in the upper reservoir.
func NewPumpedHydro(polygon topology.Polygon, capacity, maxStorage, rte float64, label string) *PumpedHydro {
	g := &PumpedHydro{
		base:         newBase(TechPumpedHydro, polygon, capacity, label, true),
		storageState: newStorageState(maxStorage, maxStorage*0.5, rte),
	}
	// Pumped hydro is not expandable.
	g.setters = []Setter{{Set: g.SetCapacity, Min: 0, Max: capacity / 1000}}
	return g
}

// RunHours returns the number of hours the turbine ran.
func (g *PumpedHydro) RunHours() int { return g.runHours }

// Step generates from the upper reservoir unless the plant pumped this
// hour.
func (g *PumpedHydro) Step(hour int, demand float64) (float64, float64) {
	if g.lastRun == hour {
		return 0, 0
	}
	power := math.Min(g.stored, math.Min(g.capacity, demand))
	g.power[hour] = power
	g.drain(power)
	if power > 0 {
		g.runHours++
		g.lastRun = hour
	}
	return power, 0
}

// Store pumps water uphill for one hour, unless the turbine ran this hour.
func (g *PumpedHydro) Store(hour int, power float64) float64 {
	if g.lastRun == hour {
		return 0
	}
	accepted := g.accept(hour, power, g.capacity)
	if accepted > 0 {
		g.lastRun = hour
	}
	return accepted
}

// Reset empties the series and restores the initial state of charge.
func (g *PumpedHydro) Reset() {
	g.reset()
	g.runHours = 0
	g.resetTo(g.maxStorage * 0.5)
}

// Battery is grid-scale battery storage. Discharge can be restricted to a
// set of hours of the day; charge and discharge are mutually exclusive
// within an hour.
type Battery struct {
	base
	storageState
	dischargeHours [24]bool
	runHours       int
	chargeHours    int
}

// NewBattery returns a battery starting empty. dischargeHours lists the
// hours of day the battery may discharge; nil allows all hours.
func NewBattery(polygon topology.Polygon, capacity, maxStorage float64, dischargeHours []int, rte float64, label string) *Battery {
	g := &Battery{
		base:         newBase(TechBattery, polygon, capacity, label, false),
		storageState: newStorageState(maxStorage, 0, rte),
	}
	if dischargeHours == nil {
		for h := range g.dischargeHours {
			g.dischargeHours[h] = true
		}
	} else {
		for _, h := range dischargeHours {
			g.dischargeHours[((h%24)+24)%24] = true
		}
	}
	g.setters = []Setter{
		{Set: g.SetCapacity, Min: 0, Max: maxBuildGW},
		{Set: g.SetStorage, Min: 0, Max: 10000},
	}
	return g
}

// SetStorage changes the energy capacity to storageGWh and empties the
// battery.
func (g *Battery) SetStorage(storageGWh float64) {
	g.maxStorage = storageGWh * 1000
	g.stored = 0
}

// RunHours returns the number of hours the battery discharged.
func (g *Battery) RunHours() int { return g.runHours }

// ChargeHours returns the number of hours the battery charged.
func (g *Battery) ChargeHours() int { return g.chargeHours }

// Step discharges the battery if the hour of day permits it and the
// battery did not charge this hour.
func (g *Battery) Step(hour int, demand float64) (float64, float64) {
	if !g.dischargeHours[hour%24] {
		return 0, 0
	}
	if g.lastRun == hour {
		return 0, 0
	}
	power := math.Min(g.stored, math.Min(g.capacity, demand))
	g.power[hour] = power
	g.drain(power)
	if power > 0 {
		g.runHours++
		g.lastRun = hour
	}
	return power, 0
}

// Store charges the battery, unless it discharged this hour.
func (g *Battery) Store(hour int, power float64) float64 {
	if g.lastRun == hour {
		return 0
	}
	accepted := g.accept(hour, power, g.capacity)
	if accepted > 0 {
		g.chargeHours++
		g.lastRun = hour
	}
	return accepted
}

// Reset empties the series and the battery.
func (g *Battery) Reset() {
	g.reset()
	g.runHours = 0
	g.chargeHours = 0
	g.resetTo(0)
}
