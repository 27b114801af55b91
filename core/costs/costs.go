// Package costs holds the passive technology cost tables consumed when
// producing post-hoc economic summaries. The dispatch engine never calls
// into this package during simulation.
package costs

import (
	"math"

	"github.com/mwheeler/gridsim/core/generator"
)

// AnnuityFactor returns the annuity factor for a lifetime of t years at
// interest rate r.
func AnnuityFactor(t int, r float64) float64 {
	return (1 - 1/math.Pow(1+r, float64(t))) / r
}

// TxCost is the transmission cost expression in $/MW/km for a given
// capacity.
func TxCost(mw float64) float64 {
	switch {
	case mw == 0:
		return 0
	case mw > 5000:
		return 965
	default:
		return 16319 * math.Pow(mw, -0.332)
	}
}

// Tables is one set of technology cost assumptions. Lookup tables default
// to zero for technologies they do not list.
type Tables struct {
	CapCostPerKW  map[generator.Tech]float64
	FixedOMPerKW  map[generator.Tech]float64
	OpCostPerMWh  map[generator.Tech]float64
	AnnuityFactor float64

	CCSStoragePerT      float64
	BioenergyPricePerGJ float64
	CoalPricePerGJ      float64
	GasPricePerGJ       float64
	DieselPricePerLitre float64
	// Carbon is the carbon price in $/t CO2-e.
	Carbon float64
}

// NullCosts returns all-zero tables, useful for debugging and tests.
func NullCosts() *Tables {
	return &Tables{
		CapCostPerKW:  map[generator.Tech]float64{},
		FixedOMPerKW:  map[generator.Tech]float64{},
		OpCostPerMWh:  map[generator.Tech]float64{},
		AnnuityFactor: 1,
	}
}

// APGTR2015 returns Australian Power Generation Technology Report (2015)
// costs, given a discount rate and coal, gas and CCS storage prices.
func APGTR2015(discount, coalPrice, gasPrice, ccsPrice float64) *Tables {
	const lifetime = 30
	t := &Tables{
		CapCostPerKW: map[generator.Tech]float64{
			generator.TechWind:            2450,
			generator.TechCentralReceiver: 8500,
			generator.TechPV:              2100,
			generator.TechPV1Axis:         2700,
			generator.TechCCGT:            1450,
			generator.TechOCGT:            1000,
			generator.TechBlackCoal:       3000,
			generator.TechBiofuel:         1000, // same as OCGT
		},
		FixedOMPerKW: map[generator.Tech]float64{
			generator.TechWind:            55,
			generator.TechCentralReceiver: 65,
			generator.TechPV:              30,
			generator.TechPV1Axis:         35,
			generator.TechCCGT:            20,
			generator.TechOCGT:            8,
			generator.TechBlackCoal:       45,
			generator.TechBiofuel:         8, // same as OCGT
		},
		OpCostPerMWh: map[generator.Tech]float64{
			generator.TechCentralReceiver: 4,
			generator.TechCCGT:            1.5,
			generator.TechOCGT:            12,
			generator.TechBlackCoal:       2.5,
			generator.TechBiofuel:         12, // same as OCGT
		},
		AnnuityFactor:       AnnuityFactor(lifetime, discount),
		CCSStoragePerT:      ccsPrice,
		BioenergyPricePerGJ: 12,
		CoalPricePerGJ:      coalPrice,
		GasPricePerGJ:       gasPrice,
		DieselPricePerLitre: 1.50,
	}
	return t
}

// APGTR2030 returns the 2015 tables projected to 2030 by the report's
// learning rates. Fixed and variable O&M stay at 2015 levels.
func APGTR2030(discount, coalPrice, gasPrice, ccsPrice float64) *Tables {
	t := APGTR2015(discount, coalPrice, gasPrice, ccsPrice)
	cc := t.CapCostPerKW
	cc[generator.TechWind] *= 0.8
	cc[generator.TechCentralReceiver] *= 0.8
	cc[generator.TechPV] *= 0.5
	cc[generator.TechPV1Axis] *= 0.5
	cc[generator.TechCCGT] *= 0.9
	cc[generator.TechOCGT] *= 1.1
	cc[generator.TechBlackCoal] *= 0.9
	cc[generator.TechBiofuel] = cc[generator.TechOCGT]
	return t
}

// Battery capital cost components in $/kW and $/kWh, with fixed O&M in
// $/kW/yr. Per-kWh operating costs are folded into capital.
const (
	batteryPowerCostPerKW   = 400
	batteryEnergyCostPerKWh = 400
	batteryFOMPerKW         = 28
)

// CapCost returns the annualised capital cost of a generator.
func (t *Tables) CapCost(g generator.Generator) float64 {
	if b, ok := g.(*generator.Battery); ok {
		return batteryPowerCostPerKW*b.Capacity()*1000 +
			batteryEnergyCostPerKWh*b.MaxStorage()*1000
	}
	return t.CapCostPerKW[g.Tech()] * g.Capacity() * 1000
}

// FixedOM returns the annual fixed operating and maintenance cost.
func (t *Tables) FixedOM(g generator.Generator) float64 {
	if g.Tech() == generator.TechBattery {
		return batteryFOMPerKW * g.Capacity() * 1000
	}
	return t.FixedOMPerKW[g.Tech()] * g.Capacity() * 1000
}

// VariableCostPerMWh returns the variable cost of one MWh from the
// generator, including fuel and carbon where applicable.
func (t *Tables) VariableCostPerMWh(g generator.Generator) float64 {
	vom := t.OpCostPerMWh[g.Tech()]
	switch v := g.(type) {
	case *generator.DemandResponse:
		return v.CostPerMWh()
	case *generator.Biomass:
		return vom + t.BioenergyPricePerGJ*(3.6/v.HeatRate())
	case *generator.Diesel:
		litresPerMWh := 1000 / v.KWhPerLitre()
		return vom + t.DieselPricePerLitre*litresPerMWh + v.Intensity()*t.Carbon
	case *generator.CCS:
		switch g.Tech() {
		case generator.TechCoalCCS:
			// thermal efficiency 31.4%; residual emissions at 0.103 t/MWh
			return vom + t.CoalPricePerGJ*(3.6/0.314) +
				0.103*t.Carbon +
				v.Intensity()*v.CaptureFraction()*t.CCSStoragePerT
		default:
			// CCGT with CCS, thermal efficiency 43.1%
			return vom + t.GasPricePerGJ*(3.6/0.431) +
				v.Intensity()*(1-v.CaptureFraction())*t.Carbon +
				v.Intensity()*v.CaptureFraction()*t.CCSStoragePerT
		}
	}
	switch g.Tech() {
	case generator.TechBlackCoal:
		return vom + t.CoalPricePerGJ*8.57 + emitterIntensity(g)*t.Carbon
	case generator.TechOCGT:
		return vom + t.GasPricePerGJ*11.61 + emitterIntensity(g)*t.Carbon
	case generator.TechCCGT:
		return vom + t.GasPricePerGJ*6.92 + emitterIntensity(g)*t.Carbon
	case generator.TechBiofuel:
		// 31% heat rate
		return vom + t.BioenergyPricePerGJ*(3.6/0.31)
	case generator.TechBattery:
		return 0
	}
	return vom
}

func emitterIntensity(g generator.Generator) float64 {
	if e, ok := g.(generator.Emitter); ok {
		return e.Intensity()
	}
	return 0
}

// OpCost returns the annual operating cost: fixed O&M plus the variable
// cost of the energy supplied.
func (t *Tables) OpCost(g generator.Generator) float64 {
	return t.FixedOM(g) + g.SuppliedEnergy()*t.VariableCostPerMWh(g)
}

// LCOE returns the levelised cost of the generator's energy in $/MWh over
// the given number of years, or +Inf when it supplied nothing.
func (t *Tables) LCOE(g generator.Generator, years float64) float64 {
	total := t.CapCost(g)/t.AnnuityFactor*years + t.OpCost(g)
	supplied := g.SuppliedEnergy()
	if supplied <= 0 {
		return math.Inf(1)
	}
	return total / supplied
}
