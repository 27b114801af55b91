package generator

import (
	"math"

	"github.com/mwheeler/gridsim/core/topology"
)

// Default greenhouse gas intensities in tonnes CO2-e per MWh.
const (
	DefaultBlackCoalIntensity = 0.773
	DefaultOCGTIntensity      = 0.7
	DefaultCCGTIntensity      = 0.4
	DefaultCoalCCSIntensity   = 0.8
	DefaultCCGTCCSIntensity   = 0.4
	DefaultDieselIntensity    = 1.0

	// DefaultCCSCapture is the default capture fraction for CCS plant.
	DefaultCCSCapture = 0.85
)

// Emitter is implemented by generators with a greenhouse gas intensity.
type Emitter interface {
	Intensity() float64
}

// CarbonCapturer is implemented by CCS generators.
type CarbonCapturer interface {
	CaptureFraction() float64
}

// Fuelled is a fully dispatchable generator limited only by its capacity.
// It tracks cumulative run-hours.
type Fuelled struct {
	base
	runHours int
}

func newFuelled(tech Tech, polygon topology.Polygon, capacity float64, label string) Fuelled {
	g := Fuelled{base: newBase(tech, polygon, capacity, label, true)}
	return g
}

// NewBiofuel returns an open-cycle gas turbine burning biofuel.
func NewBiofuel(polygon topology.Polygon, capacity float64, label string) *Fuelled {
	g := newFuelled(TechBiofuel, polygon, capacity, label)
	g.setters = []Setter{{Set: g.SetCapacity, Min: 0, Max: maxBuildGW}}
	return &g
}

// NewGreenPower returns a generic zero-emission dispatchable block.
func NewGreenPower(polygon topology.Polygon, capacity float64, label string) *Fuelled {
	g := newFuelled(TechGreenPower, polygon, capacity, label)
	g.setters = []Setter{{Set: g.SetCapacity, Min: 0, Max: maxBuildGW}}
	return &g
}

// NewHydro returns a run-of-river hydro station. Hydro is not expandable,
// so the build limit is pinned at the installed capacity.
func NewHydro(polygon topology.Polygon, capacity float64, label string) *Fuelled {
	g := newFuelled(TechHydro, polygon, capacity, label)
	g.setters = []Setter{{Set: g.SetCapacity, Min: 0, Max: capacity / 1000}}
	return &g
}

// RunHours returns the number of hours the generator ran.
func (g *Fuelled) RunHours() int { return g.runHours }

// Step delivers min(capacity, demand). Fuelled generators never spill.
func (g *Fuelled) Step(hour int, demand float64) (float64, float64) {
	power := math.Min(g.capacity, demand)
	if power > 0 {
		g.runHours++
	}
	g.power[hour] = power
	return power, 0
}

// Reset clears the dispatch series and run-hour count.
func (g *Fuelled) Reset() {
	g.reset()
	g.runHours = 0
}

// Biomass is a steam turbine burning solid biomass. The heat rate feeds
// the fuel component of its variable cost.
type Biomass struct {
	Fuelled
	heatRate float64
}

// NewBiomass returns a biomass steam turbine with the given heat rate.
func NewBiomass(polygon topology.Polygon, capacity, heatRate float64, label string) *Biomass {
	g := &Biomass{
		Fuelled:  newFuelled(TechBiomass, polygon, capacity, label),
		heatRate: heatRate,
	}
	g.setters = []Setter{{Set: g.SetCapacity, Min: 0, Max: maxBuildGW}}
	return g
}

// HeatRate returns the thermal efficiency of the plant.
func (g *Biomass) HeatRate() float64 { return g.heatRate }

// Fossil is a fuelled generator with a greenhouse gas intensity.
type Fossil struct {
	Fuelled
	intensity float64
}

func newFossil(tech Tech, polygon topology.Polygon, capacity, intensity float64, label string) Fossil {
	g := Fossil{
		Fuelled:   newFuelled(tech, polygon, capacity, label),
		intensity: intensity,
	}
	g.setters = []Setter{{Set: g.SetCapacity, Min: 0, Max: maxBuildGW}}
	return g
}

// Intensity returns the emissions intensity in t CO2-e/MWh.
func (g *Fossil) Intensity() float64 { return g.intensity }

// NewBlackCoal returns a black coal station without CCS.
func NewBlackCoal(polygon topology.Polygon, capacity, intensity float64, label string) *Fossil {
	g := newFossil(TechBlackCoal, polygon, capacity, intensity, label)
	return &g
}

// NewOCGT returns an open-cycle gas turbine.
func NewOCGT(polygon topology.Polygon, capacity, intensity float64, label string) *Fossil {
	g := newFossil(TechOCGT, polygon, capacity, intensity, label)
	return &g
}

// NewCCGT returns a combined-cycle gas turbine.
func NewCCGT(polygon topology.Polygon, capacity, intensity float64, label string) *Fossil {
	g := newFossil(TechCCGT, polygon, capacity, intensity, label)
	return &g
}

// Diesel is a diesel genset; litres burned per MWh feed its variable cost.
type Diesel struct {
	Fossil
	kwhPerLitre float64
}

// NewDiesel returns a diesel genset.
func NewDiesel(polygon topology.Polygon, capacity, intensity, kwhPerLitre float64, label string) *Diesel {
	return &Diesel{
		Fossil:      newFossil(TechDiesel, polygon, capacity, intensity, label),
		kwhPerLitre: kwhPerLitre,
	}
}

// KWhPerLitre returns the genset fuel efficiency.
func (g *Diesel) KWhPerLitre() float64 { return g.kwhPerLitre }

// CCS is a fossil generator with carbon capture and storage.
type CCS struct {
	Fossil
	capture float64
}

// CaptureFraction returns the fraction of emissions captured, in [0,1].
func (g *CCS) CaptureFraction() float64 { return g.capture }

// NewCoalCCS returns a coal station with CCS.
func NewCoalCCS(polygon topology.Polygon, capacity, intensity, capture float64, label string) *CCS {
	return &CCS{
		Fossil:  newFossil(TechCoalCCS, polygon, capacity, intensity, label),
		capture: capture,
	}
}

// NewCCGTCCS returns a CCGT with CCS.
func NewCCGTCCS(polygon topology.Polygon, capacity, intensity, capture float64, label string) *CCS {
	return &CCS{
		Fossil:  newFossil(TechCCGTCCS, polygon, capacity, intensity, label),
		capture: capture,
	}
}

// DemandResponse sheds curtailable load at a given opportunity cost. It is
// dispatched as a pseudo-generator; the cost is consumed only by the
// economic layer.
type DemandResponse struct {
	base
	runHours    int
	maxResponse float64
	costPerMWh  float64
}

// NewDemandResponse returns a curtailable load block.
func NewDemandResponse(polygon topology.Polygon, capacity, costPerMWh float64, label string) *DemandResponse {
	return &DemandResponse{
		base:       newBase(TechDemandResponse, polygon, capacity, label, true),
		costPerMWh: costPerMWh,
	}
}

// CostPerMWh returns the opportunity cost of shedding load.
func (g *DemandResponse) CostPerMWh() float64 { return g.costPerMWh }

// MaxResponse returns the largest single-hour response so far.
func (g *DemandResponse) MaxResponse() float64 { return g.maxResponse }

// RunHours returns the number of hours load was shed.
func (g *DemandResponse) RunHours() int { return g.runHours }

// Step sheds min(capacity, demand) of load.
func (g *DemandResponse) Step(hour int, demand float64) (float64, float64) {
	power := math.Min(g.capacity, demand)
	g.maxResponse = math.Max(g.maxResponse, power)
	g.power[hour] = power
	g.spilled[hour] = 0
	if power > 0 {
		g.runHours++
	}
	return power, 0
}

// Reset clears the dispatch series and response accounting.
func (g *DemandResponse) Reset() {
	g.reset()
	g.runHours = 0
	g.maxResponse = 0
}
