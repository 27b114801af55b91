package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwheeler/gridsim/core/costs"
	"github.com/mwheeler/gridsim/core/fitness"
	"github.com/mwheeler/gridsim/core/generator"
	"github.com/mwheeler/gridsim/core/topology"
	"github.com/mwheeler/gridsim/core/trace"
)

// BuildGrid constructs the polygon grid from the topology section.
func (c *Config) BuildGrid() (*topology.Grid, error) {
	regions := make([]*topology.Region, 0, len(c.Topology.Regions))
	for i, rc := range c.Topology.Regions {
		shares := make(map[topology.Polygon]float64, len(rc.Polygons))
		for _, ps := range rc.Polygons {
			shares[topology.Polygon(ps.Polygon)] = ps.Share
		}
		regions = append(regions, &topology.Region{
			Num:    i,
			ID:     rc.ID,
			Descr:  rc.Descr,
			Centre: topology.LatLong{Lat: rc.Lat, Long: rc.Long},
			Shares: shares,
		})
	}
	links := make([]topology.Edge, 0, len(c.Topology.Links))
	for _, l := range c.Topology.Links {
		links = append(links, topology.Edge{
			From: topology.Polygon(l[0]),
			To:   topology.Polygon(l[1]),
		})
	}
	return topology.New(regions, links)
}

// BuildFleet constructs the generator fleet in list order. Trace-driven
// generators fetch their hourly traces through the cache; generators that
// name the same tank share one hydrogen store.
func (c *Config) BuildFleet(ctx context.Context, cache *trace.Cache) ([]generator.Generator, error) {
	tanks := make(map[string]*generator.HydrogenTank)
	tank := func(g GeneratorConfig) *generator.HydrogenTank {
		name := g.Tank
		if name == "" {
			name = g.Label
		}
		t, ok := tanks[name]
		if !ok {
			t = generator.NewHydrogenTank(g.TankMWh, name)
			tanks[name] = t
		}
		return t
	}

	fleet := make([]generator.Generator, 0, len(c.Fleet))
	for i, g := range c.Fleet {
		gen, err := buildGenerator(ctx, g, cache, tank)
		if err != nil {
			return nil, fmt.Errorf("fleet entry %d (%s): %w", i, g.Label, err)
		}
		fleet = append(fleet, gen)
	}
	return fleet, nil
}

func buildGenerator(ctx context.Context, g GeneratorConfig, cache *trace.Cache,
	tank func(GeneratorConfig) *generator.HydrogenTank) (generator.Generator, error) {

	poly := topology.Polygon(g.Polygon)
	capMW := g.CapacityMW

	series := func() ([]float64, error) {
		if g.Trace == "" {
			return nil, fmt.Errorf("no trace source")
		}
		return cache.Series(ctx, g.Trace, g.Column)
	}

	var gen generator.Generator
	switch strings.ToLower(g.Type) {
	case "wind":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewWind(poly, capMW, s, g.Label)
	case "windoffshore", "wind-offshore":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewWindOffshore(poly, capMW, s, g.Label)
	case "pv":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewPV(poly, capMW, s, g.Label)
	case "pv1axis", "pv-1axis":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewPV1Axis(poly, capMW, s, g.Label)
	case "behindmeterpv", "behind-meter-pv":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewBehindMeterPV(poly, capMW, s, g.Label)
	case "geothermalhsa", "geothermal-hsa":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewGeothermalHSA(poly, capMW, s, g.Label)
	case "geothermalegs", "geothermal-egs":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewGeothermalEGS(poly, capMW, s, g.Label)
	case "cst":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewCST(poly, capMW, g.SolarMultiple, g.StorageHours, s, g.Label)
	case "parabolictrough", "parabolic-trough":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewParabolicTrough(poly, capMW, g.SolarMultiple, g.StorageHours, s, g.Label)
	case "centralreceiver", "central-receiver":
		s, err := series()
		if err != nil {
			return nil, err
		}
		gen = generator.NewCentralReceiver(poly, capMW, g.SolarMultiple, g.StorageHours, s, g.Label)
	case "hydro":
		gen = generator.NewHydro(poly, capMW, g.Label)
	case "pumpedhydro", "pumped-hydro":
		rte := g.RTE
		if rte == 0 {
			rte = 0.8
		}
		gen = generator.NewPumpedHydro(poly, capMW, g.StorageMWh, rte, g.Label)
	case "battery":
		rte := g.RTE
		if rte == 0 {
			rte = 0.95
		}
		gen = generator.NewBattery(poly, capMW, g.StorageMWh, g.DischargeHours, rte, g.Label)
	case "biofuel":
		gen = generator.NewBiofuel(poly, capMW, g.Label)
	case "biomass":
		gen = generator.NewBiomass(poly, capMW, g.HeatRate, g.Label)
	case "greenpower", "green-power":
		gen = generator.NewGreenPower(poly, capMW, g.Label)
	case "blackcoal", "black-coal":
		gen = generator.NewBlackCoal(poly, capMW, g.Intensity, g.Label)
	case "ocgt":
		gen = generator.NewOCGT(poly, capMW, g.Intensity, g.Label)
	case "ccgt":
		gen = generator.NewCCGT(poly, capMW, g.Intensity, g.Label)
	case "coalccs", "coal-ccs":
		gen = generator.NewCoalCCS(poly, capMW, g.Intensity, g.Capture, g.Label)
	case "ccgtccs", "ccgt-ccs":
		gen = generator.NewCCGTCCS(poly, capMW, g.Intensity, g.Capture, g.Label)
	case "diesel":
		gen = generator.NewDiesel(poly, capMW, g.Intensity, g.KWhPerLitre, g.Label)
	case "demandresponse", "demand-response":
		gen = generator.NewDemandResponse(poly, capMW, g.CostPerMWh, g.Label)
	case "electrolyser":
		eff := g.Efficiency
		if eff == 0 {
			eff = 0.8
		}
		e, err := generator.NewElectrolyser(tank(g), poly, capMW, eff, g.Label)
		if err != nil {
			return nil, err
		}
		gen = e
	case "hydrogengt", "hydrogen-gt":
		eff := g.Efficiency
		if eff == 0 {
			eff = 0.36
		}
		h, err := generator.NewHydrogenGT(tank(g), poly, capMW, eff, g.Label)
		if err != nil {
			return nil, err
		}
		gen = h
	default:
		return nil, fmt.Errorf("unknown generator type %q", g.Type)
	}

	if g.BuildLimitGW > 0 {
		if lim, ok := gen.(interface{ LimitBuild(float64) }); ok {
			lim.LimitBuild(g.BuildLimitGW)
		}
	}
	return gen, nil
}

// BuildCosts selects and parameterizes the cost tables.
func (c *Config) BuildCosts() (*costs.Tables, error) {
	cc := c.Costs
	switch strings.ToLower(cc.Tables) {
	case "", "null":
		return costs.NullCosts(), nil
	case "apgtr2015":
		t := costs.APGTR2015(cc.Discount, cc.CoalGJ, cc.GasGJ, cc.CCSPerT)
		t.Carbon = cc.CarbonT
		return t, nil
	case "apgtr2030":
		t := costs.APGTR2030(cc.Discount, cc.CoalGJ, cc.GasGJ, cc.CCSPerT)
		t.Carbon = cc.CarbonT
		return t, nil
	default:
		return nil, fmt.Errorf("unknown cost tables %q", cc.Tables)
	}
}

// BuildLimits converts the limits section to planning limits. Zero-valued
// fields disable their limit.
func (c *Config) BuildLimits() fitness.Limits {
	l := fitness.NoLimits()
	lc := c.Limits
	if lc.EmissionsLimitMt > 0 {
		l.EmissionsLimitMt = lc.EmissionsLimitMt
	}
	if lc.FossilFraction > 0 {
		l.FossilFraction = lc.FossilFraction
	}
	if lc.BioenergyLimitTWh > 0 {
		l.BioenergyLimitTWh = lc.BioenergyLimitTWh
	}
	if lc.HydroLimitTWh > 0 {
		l.HydroLimitTWh = lc.HydroLimitTWh
	}
	if lc.ReservesMW > 0 {
		l.ReservesMW = lc.ReservesMW
	}
	if lc.MinRegionalFraction > 0 {
		l.MinRegionalFraction = lc.MinRegionalFraction
	}
	return l
}
