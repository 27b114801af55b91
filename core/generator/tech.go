package generator

// Tech identifies the technology of a generator. It is a closed set: cost
// tables, penalty functions and the config factory all key on it.
type Tech int

const (
	TechWind Tech = iota
	TechWindOffshore
	TechPV
	TechPV1Axis
	TechBehindMeterPV
	TechCST
	TechParabolicTrough
	TechCentralReceiver
	TechHydro
	TechPumpedHydro
	TechBiofuel
	TechBiomass
	TechBlackCoal
	TechOCGT
	TechCCGT
	TechCoalCCS
	TechCCGTCCS
	TechDiesel
	TechBattery
	TechGeothermalHSA
	TechGeothermalEGS
	TechDemandResponse
	TechGreenPower
	TechElectrolyser
	TechHydrogenGT
)

var techNames = map[Tech]string{
	TechWind:            "wind",
	TechWindOffshore:    "wind-offshore",
	TechPV:              "pv",
	TechPV1Axis:         "pv-1axis",
	TechBehindMeterPV:   "pv-behind-meter",
	TechCST:             "cst",
	TechParabolicTrough: "cst-trough",
	TechCentralReceiver: "cst-receiver",
	TechHydro:           "hydro",
	TechPumpedHydro:     "pumped-hydro",
	TechBiofuel:         "biofuel",
	TechBiomass:         "biomass",
	TechBlackCoal:       "black-coal",
	TechOCGT:            "ocgt",
	TechCCGT:            "ccgt",
	TechCoalCCS:         "coal-ccs",
	TechCCGTCCS:         "ccgt-ccs",
	TechDiesel:          "diesel",
	TechBattery:         "battery",
	TechGeothermalHSA:   "geothermal-hsa",
	TechGeothermalEGS:   "geothermal-egs",
	TechDemandResponse:  "demand-response",
	TechGreenPower:      "greenpower",
	TechElectrolyser:    "electrolyser",
	TechHydrogenGT:      "hydrogen-gt",
}

func (t Tech) String() string {
	if s, ok := techNames[t]; ok {
		return s
	}
	return "unknown"
}

// Fossil reports whether the technology emits fossil CO2.
func (t Tech) Fossil() bool {
	switch t {
	case TechBlackCoal, TechOCGT, TechCCGT, TechCoalCCS, TechCCGTCCS, TechDiesel:
		return true
	}
	return false
}

// Fuelled reports whether the technology is fully dispatchable from fuel
// or river inflow. Pumped hydro and batteries are excluded: their output
// is bounded by their store, not a fuel supply.
func (t Tech) Fuelled() bool {
	switch t {
	case TechHydro, TechBiofuel, TechBiomass, TechBlackCoal, TechOCGT, TechCCGT,
		TechCoalCCS, TechCCGTCCS, TechDiesel, TechGreenPower, TechHydrogenGT:
		return true
	}
	return false
}

// CST reports whether the technology is a concentrating solar thermal
// variant.
func (t Tech) CST() bool {
	switch t {
	case TechCST, TechParabolicTrough, TechCentralReceiver:
		return true
	}
	return false
}
