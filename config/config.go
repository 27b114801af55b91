// Package config loads scenario configuration: grid topology, demand
// source, the generator fleet in merit order and the planning limits.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mwheeler/gridsim/metrics"
)

// Config is the root scenario configuration.
type Config struct {
	Scenario       string            `json:"scenario"`
	Demand         DemandConfig      `json:"demand"`
	Topology       TopologyConfig    `json:"topology"`
	NSPLimit       float64           `json:"nspLimit"`
	TrackExchanges bool              `json:"trackExchanges"`
	RelStd         float64           `json:"relStd"`
	Fleet          []GeneratorConfig `json:"fleet"`
	Limits         LimitsConfig      `json:"limits"`
	Costs          CostsConfig       `json:"costs"`
	Metrics        metrics.Config    `json:"metrics"`
}

// DemandConfig names the demand trace source.
type DemandConfig struct {
	// Source is a local path or http(s) URL of the half-hourly regional
	// demand trace.
	Source string `json:"source"`
}

// TopologyConfig describes the region/polygon graph.
type TopologyConfig struct {
	Regions []RegionConfig `json:"regions"`
	// Links are bidirectional polygon adjacencies.
	Links [][2]int `json:"links"`
}

// RegionConfig describes one region. Ordinals follow list order.
type RegionConfig struct {
	ID       string         `json:"id"`
	Descr    string         `json:"descr"`
	Lat      float64        `json:"lat"`
	Long     float64        `json:"long"`
	Polygons []PolygonShare `json:"polygons"`
}

// PolygonShare assigns a demand share to a polygon.
type PolygonShare struct {
	Polygon int     `json:"polygon"`
	Share   float64 `json:"share"`
}

// GeneratorConfig describes one fleet entry. The fleet list order is the
// merit order.
type GeneratorConfig struct {
	Type       string  `json:"type"`
	Label      string  `json:"label"`
	Polygon    int     `json:"polygon"`
	CapacityMW float64 `json:"capacityMw"`

	// Trace-driven technologies.
	Trace  string `json:"trace"`
	Column int    `json:"column"`

	// Storage technologies.
	StorageMWh     float64 `json:"storageMwh"`
	RTE            float64 `json:"rte"`
	DischargeHours []int   `json:"dischargeHours"`

	// Concentrating solar thermal.
	SolarMultiple float64 `json:"solarMultiple"`
	StorageHours  float64 `json:"storageHours"`

	// Fossil and fuel parameters.
	Intensity   float64 `json:"intensity"`
	Capture     float64 `json:"capture"`
	HeatRate    float64 `json:"heatRate"`
	KWhPerLitre float64 `json:"kwhPerLitre"`

	// Demand response.
	CostPerMWh float64 `json:"costPerMwh"`

	// Hydrogen chain: generators naming the same tank share it.
	Tank       string  `json:"tank"`
	TankMWh    float64 `json:"tankMwh"`
	Efficiency float64 `json:"efficiency"`

	// BuildLimitGW caps the optimizer's capacity setter, in GW.
	BuildLimitGW float64 `json:"buildLimitGw"`
}

// LimitsConfig mirrors the planning limits; negative disables a limit.
type LimitsConfig struct {
	EmissionsLimitMt    float64 `json:"emissionsLimitMt"`
	FossilFraction      float64 `json:"fossilFraction"`
	BioenergyLimitTWh   float64 `json:"bioenergyLimitTwh"`
	HydroLimitTWh       float64 `json:"hydroLimitTwh"`
	ReservesMW          float64 `json:"reservesMw"`
	MinRegionalFraction float64 `json:"minRegionalFraction"`
}

// CostsConfig selects a technology cost table.
type CostsConfig struct {
	// Tables is one of "null", "apgtr2015", "apgtr2030".
	Tables   string  `json:"tables"`
	Discount float64 `json:"discount"`
	CoalGJ   float64 `json:"coalPricePerGj"`
	GasGJ    float64 `json:"gasPricePerGj"`
	CCSPerT  float64 `json:"ccsStoragePerT"`
	CarbonT  float64 `json:"carbonPricePerT"`
}

// Load reads the configuration file at path, allowing GS_-prefixed
// environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("GS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "gs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Scenario == "" {
		c.Scenario = "default"
	}
	if c.NSPLimit == 0 {
		c.NSPLimit = 1.0
	}
	if c.RelStd == 0 {
		c.RelStd = 0.002
	}
	if c.Costs.Tables == "" {
		c.Costs.Tables = "null"
	}
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if len(c.Topology.Regions) == 0 {
		return fmt.Errorf("config: no regions defined")
	}
	if c.Demand.Source == "" {
		return fmt.Errorf("config: no demand source")
	}
	if c.NSPLimit < 0 || c.NSPLimit > 1 {
		return fmt.Errorf("config: nsp limit %.3f outside [0,1]", c.NSPLimit)
	}
	if len(c.Fleet) == 0 {
		return fmt.Errorf("config: empty fleet")
	}
	for i, g := range c.Fleet {
		if g.Type == "" {
			return fmt.Errorf("config: fleet entry %d has no type", i)
		}
	}
	return nil
}
