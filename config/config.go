// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Compounds  CompoundsConfig  `yaml:"compounds"`
	Metabolism MetabolismConfig `yaml:"metabolism"`
	Movement   MovementConfig   `yaml:"movement"`
	Binding    BindingConfig    `yaml:"binding"`
	ModeAI     ModeAIConfig     `yaml:"mode_ai"`
	Nutrients  NutrientsConfig  `yaml:"nutrients"`
	Species    []SpeciesConfig  `yaml:"species"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Audio      AudioConfig      `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
// World can be larger than the screen; rendering handles the viewport.
type WorldConfig struct {
	Width  int `yaml:"width"`  // 0 = use screen width
	Height int `yaml:"height"` // 0 = use screen height
}

// PhysicsConfig holds simulation stepping parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	GridCellSize float64 `yaml:"grid_cell_size"`
	PilusCone    float64 `yaml:"pilus_cone"` // half-angle of the pilus contact cone, radians
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	Initial      int `yaml:"initial"`
	Max          int `yaml:"max"`
	MinAlive     int `yaml:"min_alive"`     // respawn when the living count drops below this
	RespawnCount int `yaml:"respawn_count"` // cells spawned per respawn event
}

// CompoundsConfig holds compound reservoir defaults.
type CompoundsConfig struct {
	Capacity       float64 `yaml:"capacity"`
	InitialATP     float64 `yaml:"initial_atp"`
	InitialGlucose float64 `yaml:"initial_glucose"`
}

// MetabolismConfig holds compound flow rates.
type MetabolismConfig struct {
	GrazeRate      float64 `yaml:"graze_rate"`
	ConversionRate float64 `yaml:"conversion_rate"`
	ATPPerGlucose  float64 `yaml:"atp_per_glucose"`
	BaseATPDrain   float64 `yaml:"base_atp_drain"`
	StarveDamage   float64 `yaml:"starve_damage"`
	HealRate       float64 `yaml:"heal_rate"`
}

// MovementConfig holds movement integrator parameters.
type MovementConfig struct {
	Acceleration float64 `yaml:"acceleration"`
	Drag         float64 `yaml:"drag"`
	TurnRate     float64 `yaml:"turn_rate"`
	MaxSpeed     float64 `yaml:"max_speed"` // default, overridden per species
}

// BindingConfig holds binding coordinator parameters.
type BindingConfig struct {
	CostPerSecond  float64 `yaml:"cost_per_second"` // ATP drained while in binding mode
	CostEpsilon    float64 `yaml:"cost_epsilon"`    // shortfall tolerated before forced exit
	LookAhead      float64 `yaml:"look_ahead"`      // unbinding look-at distance
	UnbindDuration float64 `yaml:"unbind_duration"` // seconds to dissolve a colony
}

// ModeAIConfig holds autonomous mode selection parameters.
type ModeAIConfig struct {
	BindThreshold  float64 `yaml:"bind_threshold"`
	BindChance     float64 `yaml:"bind_chance"`
	UnbindChance   float64 `yaml:"unbind_chance"`
	MaxColonySize  int     `yaml:"max_colony_size"`
	WanderStrength float64 `yaml:"wander_strength"`
	WanderJitter   float64 `yaml:"wander_jitter"`
}

// NutrientsConfig holds nutrient field generation parameters.
type NutrientsConfig struct {
	CellSize    float64 `yaml:"cell_size"`
	NoiseScale  float64 `yaml:"noise_scale"`
	Octaves     int     `yaml:"octaves"`
	MaxCapacity float64 `yaml:"max_capacity"`
	RegenRate   float64 `yaml:"regen_rate"`
}

// SpeciesConfig defines one species of microbe.
type SpeciesConfig struct {
	Name       string   `yaml:"name"`
	Radius     float64  `yaml:"radius"`
	MaxSpeed   float64  `yaml:"max_speed"`
	MaxHealth  float64  `yaml:"max_health"`
	CanBind    bool     `yaml:"can_bind"`
	BindsWith  []string `yaml:"binds_with"` // empty = only its own kind
	PilusCount int      `yaml:"pilus_count"`
	Weight     float64  `yaml:"weight"` // relative spawn probability
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per stats window
}

// AudioConfig holds audio parameters.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32         float32
	WorldW32     float32
	WorldH32     float32
	SpeciesIndex map[string]uint8 // name -> species id
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct; only fields present in the
		// file are overwritten.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)

	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)

	// Synthesize a default species list if none specified.
	if len(c.Species) == 0 {
		c.Species = []SpeciesConfig{
			{Name: "coccus", Radius: 8, MaxSpeed: 40, MaxHealth: 100, CanBind: true, PilusCount: 0, Weight: 1},
			{Name: "bacillus", Radius: 10, MaxSpeed: 55, MaxHealth: 80, CanBind: false, PilusCount: 2, Weight: 0.5},
		}
	}
	for i := range c.Species {
		sp := &c.Species[i]
		if sp.MaxHealth == 0 {
			sp.MaxHealth = 100
		}
		if sp.MaxSpeed == 0 {
			sp.MaxSpeed = c.Movement.MaxSpeed
		}
		if sp.Weight == 0 {
			sp.Weight = 1
		}
	}

	c.Derived.SpeciesIndex = make(map[string]uint8, len(c.Species))
	for i, sp := range c.Species {
		c.Derived.SpeciesIndex[sp.Name] = uint8(i)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
