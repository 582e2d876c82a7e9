// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Tick        TickConfig        `yaml:"tick"`
	Flocking    FlockingConfig    `yaml:"flocking"`
	Metabolism  MetabolismConfig  `yaml:"metabolism"`
	Foraging    ForagingConfig    `yaml:"foraging"`
	Social      SocialConfig      `yaml:"social"`
	Festival    FestivalConfig    `yaml:"festival"`
	Population  PopulationConfig  `yaml:"population"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the fixed bounded cuboid the simulation lives in.
// Extents are full edge lengths; positions range over [-extent/2, extent/2].
type WorldConfig struct {
	ExtentX float64 `yaml:"extent_x"`
	ExtentY float64 `yaml:"extent_y"`
	ExtentZ float64 `yaml:"extent_z"`
}

// TickConfig holds scheduler timing.
type TickConfig struct {
	IntervalMS int `yaml:"interval_ms"` // fixed timestep, 100 = 10 Hz
}

// FlockingConfig holds the boids kernel parameter block. All knobs are
// runtime-mutable through the engine; the kernel tolerates arbitrary values
// (a zero perception radius simply yields no neighbors).
type FlockingConfig struct {
	CohesionFactor     float64 `yaml:"cohesion_factor"`
	SeparationFactor   float64 `yaml:"separation_factor"`
	AlignmentFactor    float64 `yaml:"alignment_factor"`
	PerceptionRadius   float64 `yaml:"perception_radius"`
	SeparationDistance float64 `yaml:"separation_distance"`
	MaxSpeed           float64 `yaml:"max_speed"`
	MaxForce           float64 `yaml:"max_force"`
	Workers            int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// DigestionRule maps a food type to the deltas applied when a stomach
// holding that food is digested. All deltas are scaled by the stomach amount.
type DigestionRule struct {
	FoodType     uint8   `yaml:"food_type"`
	EnergyChange float64 `yaml:"energy_change"`
	MoodChange   float64 `yaml:"mood_change"`
	ColorShiftR  float64 `yaml:"color_shift_r"`
	ColorShiftG  float64 `yaml:"color_shift_g"`
	ColorShiftB  float64 `yaml:"color_shift_b"`
	SizeChange   float64 `yaml:"size_change"`
}

// MetabolismConfig holds the basal drain and the digestion rule table.
type MetabolismConfig struct {
	BasalRate float64         `yaml:"basal_rate"`
	Digestion []DigestionRule `yaml:"digestion"`
}

// ForagingConfig holds the Bernoulli foraging trial parameters.
type ForagingConfig struct {
	Probability float64 `yaml:"probability"`
	FoodType    uint8   `yaml:"food_type"`
	Amount      float64 `yaml:"amount"`
}

// SocialRule is one declarative interaction rule. Preconditions are
// optional; a nil precondition always holds. Rules are evaluated in
// declaration order and at most one applies per ordered pair per tick.
type SocialRule struct {
	Verb string `yaml:"verb"`

	DistanceLT     *float64 `yaml:"distance_lt"`
	RelationshipGT *float64 `yaml:"relationship_gt"`

	InitiatorEnergyChange float64 `yaml:"initiator_energy_change"`
	TargetMoodChange      float64 `yaml:"target_mood_change"`
	RelationshipChange    float64 `yaml:"relationship_change"`
}

// SocialConfig holds the spatial grid sizing and the interaction rules.
type SocialConfig struct {
	CellSize float64      `yaml:"cell_size"` // 0 = derived from max rule radius
	Rules    []SocialRule `yaml:"rules"`
}

// FestivalConfig holds the trigger thresholds and spiral choreography knobs.
type FestivalConfig struct {
	HighThreshold      float64 `yaml:"high_threshold"`
	HysteresisFraction float64 `yaml:"hysteresis_fraction"`
	TriggerTicks       int     `yaml:"trigger_ticks"`
	DurationTicks      int     `yaml:"duration_ticks"`

	RotationStep    float64 `yaml:"rotation_step"`
	RadiusGrowth    float64 `yaml:"radius_growth"`
	HeightAmplitude float64 `yaml:"height_amplitude"`
	HeightAngleFreq float64 `yaml:"height_angle_freq"`
	HeightTickFreq  float64 `yaml:"height_tick_freq"`
	DanceSpeed      float64 `yaml:"dance_speed"`
	Tolerance       float64 `yaml:"tolerance"`

	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	CenterZ float64 `yaml:"center_z"`
}

// PopulationConfig holds initial spawn parameters.
type PopulationConfig struct {
	Initial       int     `yaml:"initial"`
	StartEnergy   float64 `yaml:"start_energy"`
	MaxEnergy     float64 `yaml:"max_energy"`
	StartSize     float64 `yaml:"start_size"`
	SpawnSpread   float64 `yaml:"spawn_spread"` // fraction of half-extent
	StartSpeedMax float64 `yaml:"start_speed_max"`
}

// PersistenceConfig holds snapshot storage settings. An empty addr runs an
// in-process store.
type PersistenceConfig struct {
	Addr            string `yaml:"addr"`
	Key             string `yaml:"key"`
	AutosaveSeconds int    `yaml:"autosave_seconds"`
}

// TelemetryConfig holds stats output settings.
type TelemetryConfig struct {
	OutputDir     string `yaml:"output_dir"`
	FlushEvery    int    `yaml:"flush_every"`     // ticks between CSV flushes
	LogEveryTicks int    `yaml:"log_every_ticks"` // ticks between stat log lines
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	HalfX, HalfY, HalfZ float32
	TickInterval        time.Duration
	MaxSocialRadius     float32
	GridCellSize        float32
	AutosaveInterval    time.Duration
}

var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty, and installs it globally.
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

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
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
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.HalfX = float32(c.World.ExtentX / 2)
	c.Derived.HalfY = float32(c.World.ExtentY / 2)
	c.Derived.HalfZ = float32(c.World.ExtentZ / 2)

	c.Derived.TickInterval = time.Duration(c.Tick.IntervalMS) * time.Millisecond
	c.Derived.AutosaveInterval = time.Duration(c.Persistence.AutosaveSeconds) * time.Second

	c.Derived.MaxSocialRadius = maxRuleRadius(c.Social.Rules)

	// Grid cells must be at least as large as the biggest interaction radius
	// so a one-cell ring always covers it.
	cell := float32(c.Social.CellSize)
	if cell < c.Derived.MaxSocialRadius {
		cell = c.Derived.MaxSocialRadius
	}
	if cell <= 0 {
		cell = 1
	}
	c.Derived.GridCellSize = cell
}

func maxRuleRadius(rules []SocialRule) float32 {
	var r float32
	for _, rule := range rules {
		if rule.DistanceLT != nil && float32(*rule.DistanceLT) > r {
			r = float32(*rule.DistanceLT)
		}
	}
	return r
}
