// Package config provides configuration loading and access for the smoke overlay.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Grid        GridConfig        `yaml:"grid"`
	Workers     WorkersConfig     `yaml:"workers"`
	Solver      SolverConfig      `yaml:"solver"`
	Velocity    FieldConfig       `yaml:"velocity"`
	Density     FieldConfig       `yaml:"density"`
	Temperature TemperatureConfig `yaml:"temperature"`
	Source      SourceConfig      `yaml:"source"`
	Wind        WindConfig        `yaml:"wind"`
	Ambient     AmbientConfig     `yaml:"ambient"`
	Particles   ParticlesConfig   `yaml:"particles"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Stream      StreamConfig      `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	TargetFPS int  `yaml:"target_fps"`
	Overlay   bool `yaml:"overlay"` // Transparent, undecorated, topmost window
}

// GridConfig holds the solver grid dimensions.
// The grid is stretched over the screen; cells are not square unless the aspect matches.
type GridConfig struct {
	Width  int     `yaml:"width"`  // Interior cells across
	Height int     `yaml:"height"` // Interior cells down
	Scale  float64 `yaml:"scale"`  // Cells travelled per unit velocity per second
}

// WorkersConfig holds the solver worker pool size.
type WorkersConfig struct {
	Count int `yaml:"count"` // 0 = GOMAXPROCS
}

// SolverConfig holds relaxation and timestep limits.
type SolverConfig struct {
	Backend    string  `yaml:"backend"`    // "cpu" or "gpu"
	Iterations int     `yaml:"iterations"` // Relaxation sweeps per solve
	FixedDT    float64 `yaml:"fixed_dt"`   // Step used in headless mode
	MinDT      float64 `yaml:"min_dt"`
	MaxDT      float64 `yaml:"max_dt"`
}

// FieldConfig holds diffusion and decay for one simulated field.
type FieldConfig struct {
	Diffusion float64 `yaml:"diffusion"` // Diffusion coefficient (>= 0)
	Decay     float64 `yaml:"decay"`     // Fraction lost per second
}

// TemperatureConfig extends FieldConfig with buoyancy parameters.
type TemperatureConfig struct {
	Diffusion float64 `yaml:"diffusion"`
	Decay     float64 `yaml:"decay"`
	Cursor    float64 `yaml:"cursor"`   // Temperature injected per second under the cursor
	Ambient   float64 `yaml:"ambient"`  // Reference temperature with no buoyancy
	Buoyancy  float64 `yaml:"buoyancy"` // Upward force per degree above ambient
}

// SourceConfig holds the cursor footprint.
type SourceConfig struct {
	Width     float64 `yaml:"width"`      // Full-strength radius in cells
	EdgeFade  float64 `yaml:"edge_fade"`  // Falloff distance beyond Width in cells
	Strength  float64 `yaml:"strength"`   // Density injected per second at full strength
	DragScale float64 `yaml:"drag_scale"` // Fraction of cursor velocity imparted to the fluid
	Deadband  float64 `yaml:"deadband"`   // Cursor speed (cells/s) below which nothing is injected
}

// WindConfig holds the ambient draft along the bottom edge.
type WindConfig struct {
	Width      float64 `yaml:"width"`      // Band height in cells
	Speed      float64 `yaml:"speed"`      // Horizontal velocity added per second
	Turbulence float64 `yaml:"turbulence"` // Noise amplitude relative to Speed
	Seed       int64   `yaml:"seed"`
}

// AmbientConfig holds the ambient smoke variant settings.
type AmbientConfig struct {
	Persistence float64 `yaml:"persistence"` // Seconds a disturbance lingers after the cursor stops
}

// ParticlesConfig holds the tracer overlay parameters.
type ParticlesConfig struct {
	Lifetime    float64 `yaml:"lifetime"`      // Seconds
	MaxPerFrame int     `yaml:"max_per_frame"` // Spawn cap per frame
	MaxCount    int     `yaml:"max_count"`     // Total cap
	Deadband    float64 `yaml:"deadband"`      // Cursor speed below which nothing spawns
	Drag        float64 `yaml:"drag"`          // Blend rate toward the sampled flow (per second)
	Jitter      float64 `yaml:"jitter"`        // Spawn scatter radius in cells
	Size        float64 `yaml:"size"`          // Render radius in pixels
	Seed        int64   `yaml:"seed"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // Frames averaged by the perf collector
	StatsEvery int `yaml:"stats_every"` // Frames between field stat samples
	LogEvery   int `yaml:"log_every"`   // Frames between perf log lines (0 = never)
}

// StreamConfig holds the websocket frame stream settings.
type StreamConfig struct {
	Addr       string `yaml:"addr"`       // Listen address, empty disables streaming
	Downsample int    `yaml:"downsample"` // Grid cells per streamed pixel
	Every      int    `yaml:"every"`      // Frames between broadcasts
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Workers   int     // Effective worker count
	FixedDT32 float32 // Solver.FixedDT as float32
	ScreenW32 float32
	ScreenH32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Sanitize()
	cfg.computeDerived()

	return cfg, nil
}

// Refresh re-validates and re-derives the config after fields were changed
// in place, e.g. by command-line overrides.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.Sanitize()
	c.computeDerived()
	return nil
}

// Validate rejects values that cannot be clamped into something meaningful.
func (c *Config) Validate() error {
	if c.Grid.Width < 1 || c.Grid.Height < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	switch c.Solver.Backend {
	case "", "cpu", "gpu":
	default:
		return fmt.Errorf("unknown solver backend %q", c.Solver.Backend)
	}
	return nil
}

// Sanitize clamps every tunable into its legal range. Non-finite values fall
// back to the lower bound so they never reach the solver.
func (c *Config) Sanitize() {
	c.Solver.MinDT = clampf(c.Solver.MinDT, 1e-4, 1)
	c.Solver.MaxDT = clampf(c.Solver.MaxDT, c.Solver.MinDT, 1)
	c.Solver.FixedDT = clampf(c.Solver.FixedDT, c.Solver.MinDT, c.Solver.MaxDT)
	if c.Solver.Iterations < 0 {
		c.Solver.Iterations = 0
	}
	if c.Solver.Iterations > 200 {
		c.Solver.Iterations = 200
	}
	if c.Solver.Backend == "" {
		c.Solver.Backend = "cpu"
	}
	if c.Grid.Scale <= 0 || !finite(c.Grid.Scale) {
		c.Grid.Scale = 1
	}

	maxDecay := 1 / c.Solver.MaxDT
	c.Velocity.Diffusion = clampf(c.Velocity.Diffusion, 0, 1)
	c.Velocity.Decay = clampf(c.Velocity.Decay, 0, maxDecay)
	c.Density.Diffusion = clampf(c.Density.Diffusion, 0, 1)
	c.Density.Decay = clampf(c.Density.Decay, 0, maxDecay)
	c.Temperature.Diffusion = clampf(c.Temperature.Diffusion, 0, 1)
	c.Temperature.Decay = clampf(c.Temperature.Decay, 0, maxDecay)

	c.Source.Width = clampf(c.Source.Width, 0, 1e4)
	c.Source.EdgeFade = clampf(c.Source.EdgeFade, 0, 1e4)
	c.Source.Deadband = clampf(c.Source.Deadband, 0, 1e6)
	c.Wind.Width = clampf(c.Wind.Width, 0, 1e4)
	c.Ambient.Persistence = clampf(c.Ambient.Persistence, 0, 60)

	c.Particles.Lifetime = clampf(c.Particles.Lifetime, 0, 600)
	c.Particles.Drag = clampf(c.Particles.Drag, 0, 1e3)
	c.Particles.Jitter = clampf(c.Particles.Jitter, 0, 1e4)
	if c.Particles.MaxPerFrame < 0 {
		c.Particles.MaxPerFrame = 0
	}
	if c.Particles.MaxCount < 0 {
		c.Particles.MaxCount = 0
	}

	if c.Workers.Count < 0 {
		c.Workers.Count = 0
	}
	if c.Workers.Count > 64 {
		c.Workers.Count = 64
	}
	if c.Stream.Downsample < 1 {
		c.Stream.Downsample = 1
	}
	if c.Stream.Every < 1 {
		c.Stream.Every = 1
	}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	workers := c.Workers.Count
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
		if workers > 64 {
			workers = 64
		}
	}
	c.Derived.Workers = workers
	c.Derived.FixedDT32 = float32(c.Solver.FixedDT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
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

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// clampf clamps v into [lo, hi]; NaN maps to lo.
func clampf(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
