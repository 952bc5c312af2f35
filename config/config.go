// Package config provides configuration loading and access for the ecosystem.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every process-level configuration section.
type Config struct {
	Screen     ScreenConfig    `yaml:"screen"`
	World      WorldConfig     `yaml:"world"`
	Simulation Settings        `yaml:"simulation"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`
	Server     ServerConfig    `yaml:"server"`
	Optimize   OptimizeConfig  `yaml:"optimize"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	Zoom      float64 `yaml:"zoom"`      // world extent = screen / zoom
	ShowGrid  bool    `yaml:"show_grid"` // overlay only, never seen by the engine
	GridStep  int     `yaml:"grid_step"`
}

// WorldConfig holds world-level engine options that are not user-tunable at runtime.
type WorldConfig struct {
	SpatialIndex bool    `yaml:"spatial_index"`  // grid buckets for the chase query
	GridCellSize float64 `yaml:"grid_cell_size"` // cell edge in world units
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsIntervalMS int     `yaml:"stats_interval_ms"` // wall-clock snapshot cadence
	StatsWindow     float64 `yaml:"stats_window"`      // simulated seconds per window
}

// ServerConfig holds websocket host parameters.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MessageRate    float64  `yaml:"message_rate"` // inbound messages per second per connection
	MessageBurst   int      `yaml:"message_burst"`
	FrameEvery     int      `yaml:"frame_every"` // broadcast every Nth frame, 0 disables frames
	TickMS         int      `yaml:"tick_ms"`
	WorldWidth     float64  `yaml:"world_width"` // used when a client initializes without a size
	WorldHeight    float64  `yaml:"world_height"`
}

// OptimizeConfig holds defaults for the parameter optimizer.
type OptimizeConfig struct {
	MaxTicks int     `yaml:"max_ticks"`
	Seeds    []int64 `yaml:"seeds"`
	MaxEvals int     `yaml:"max_evals"`
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
		// Only overwrites fields present in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Simulation = c.Simulation.Sanitize()
	if c.Screen.Zoom <= 0 {
		c.Screen.Zoom = 1
	}
	if c.World.GridCellSize <= 0 {
		c.World.GridCellSize = 100
	}
	if c.Telemetry.StatsIntervalMS <= 0 {
		c.Telemetry.StatsIntervalMS = 1000
	}
	if c.Telemetry.StatsWindow <= 0 {
		c.Telemetry.StatsWindow = 10
	}
	if c.Server.TickMS <= 0 {
		c.Server.TickMS = 16
	}
}

// WorldSize returns the world extent for the configured screen and zoom.
func (c *Config) WorldSize() (float64, float64) {
	return float64(c.Screen.Width) / c.Screen.Zoom, float64(c.Screen.Height) / c.Screen.Zoom
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

// WriteSettingsYAML writes only the simulation section, as the optimizer emits it.
func WriteSettingsYAML(path string, s Settings) error {
	data, err := yaml.Marshal(struct {
		Simulation Settings `yaml:"simulation"`
	}{s})
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
