// Package config provides configuration management for mycelia.
//
// Config file locations (priority order):
//  1. $MYCELIA_CONFIG
//  2. ./mycelia.yaml
//  3. $XDG_CONFIG_HOME/mycelia/config.yaml
//  4. ~/.config/mycelia/config.yaml
//  5. /etc/mycelia/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mycelia/internal/decay"
	"mycelia/internal/network"
	"mycelia/internal/propagation"
)

// Config is the full server configuration
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Seed     SeedConfig     `yaml:"seed"`
	Network  NetworkConfig  `yaml:"network"`
}

// ServerConfig covers the HTTP surface
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig covers snapshot persistence
type DatabaseConfig struct {
	Path string `yaml:"path"`

	// SaveInterval controls how often the server persists a snapshot;
	// empty disables periodic saves
	SaveInterval *Duration `yaml:"save_interval,omitempty"`
}

// SeedConfig points at an optional snapshot file imported on startup
// and, when Watch is set, re-imported whenever the file changes
type SeedConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch,omitempty"`
}

// NetworkConfig is the yaml-friendly mirror of the engine configuration
type NetworkConfig struct {
	Algorithm   string  `yaml:"algorithm"`
	MaxHops     int     `yaml:"max_hops"`
	MinStrength float64 `yaml:"min_strength"`
	Aggregation string  `yaml:"aggregation"`

	SpatialDecay     *DecayConfig `yaml:"spatial_decay,omitempty"`
	TemporalDecay    *DecayConfig `yaml:"temporal_decay,omitempty"`
	TopologicalDecay *DecayConfig `yaml:"topological_decay,omitempty"`
	DecayCombine     string       `yaml:"decay_combine,omitempty"`

	Resonance ResonanceConfig `yaml:"resonance"`

	MaintenanceInterval *Duration `yaml:"maintenance_interval,omitempty"`
	StatsInterval       *Duration `yaml:"stats_interval,omitempty"`
	MaxActiveSignals    int       `yaml:"max_active_signals,omitempty"`
	NodeExpiration      *Duration `yaml:"node_expiration,omitempty"`
}

// DecayConfig mirrors one decay curve
type DecayConfig struct {
	Shape     string  `yaml:"shape"`
	Rate      float64 `yaml:"rate"`
	Threshold float64 `yaml:"threshold,omitempty"`
	Sigma     float64 `yaml:"sigma,omitempty"`
}

// ResonanceConfig mirrors the detection settings
type ResonanceConfig struct {
	MinParticipants int       `yaml:"min_participants"`
	MaxDistance     float64   `yaml:"max_distance"`
	TimeWindow      *Duration `yaml:"time_window,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{
		Version:  1,
		Server:   ServerConfig{Addr: ":4000"},
		Database: DatabaseConfig{Path: "./mycelia.db"},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":4000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./mycelia.db"
	}
	def := network.DefaultConfig()
	if c.Network.Algorithm == "" {
		c.Network.Algorithm = string(def.Propagation.Algorithm)
	}
	if c.Network.MaxHops == 0 {
		c.Network.MaxHops = def.Propagation.MaxHops
	}
	if c.Network.MinStrength == 0 {
		c.Network.MinStrength = def.Propagation.MinStrength
	}
	if c.Network.Aggregation == "" {
		c.Network.Aggregation = string(def.Aggregation)
	}
	if c.Network.Resonance.MinParticipants == 0 {
		c.Network.Resonance.MinParticipants = def.Resonance.MinParticipants
	}
	if c.Network.Resonance.MaxDistance == 0 {
		c.Network.Resonance.MaxDistance = def.Resonance.MaxDistance
	}
	if c.Network.MaxActiveSignals == 0 {
		c.Network.MaxActiveSignals = def.MaxActiveSignals
	}
}

// NetworkConfig converts the yaml mirror into the engine configuration.
// Out-of-range values are clamped by the engine itself.
func (c *Config) NetworkConfig() network.Config {
	cfg := network.DefaultConfig()

	cfg.Propagation.Algorithm = propagation.Algorithm(c.Network.Algorithm)
	cfg.Propagation.MaxHops = c.Network.MaxHops
	cfg.Propagation.MinStrength = c.Network.MinStrength
	cfg.Aggregation = propagation.AggregationMethod(c.Network.Aggregation)

	if c.Network.SpatialDecay != nil || c.Network.TemporalDecay != nil || c.Network.TopologicalDecay != nil {
		cfg.Propagation.Decay = decay.MultiConfig{
			Spatial:     c.Network.SpatialDecay.toDecay(),
			Temporal:    c.Network.TemporalDecay.toDecay(),
			Topological: c.Network.TopologicalDecay.toDecay(),
			Combine:     decay.Combine(c.Network.DecayCombine),
		}
	}

	cfg.Resonance.MinParticipants = c.Network.Resonance.MinParticipants
	cfg.Resonance.MaxDistance = c.Network.Resonance.MaxDistance
	if c.Network.Resonance.TimeWindow != nil {
		cfg.Resonance.TimeWindow = c.Network.Resonance.TimeWindow.Duration()
	}

	if c.Network.MaintenanceInterval != nil {
		cfg.MaintenanceInterval = c.Network.MaintenanceInterval.Duration()
	}
	if c.Network.StatsInterval != nil {
		cfg.StatsInterval = c.Network.StatsInterval.Duration()
	}
	cfg.MaxActiveSignals = c.Network.MaxActiveSignals
	if c.Network.NodeExpiration != nil {
		cfg.NodeExpiration = c.Network.NodeExpiration.Duration()
	}

	return cfg
}

func (d *DecayConfig) toDecay() *decay.Config {
	if d == nil {
		return nil
	}
	return &decay.Config{
		Shape:     decay.Shape(d.Shape),
		Rate:      d.Rate,
		Threshold: d.Threshold,
		Sigma:     d.Sigma,
	}
}
