package network

import (
	"time"

	"mycelia/internal/propagation"
)

// ResonanceConfig tunes convergence detection
type ResonanceConfig struct {
	// MinParticipants is the minimum cluster size, in nodes and in
	// distinct owners, required before a resonance forms
	MinParticipants int `json:"min_participants" yaml:"min_participants"`

	// MaxDistance is the clustering radius in meters
	MaxDistance float64 `json:"max_distance" yaml:"max_distance"`

	// TimeWindow bounds how recently a node must have been active to
	// participate; a resonance stale beyond twice this window fades
	TimeWindow time.Duration `json:"time_window" yaml:"time_window"`
}

// Config holds the full network configuration. It is validated at
// construction and immutable afterwards except through the per-field
// setters the manager exposes.
type Config struct {
	Propagation propagation.Config            `json:"propagation" yaml:"propagation"`
	Aggregation propagation.AggregationMethod `json:"aggregation" yaml:"aggregation"`
	Resonance   ResonanceConfig               `json:"resonance" yaml:"resonance"`

	MaintenanceInterval time.Duration `json:"maintenance_interval" yaml:"maintenance_interval"`
	StatsInterval       time.Duration `json:"stats_interval" yaml:"stats_interval"`

	// MaxActiveSignals caps concurrently active signals; the oldest is
	// evicted when a new emission would exceed it
	MaxActiveSignals int `json:"max_active_signals" yaml:"max_active_signals"`

	// NodeExpiration demotes nodes inactive past this duration to ghost,
	// then removes them on a later pass; 0 disables expiration
	NodeExpiration time.Duration `json:"node_expiration,omitempty" yaml:"node_expiration,omitempty"`
}

// DefaultConfig returns the default network configuration
func DefaultConfig() Config {
	return Config{
		Propagation: propagation.DefaultConfig(),
		Aggregation: propagation.AggregateWeightedAvg,
		Resonance: ResonanceConfig{
			MinParticipants: 3,
			MaxDistance:     500,
			TimeWindow:      5 * time.Minute,
		},
		MaintenanceInterval: 10 * time.Second,
		StatsInterval:       30 * time.Second,
		MaxActiveSignals:    1000,
	}
}

// normalize clamps out-of-range values instead of rejecting them
func (c *Config) normalize() {
	if c.Propagation.Algorithm == "" {
		c.Propagation.Algorithm = propagation.AlgorithmFlood
	}
	if c.Propagation.MaxHops <= 0 {
		c.Propagation.MaxHops = propagation.DefaultConfig().MaxHops
	}
	if c.Propagation.MinStrength < 0 {
		c.Propagation.MinStrength = 0
	}
	if c.Propagation.MinStrength > 1 {
		c.Propagation.MinStrength = 1
	}
	if c.Aggregation == "" {
		c.Aggregation = propagation.AggregateWeightedAvg
	}
	if c.Resonance.MinParticipants < 2 {
		c.Resonance.MinParticipants = 2
	}
	if c.Resonance.MaxDistance <= 0 {
		c.Resonance.MaxDistance = 500
	}
	if c.Resonance.TimeWindow <= 0 {
		c.Resonance.TimeWindow = 5 * time.Minute
	}
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = 10 * time.Second
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = 30 * time.Second
	}
	if c.MaxActiveSignals <= 0 {
		c.MaxActiveSignals = 1000
	}
	if c.NodeExpiration < 0 {
		c.NodeExpiration = 0
	}
}

// Config returns a copy of the current configuration
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// SetPropagation replaces the propagation settings
func (m *Manager) SetPropagation(cfg propagation.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Propagation = cfg
	m.cfg.normalize()
}

// SetAggregation replaces the aggregation method
func (m *Manager) SetAggregation(method propagation.AggregationMethod) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Aggregation = method
	m.cfg.normalize()
}

// SetResonance replaces the resonance detection settings
func (m *Manager) SetResonance(cfg ResonanceConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Resonance = cfg
	m.cfg.normalize()
}

// SetMaxActiveSignals replaces the active-signal capacity
func (m *Manager) SetMaxActiveSignals(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.MaxActiveSignals = n
	m.cfg.normalize()
}

// SetNodeExpiration replaces the node expiration threshold
func (m *Manager) SetNodeExpiration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.NodeExpiration = d
	m.cfg.normalize()
}
