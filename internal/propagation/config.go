// Package propagation implements the four interchangeable strategies
// that move signals through the mycelium graph: flood, gradient-follow,
// probabilistic random-walk, and diffusion. All strategies share one
// signature and produce attenuated signal copies, never mutations.
package propagation

import (
	"math/rand"

	"mycelia/internal/decay"
)

// Algorithm selects a propagation strategy
type Algorithm string

const (
	AlgorithmFlood      Algorithm = "flood"
	AlgorithmGradient   Algorithm = "gradient"
	AlgorithmRandomWalk Algorithm = "random-walk"
	AlgorithmDiffusion  Algorithm = "diffusion"

	// AlgorithmShortestPath is accepted in configuration but aliases to
	// flood. Existing deployments depend on the fallback, so the alias
	// is preserved rather than implemented as a distinct strategy.
	AlgorithmShortestPath Algorithm = "shortest-path"
)

// Config holds the tunable parameters shared by every strategy
type Config struct {
	Algorithm Algorithm `json:"algorithm" yaml:"algorithm"`

	// MaxHops bounds how many hops a signal lineage may take
	MaxHops int `json:"max_hops" yaml:"max_hops"`

	// MinStrength is the floor below which a signal is dead; steps whose
	// resulting strength falls under it are pruned, never forwarded
	MinStrength float64 `json:"min_strength" yaml:"min_strength"`

	// Decay combines the spatial, temporal, and topological channels
	// into one per-hop attenuation factor
	Decay decay.MultiConfig `json:"decay" yaml:"decay"`

	// Rand is the randomness source for the random-walk strategy; nil
	// uses the shared global source. Tests inject a seeded source here.
	Rand *rand.Rand `json:"-" yaml:"-"`
}

// DefaultConfig returns the default propagation configuration
func DefaultConfig() Config {
	return Config{
		Algorithm:   AlgorithmFlood,
		MaxHops:     5,
		MinStrength: 0.01,
		Decay: decay.MultiConfig{
			Spatial:     &decay.Config{Shape: decay.ShapeExponential, Rate: 0.0001},
			Temporal:    &decay.Config{Shape: decay.ShapeExponential, Rate: 0.00001},
			Topological: &decay.Config{Shape: decay.ShapeInverse, Rate: 0.3},
			Combine:     decay.CombineMultiply,
		},
	}
}

// EmissionConfig describes a signal about to be emitted
type EmissionConfig struct {
	Type            string  `json:"type" yaml:"type"`
	InitialStrength float64 `json:"initial_strength" yaml:"initial_strength"`
	Payload         any     `json:"payload,omitempty" yaml:"payload,omitempty"`

	// TTL is the absolute signal lifetime in milliseconds; 0 disables it
	TTL int64 `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}
