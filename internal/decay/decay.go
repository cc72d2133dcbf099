// Package decay provides the attenuation model for signal propagation.
// A decay function maps a distance-like scalar (meters, milliseconds,
// hops) to a factor in [0,1]; the multi-factor combinator lets one hop's
// effective attenuation reflect several independent distance channels at
// once without hard-coding their interaction.
package decay

import "math"

// Shape selects one of the interchangeable decay curves
type Shape string

const (
	ShapeExponential Shape = "exponential"
	ShapeLinear      Shape = "linear"
	ShapeInverse     Shape = "inverse"
	ShapeStep        Shape = "step"
	ShapeGaussian    Shape = "gaussian"
	ShapeCustom      Shape = "custom"
)

// Config describes a single decay curve
type Config struct {
	Shape Shape `json:"shape" yaml:"shape"`

	// Rate controls how fast the factor falls with distance for the
	// exponential, linear, and inverse shapes. Negative rates clamp to 0.
	Rate float64 `json:"rate" yaml:"rate"`

	// Threshold is the cutoff distance for the step shape
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// Sigma is the spread for the gaussian shape
	Sigma float64 `json:"sigma,omitempty" yaml:"sigma,omitempty"`

	// Fn is the caller-supplied curve for the custom shape
	Fn func(distance float64) float64 `json:"-" yaml:"-"`
}

// Apply maps a distance to an attenuation factor in [0,1].
// For every shape except step, Apply(0) == 1 and the factor never
// increases with distance.
func Apply(distance float64, cfg Config) float64 {
	rate := cfg.Rate
	if rate < 0 {
		rate = 0
	}

	var factor float64
	switch cfg.Shape {
	case ShapeLinear:
		factor = 1 - rate*distance
	case ShapeInverse:
		factor = 1 / (1 + rate*distance)
	case ShapeStep:
		if distance < cfg.Threshold {
			factor = 1
		}
	case ShapeGaussian:
		sigma := cfg.Sigma
		if sigma <= 0 {
			sigma = 1
		}
		factor = math.Exp(-(distance * distance) / (2 * sigma * sigma))
	case ShapeCustom:
		if cfg.Fn == nil {
			factor = 1
		} else {
			factor = cfg.Fn(distance)
		}
	default:
		// exponential, and the fallback for unknown shapes
		factor = math.Exp(-rate * distance)
	}

	return clamp01(factor)
}

// Combine selects how per-channel factors fold into one
type Combine string

const (
	// CombineMultiply compounds factors; the default
	CombineMultiply Combine = "multiply"
	// CombineMin keeps the bottleneck channel
	CombineMin Combine = "min"
	CombineMax Combine = "max"
	CombineAvg Combine = "average"
)

// Channels holds up to four independent distance measurements.
// A nil channel is undefined and skipped by ApplyMulti.
type Channels struct {
	Spatial     *float64
	Temporal    *float64
	Relational  *float64
	Topological *float64
}

// MultiConfig pairs each channel with its decay curve. A channel with a
// nil config is skipped even when its distance is defined.
type MultiConfig struct {
	Spatial     *Config `json:"spatial,omitempty" yaml:"spatial,omitempty"`
	Temporal    *Config `json:"temporal,omitempty" yaml:"temporal,omitempty"`
	Relational  *Config `json:"relational,omitempty" yaml:"relational,omitempty"`
	Topological *Config `json:"topological,omitempty" yaml:"topological,omitempty"`
	Combine     Combine `json:"combine,omitempty" yaml:"combine,omitempty"`
}

// ApplyMulti combines the factors of every defined channel. With no
// defined channel the result is 1 (no decay).
func ApplyMulti(d Channels, cfg MultiConfig) float64 {
	factors := make([]float64, 0, 4)
	if d.Spatial != nil && cfg.Spatial != nil {
		factors = append(factors, Apply(*d.Spatial, *cfg.Spatial))
	}
	if d.Temporal != nil && cfg.Temporal != nil {
		factors = append(factors, Apply(*d.Temporal, *cfg.Temporal))
	}
	if d.Relational != nil && cfg.Relational != nil {
		factors = append(factors, Apply(*d.Relational, *cfg.Relational))
	}
	if d.Topological != nil && cfg.Topological != nil {
		factors = append(factors, Apply(*d.Topological, *cfg.Topological))
	}

	if len(factors) == 0 {
		return 1
	}

	switch cfg.Combine {
	case CombineMin:
		out := factors[0]
		for _, f := range factors[1:] {
			out = math.Min(out, f)
		}
		return out
	case CombineMax:
		out := factors[0]
		for _, f := range factors[1:] {
			out = math.Max(out, f)
		}
		return out
	case CombineAvg:
		var sum float64
		for _, f := range factors {
			sum += f
		}
		return sum / float64(len(factors))
	default:
		out := 1.0
		for _, f := range factors {
			out *= f
		}
		return out
	}
}

// HalfLife returns the exponential decay factor for the given elapsed
// time and half-life, both in milliseconds
func HalfLife(elapsedMs, halfLifeMs int64) float64 {
	if elapsedMs <= 0 || halfLifeMs <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(elapsedMs)/float64(halfLifeMs))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
