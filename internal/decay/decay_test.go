package decay

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApplyShapes(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		distance float64
		want     float64
	}{
		{"exponential at zero", Config{Shape: ShapeExponential, Rate: 0.5}, 0, 1},
		{"exponential", Config{Shape: ShapeExponential, Rate: 0.5}, 2, math.Exp(-1)},
		{"linear at zero", Config{Shape: ShapeLinear, Rate: 0.1}, 0, 1},
		{"linear", Config{Shape: ShapeLinear, Rate: 0.1}, 5, 0.5},
		{"linear clamps at floor", Config{Shape: ShapeLinear, Rate: 0.1}, 20, 0},
		{"inverse at zero", Config{Shape: ShapeInverse, Rate: 0.5}, 0, 1},
		{"inverse", Config{Shape: ShapeInverse, Rate: 0.5}, 2, 0.5},
		{"step below threshold", Config{Shape: ShapeStep, Threshold: 100}, 99, 1},
		{"step at threshold", Config{Shape: ShapeStep, Threshold: 100}, 100, 0},
		{"gaussian at zero", Config{Shape: ShapeGaussian, Sigma: 2}, 0, 1},
		{"gaussian at sigma", Config{Shape: ShapeGaussian, Sigma: 2}, 2, math.Exp(-0.5)},
		{"unknown shape falls back to exponential", Config{Shape: "bogus", Rate: 1}, 1, math.Exp(-1)},
		{"negative rate clamps to zero", Config{Shape: ShapeExponential, Rate: -5}, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.distance, tt.cfg)
			if !almostEqual(got, tt.want) {
				t.Errorf("Apply(%f) = %f, want %f", tt.distance, got, tt.want)
			}
		})
	}
}

func TestApplyCustomShape(t *testing.T) {
	cfg := Config{Shape: ShapeCustom, Fn: func(d float64) float64 { return 1 - d/10 }}

	if got := Apply(5, cfg); !almostEqual(got, 0.5) {
		t.Errorf("Apply(5) = %f, want 0.5", got)
	}

	// Out-of-range custom results are clamped
	if got := Apply(20, cfg); got != 0 {
		t.Errorf("Apply(20) = %f, want 0", got)
	}
	if got := Apply(-20, cfg); got != 1 {
		t.Errorf("Apply(-20) = %f, want 1", got)
	}

	// Nil Fn means no decay
	if got := Apply(5, Config{Shape: ShapeCustom}); got != 1 {
		t.Errorf("Apply with nil Fn = %f, want 1", got)
	}
}

func TestApplyMonotonic(t *testing.T) {
	shapes := []Config{
		{Shape: ShapeExponential, Rate: 0.3},
		{Shape: ShapeLinear, Rate: 0.05},
		{Shape: ShapeInverse, Rate: 0.8},
		{Shape: ShapeGaussian, Sigma: 3},
	}

	for _, cfg := range shapes {
		t.Run(string(cfg.Shape), func(t *testing.T) {
			prev := Apply(0, cfg)
			for d := 1.0; d <= 50; d++ {
				cur := Apply(d, cfg)
				if cur > prev+1e-12 {
					t.Fatalf("factor increased with distance at d=%f: %f -> %f", d, prev, cur)
				}
				prev = cur
			}
		})
	}
}

func TestApplyMulti(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	spatial := &Config{Shape: ShapeLinear, Rate: 0.1}  // 0.5 at d=5
	temporal := &Config{Shape: ShapeLinear, Rate: 0.1} // 0.8 at d=2

	channels := Channels{Spatial: f(5), Temporal: f(2)}

	tests := []struct {
		combine Combine
		want    float64
	}{
		{CombineMultiply, 0.4},
		{CombineMin, 0.5},
		{CombineMax, 0.8},
		{CombineAvg, 0.65},
	}

	for _, tt := range tests {
		t.Run(string(tt.combine), func(t *testing.T) {
			cfg := MultiConfig{Spatial: spatial, Temporal: temporal, Combine: tt.combine}
			got := ApplyMulti(channels, cfg)
			if !almostEqual(got, tt.want) {
				t.Errorf("ApplyMulti() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestApplyMultiSkipsUndefinedChannels(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	cfg := MultiConfig{
		Spatial:  &Config{Shape: ShapeLinear, Rate: 0.1},
		Temporal: &Config{Shape: ShapeLinear, Rate: 0.1},
	}

	// Temporal distance defined but spatial missing: only temporal applies
	got := ApplyMulti(Channels{Temporal: f(2)}, cfg)
	if !almostEqual(got, 0.8) {
		t.Errorf("ApplyMulti() = %f, want 0.8", got)
	}

	// Distance defined but no config for the channel: skipped
	got = ApplyMulti(Channels{Relational: f(10)}, cfg)
	if got != 1 {
		t.Errorf("ApplyMulti() with unconfigured channel = %f, want 1", got)
	}

	// Nothing defined means no decay
	if got := ApplyMulti(Channels{}, cfg); got != 1 {
		t.Errorf("ApplyMulti() with no channels = %f, want 1", got)
	}
}

func TestHalfLife(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  int64
		halfLife int64
		want     float64
	}{
		{"zero elapsed", 0, 1000, 1},
		{"one half-life", 1000, 1000, 0.5},
		{"two half-lives", 2000, 1000, 0.25},
		{"zero half-life", 500, 0, 1},
		{"negative elapsed", -100, 1000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HalfLife(tt.elapsed, tt.halfLife)
			if !almostEqual(got, tt.want) {
				t.Errorf("HalfLife(%d, %d) = %f, want %f", tt.elapsed, tt.halfLife, got, tt.want)
			}
		})
	}
}
