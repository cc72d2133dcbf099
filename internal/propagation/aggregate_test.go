package propagation

import (
	"math"
	"testing"

	"mycelia/internal/domain"
)

func sigs(strengths ...float64) []*domain.Signal {
	out := make([]*domain.Signal, len(strengths))
	for i, s := range strengths {
		out[i] = &domain.Signal{CurrentStrength: s}
	}
	return out
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		signals []*domain.Signal
		method  AggregationMethod
		want    float64
	}{
		{"empty set", nil, AggregateSum, 0},
		{"sum", sigs(0.2, 0.3), AggregateSum, 0.5},
		{"sum clamps to one", sigs(0.8, 0.7), AggregateSum, 1},
		{"max", sigs(0.2, 0.9, 0.5), AggregateMax, 0.9},
		{"average", sigs(0.2, 0.4), AggregateAvg, 0.3},
		{"unknown method falls back to sum", sigs(0.1, 0.2), "bogus", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.signals, tt.method, 0)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Aggregate() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestAggregateWeightedAvg(t *testing.T) {
	now := int64(60_000)
	signals := []*domain.Signal{
		{CurrentStrength: 1.0, EmittedAt: now}, // fresh, weight 1
		{CurrentStrength: 0.0, EmittedAt: 0},   // one half-life old, weight 0.5
	}

	got := Aggregate(signals, AggregateWeightedAvg, now)
	want := 1.0 / 1.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Aggregate() = %f, want %f", got, want)
	}

	// Equal ages reduce to a plain average
	same := sigs(0.2, 0.6)
	got = Aggregate(same, AggregateWeightedAvg, 0)
	if math.Abs(got-0.4) > 1e-9 {
		t.Errorf("Aggregate() with equal ages = %f, want 0.4", got)
	}
}
