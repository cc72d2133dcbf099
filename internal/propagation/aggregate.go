package propagation

import (
	"mycelia/internal/decay"
	"mycelia/internal/domain"
)

// AggregationMethod selects how the signals resident at one node fold
// into the node's single received-signal scalar
type AggregationMethod string

const (
	// AggregateSum adds strengths, clamped to 1
	AggregateSum AggregationMethod = "sum"
	AggregateMax AggregationMethod = "max"
	AggregateAvg AggregationMethod = "average"

	// AggregateWeightedAvg averages with exponential recency weighting
	AggregateWeightedAvg AggregationMethod = "weighted-average"
)

// recencyHalfLifeMs is the half-life for weighted-average recency
// weighting: a signal 60 seconds old counts half as much as a fresh one.
const recencyHalfLifeMs = 60_000

// Aggregate combines the signals resident at a node into one value in
// [0,1]. An empty signal set aggregates to 0.
func Aggregate(signals []*domain.Signal, method AggregationMethod, now int64) float64 {
	if len(signals) == 0 {
		return 0
	}

	switch method {
	case AggregateMax:
		var out float64
		for _, s := range signals {
			if s.CurrentStrength > out {
				out = s.CurrentStrength
			}
		}
		return out

	case AggregateAvg:
		var sum float64
		for _, s := range signals {
			sum += s.CurrentStrength
		}
		return sum / float64(len(signals))

	case AggregateWeightedAvg:
		var weighted, weights float64
		for _, s := range signals {
			w := decay.HalfLife(s.Age(now), recencyHalfLifeMs)
			weighted += s.CurrentStrength * w
			weights += w
		}
		if weights == 0 {
			return 0
		}
		return weighted / weights

	default: // sum
		var sum float64
		for _, s := range signals {
			sum += s.CurrentStrength
		}
		if sum > 1 {
			return 1
		}
		return sum
	}
}
