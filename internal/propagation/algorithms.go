package propagation

import (
	"math"
	"math/rand"
	"sort"

	"mycelia/internal/decay"
	"mycelia/internal/domain"
)

// Step is one forward movement of a signal: a fresh attenuated copy
// bound for a target node via a specific hypha.
type Step struct {
	TargetNodeID string
	Signal       *domain.Signal
	ViaHyphaID   string

	// DecayFactor is the total strength multiplier this step applied,
	// decay and conductance combined
	DecayFactor float64
}

// Propagate dispatches to the configured strategy. Unknown algorithm
// values, and the shortest-path alias, fall back to flood.
func Propagate(s *domain.Signal, nodeID string, nodes map[string]*domain.Node, hyphae map[string]*domain.Hypha, cfg Config, visited map[string]bool, now int64) []Step {
	switch cfg.Algorithm {
	case AlgorithmGradient:
		return gradient(s, nodeID, nodes, hyphae, cfg, visited, now)
	case AlgorithmRandomWalk:
		return randomWalk(s, nodeID, nodes, hyphae, cfg, visited, now)
	case AlgorithmDiffusion:
		return diffusion(s, nodeID, nodes, hyphae, cfg, visited, now)
	default:
		return flood(s, nodeID, nodes, hyphae, cfg, visited, now)
	}
}

// outlet pairs a traversable hypha with the node on its far end
type outlet struct {
	hypha *domain.Hypha
	node  *domain.Node
}

// outlets returns the unvisited neighbors reachable from nodeID, in the
// node's hypha-list order. Directed hyphae are only traversable from
// their source end.
func outlets(nodeID string, nodes map[string]*domain.Node, hyphae map[string]*domain.Hypha, visited map[string]bool) []outlet {
	node, ok := nodes[nodeID]
	if !ok {
		return nil
	}

	var out []outlet
	for _, hyphaID := range node.HyphaIDs {
		h, ok := hyphae[hyphaID]
		if !ok || !h.TraversableFrom(nodeID) {
			continue
		}
		neighborID := h.OtherEnd(nodeID)
		if visited[neighborID] {
			continue
		}
		neighbor, ok := nodes[neighborID]
		if !ok {
			continue
		}
		out = append(out, outlet{hypha: h, node: neighbor})
	}
	return out
}

// hopDecay computes the multi-factor decay for one hop: spatial distance
// between the two nodes (when both carry geo positions), the signal's
// age, and the topological distance after the hop.
func hopDecay(s *domain.Signal, from, to *domain.Node, cfg Config, now int64) float64 {
	var ch decay.Channels

	if from != nil && from.Position != nil && to.Position != nil {
		d := domain.Haversine(*from.Position, *to.Position)
		ch.Spatial = &d
	}

	age := float64(s.Age(now))
	ch.Temporal = &age

	hops := float64(s.HopCount + 1)
	ch.Topological = &hops

	return decay.ApplyMulti(ch, cfg.Decay)
}

// flood forwards the signal to every unvisited traversable neighbor,
// attenuated by multi-factor decay and hypha conductance. Neighbors
// whose resulting strength falls below MinStrength are pruned.
func flood(s *domain.Signal, nodeID string, nodes map[string]*domain.Node, hyphae map[string]*domain.Hypha, cfg Config, visited map[string]bool, now int64) []Step {
	from := nodes[nodeID]

	var steps []Step
	for _, o := range outlets(nodeID, nodes, hyphae, visited) {
		factor := hopDecay(s, from, o.node, cfg, now) * o.hypha.Conductance
		strength := s.CurrentStrength * factor
		if strength < cfg.MinStrength {
			continue
		}
		steps = append(steps, Step{
			TargetNodeID: o.node.ID,
			Signal:       s.Hop(o.node.ID, strength),
			ViaHyphaID:   o.hypha.ID,
			DecayFactor:  factor,
		})
	}
	return steps
}

// gradient scores every unvisited neighbor by decay, conductance, and
// the neighbor's own emitted strength, then forwards only to the top
// ~30% by score, at least one. The signal follows the strongest scent.
func gradient(s *domain.Signal, nodeID string, nodes map[string]*domain.Node, hyphae map[string]*domain.Hypha, cfg Config, visited map[string]bool, now int64) []Step {
	from := nodes[nodeID]
	outs := outlets(nodeID, nodes, hyphae, visited)
	if len(outs) == 0 {
		return nil
	}

	type scored struct {
		out    outlet
		factor float64
		score  float64
	}
	candidates := make([]scored, 0, len(outs))
	for _, o := range outs {
		factor := hopDecay(s, from, o.node, cfg, now) * o.hypha.Conductance
		candidates = append(candidates, scored{
			out:    o,
			factor: factor,
			score:  factor * o.node.SignalStrength,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	keep := int(math.Ceil(float64(len(candidates)) * 0.3))
	if keep < 1 {
		keep = 1
	}

	var steps []Step
	for _, c := range candidates[:keep] {
		strength := s.CurrentStrength * c.factor
		if strength < cfg.MinStrength {
			continue
		}
		steps = append(steps, Step{
			TargetNodeID: c.out.node.ID,
			Signal:       s.Hop(c.out.node.ID, strength),
			ViaHyphaID:   c.out.hypha.ID,
			DecayFactor:  c.factor,
		})
	}
	return steps
}

// randomWalk picks exactly one unvisited neighbor by weighted random
// selection, producing a probabilistic single path rather than a
// branching wave.
func randomWalk(s *domain.Signal, nodeID string, nodes map[string]*domain.Node, hyphae map[string]*domain.Hypha, cfg Config, visited map[string]bool, now int64) []Step {
	from := nodes[nodeID]
	outs := outlets(nodeID, nodes, hyphae, visited)
	if len(outs) == 0 {
		return nil
	}

	var total float64
	weights := make([]float64, len(outs))
	for i, o := range outs {
		w := o.hypha.Strength * o.hypha.Conductance
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return nil
	}

	r := randFloat(cfg.Rand) * total
	choice := outs[len(outs)-1]
	for i, w := range weights {
		if r < w {
			choice = outs[i]
			break
		}
		r -= w
	}

	factor := hopDecay(s, from, choice.node, cfg, now) * choice.hypha.Conductance
	strength := s.CurrentStrength * factor
	if strength < cfg.MinStrength {
		return nil
	}

	return []Step{{
		TargetNodeID: choice.node.ID,
		Signal:       s.Hop(choice.node.ID, strength),
		ViaHyphaID:   choice.hypha.ID,
		DecayFactor:  factor,
	}}
}

// diffusion splits the signal's strength across all unvisited neighbors
// proportionally to each hypha's share of the total conductance. The
// fractions sum to 1 before decay, modeling conserved-mass spreading.
func diffusion(s *domain.Signal, nodeID string, nodes map[string]*domain.Node, hyphae map[string]*domain.Hypha, cfg Config, visited map[string]bool, now int64) []Step {
	from := nodes[nodeID]
	outs := outlets(nodeID, nodes, hyphae, visited)
	if len(outs) == 0 {
		return nil
	}

	var total float64
	for _, o := range outs {
		total += o.hypha.Conductance
	}
	if total <= 0 {
		return nil
	}

	var steps []Step
	for _, o := range outs {
		fraction := o.hypha.Conductance / total
		factor := fraction * hopDecay(s, from, o.node, cfg, now)
		strength := s.CurrentStrength * factor
		if strength < cfg.MinStrength {
			continue
		}
		steps = append(steps, Step{
			TargetNodeID: o.node.ID,
			Signal:       s.Hop(o.node.ID, strength),
			ViaHyphaID:   o.hypha.ID,
			DecayFactor:  factor,
		})
	}
	return steps
}

func randFloat(r *rand.Rand) float64 {
	if r != nil {
		return r.Float64()
	}
	return rand.Float64()
}
