package network

import (
	"github.com/google/uuid"

	"mycelia/internal/domain"
)

// DetectResonance runs convergence detection on demand, in addition to
// the maintenance tick, and returns the newly created resonances.
func (m *Manager) DetectResonance() []*domain.Resonance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detectResonanceLocked(m.now())
}

// Resonances returns copies of every current resonance
func (m *Manager) Resonances() []*domain.Resonance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Resonance, 0, len(m.resonances))
	for _, res := range m.resonances {
		out = append(out, res.Clone())
	}
	return out
}

// detectResonanceLocked clusters recently-active geo-located nodes and
// promotes qualifying clusters into resonances.
//
// Clustering is greedy single-link: each unassigned node collects every
// still-unassigned node within MaxDistance of it. This is a single-pass
// approximation, not transitive connected-components clustering — a node
// outside the first node's radius but inside another member's is not
// merged. Downstream consumers depend on this exact grouping.
func (m *Manager) detectResonanceLocked(now int64) []*domain.Resonance {
	windowMs := m.cfg.Resonance.TimeWindow.Milliseconds()

	var candidates []*domain.Node
	for _, node := range m.nodes {
		if node.Position == nil || node.Type == domain.NodeTypeGhost {
			continue
		}
		if now-node.LastActiveAt > windowMs {
			continue
		}
		candidates = append(candidates, node)
	}

	assigned := make(map[string]bool, len(candidates))
	var created []*domain.Resonance

	for _, seed := range candidates {
		if assigned[seed.ID] {
			continue
		}
		cluster := []*domain.Node{seed}
		assigned[seed.ID] = true

		for _, other := range candidates {
			if assigned[other.ID] {
				continue
			}
			if domain.Haversine(*seed.Position, *other.Position) <= m.cfg.Resonance.MaxDistance {
				cluster = append(cluster, other)
				assigned[other.ID] = true
			}
		}

		if len(cluster) < m.cfg.Resonance.MinParticipants {
			continue
		}
		owners := distinctOwners(cluster)
		if len(owners) < m.cfg.Resonance.MinParticipants {
			continue
		}

		positions := make([]domain.GeoPosition, 0, len(cluster))
		for _, node := range cluster {
			positions = append(positions, *node.Position)
		}
		center := domain.Centroid(positions)

		var radius float64
		for _, p := range positions {
			if d := domain.Haversine(center, p); d > radius {
				radius = d
			}
		}

		strength := clusterStrength(cluster)
		serendipitous := !m.clusterConnectedLocked(cluster)

		if existing := m.matchResonanceLocked(center); existing != nil {
			existing.Center = center
			existing.Radius = radius
			existing.Participants = owners
			existing.Strength = strength
			existing.Serendipitous = serendipitous
			existing.UpdatedAt = now
			m.emit(EventResonanceUpdated, existing.Clone())
			continue
		}

		res := &domain.Resonance{
			ID:            uuid.NewString(),
			Center:        center,
			Radius:        radius,
			Participants:  owners,
			Strength:      strength,
			DetectedAt:    now,
			UpdatedAt:     now,
			Serendipitous: serendipitous,
		}
		m.resonances[res.ID] = res
		m.emit(EventResonanceDetected, res.Clone())
		created = append(created, res.Clone())
	}

	return created
}

// matchResonanceLocked returns an existing resonance whose centroid lies
// within the clustering radius of the given center, if any
func (m *Manager) matchResonanceLocked(center domain.GeoPosition) *domain.Resonance {
	for _, res := range m.resonances {
		if domain.Haversine(res.Center, center) <= m.cfg.Resonance.MaxDistance {
			return res
		}
	}
	return nil
}

// clusterConnectedLocked reports whether every cluster node is reachable
// from the first via hyphae whose both ends lie inside the cluster
func (m *Manager) clusterConnectedLocked(cluster []*domain.Node) bool {
	if len(cluster) <= 1 {
		return true
	}

	inCluster := make(map[string]bool, len(cluster))
	for _, node := range cluster {
		inCluster[node.ID] = true
	}

	visited := map[string]bool{cluster[0].ID: true}
	frontier := []string{cluster[0].ID}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		node := m.nodes[current]
		for _, hyphaID := range node.HyphaIDs {
			hypha, ok := m.hyphae[hyphaID]
			if !ok || !inCluster[hypha.SourceID] || !inCluster[hypha.TargetID] {
				continue
			}
			// Connectivity ignores direction: a directed hypha still
			// links its endpoints for serendipity purposes
			next := hypha.OtherEnd(current)
			if !visited[next] {
				visited[next] = true
				frontier = append(frontier, next)
			}
		}
	}

	return len(visited) == len(cluster)
}

func distinctOwners(cluster []*domain.Node) []string {
	seen := make(map[string]bool, len(cluster))
	var owners []string
	for _, node := range cluster {
		if node.OwnerID == "" || seen[node.OwnerID] {
			continue
		}
		seen[node.OwnerID] = true
		owners = append(owners, node.OwnerID)
	}
	return owners
}

// clusterStrength is the mean per-node activity plus a bounded bonus for
// participant count
func clusterStrength(cluster []*domain.Node) float64 {
	var total float64
	for _, node := range cluster {
		total += node.Activity()
	}
	bonus := 0.05 * float64(len(cluster))
	if bonus > 0.25 {
		bonus = 0.25
	}
	return clamp01(total/float64(len(cluster)) + bonus)
}
