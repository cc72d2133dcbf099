package network

import (
	"sort"

	"mycelia/internal/decay"
	"mycelia/internal/domain"
	"mycelia/internal/propagation"
)

// nodeDecayHalfLifeMs is the half-life applied to node strengths during
// maintenance: an inactive node loses half its strength per minute.
const nodeDecayHalfLifeMs = 60_000

// Maintain runs one maintenance pass: prune dead signals, decay node
// strengths, fade stale resonances, expire inactive nodes, and re-run
// resonance detection. The periodic job calls this on every tick; tests
// call it directly.
func (m *Manager) Maintain() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	for id, sig := range m.signals {
		if !propagation.Alive(sig, m.cfg.Propagation, now) {
			expired := sig.Clone()
			m.removeSignalLocked(id)
			m.emit(EventSignalExpired, expired)
		}
	}

	m.decayNodesLocked(now)
	m.fadeResonancesLocked(now)
	if m.cfg.NodeExpiration > 0 {
		m.expireNodesLocked(now)
	}
	m.detectResonanceLocked(now)
}

// decayNodesLocked applies exponential decay to every node's strengths
// for the time elapsed since the previous pass (or since the node's last
// activity, whichever is shorter)
func (m *Manager) decayNodesLocked(now int64) {
	for _, node := range m.nodes {
		since := m.lastDecayAt
		if node.LastActiveAt > since {
			since = node.LastActiveAt
		}
		factor := decay.HalfLife(now-since, nodeDecayHalfLifeMs)
		node.SignalStrength *= factor
		node.ReceivedSignal *= factor
	}
	m.lastDecayAt = now
}

// fadeResonancesLocked removes resonances stale beyond twice their
// configured time window
func (m *Manager) fadeResonancesLocked(now int64) {
	staleAfter := 2 * m.cfg.Resonance.TimeWindow.Milliseconds()
	for id, res := range m.resonances {
		if now-res.UpdatedAt > staleAfter {
			delete(m.resonances, id)
			m.emit(EventResonanceFaded, res.Clone())
		}
	}
}

// expireNodesLocked demotes nodes inactive past the expiration threshold
// to ghost on the first pass, and removes nodes that are already ghost
func (m *Manager) expireNodesLocked(now int64) {
	threshold := m.cfg.NodeExpiration.Milliseconds()

	var expired []string
	for id, node := range m.nodes {
		if now-node.LastActiveAt < threshold {
			continue
		}
		expired = append(expired, id)
	}

	for _, id := range expired {
		node := m.nodes[id]
		if node.Type == domain.NodeTypeGhost {
			m.removeNodeLocked(id)
			continue
		}
		node.Type = domain.NodeTypeGhost
		m.emit(EventNodeUpdated, node.Clone())
	}
}

// Stats holds network-wide aggregates recomputed by the stats job
type Stats struct {
	Nodes         int `json:"nodes"`
	Hyphae        int `json:"hyphae"`
	ActiveSignals int `json:"active_signals"`
	Resonances    int `json:"resonances"`

	// Density is edges over the maximum undirected pair count
	Density float64 `json:"density"`

	// MeanActivity is the mean combined node activity in [0,1]
	MeanActivity float64 `json:"mean_activity"`

	MostActiveNodeID string `json:"most_active_node_id,omitempty"`

	// HottestArea is the centroid of the ten most active geo-located
	// nodes, when any exist
	HottestArea *domain.GeoPosition `json:"hottest_area,omitempty"`

	UpdatedAt int64 `json:"updated_at"`
}

// RefreshStats recomputes the network statistics and emits
// network:stats-updated
func (m *Manager) RefreshStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshStatsLocked()
}

func (m *Manager) refreshStatsLocked() Stats {
	now := m.now()
	stats := Stats{
		Nodes:         len(m.nodes),
		Hyphae:        len(m.hyphae),
		ActiveSignals: len(m.signals),
		Resonances:    len(m.resonances),
		UpdatedAt:     now,
	}

	n := len(m.nodes)
	if n > 1 {
		stats.Density = float64(len(m.hyphae)) / (float64(n) * float64(n-1) / 2)
	}

	type hot struct {
		pos      domain.GeoPosition
		activity float64
	}
	var hottest []hot
	var total, best float64
	for _, node := range m.nodes {
		activity := node.Activity()
		total += activity
		if activity > best || stats.MostActiveNodeID == "" {
			best = activity
			stats.MostActiveNodeID = node.ID
		}
		if node.Position != nil {
			hottest = append(hottest, hot{pos: *node.Position, activity: activity})
		}
	}
	if n > 0 {
		stats.MeanActivity = total / float64(n)
	}

	if len(hottest) > 0 {
		// Centroid of the top-10 most active geo-located nodes
		sort.SliceStable(hottest, func(i, j int) bool {
			return hottest[i].activity > hottest[j].activity
		})
		if len(hottest) > 10 {
			hottest = hottest[:10]
		}
		positions := make([]domain.GeoPosition, 0, len(hottest))
		for _, h := range hottest {
			positions = append(positions, h.pos)
		}
		center := domain.Centroid(positions)
		stats.HottestArea = &center
	}

	m.stats = stats
	m.emit(EventStatsUpdated, stats)
	return stats
}

// Stats returns the most recently computed statistics
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
