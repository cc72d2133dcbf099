package network

import "mycelia/internal/domain"

// Export returns a plain-data snapshot of the network: deep copies, no
// live references
func (m *Manager) Export() *domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := &domain.Snapshot{
		Nodes:      make([]*domain.Node, 0, len(m.nodes)),
		Hyphae:     make([]*domain.Hypha, 0, len(m.hyphae)),
		Signals:    make([]*domain.Signal, 0, len(m.signals)),
		Resonances: make([]*domain.Resonance, 0, len(m.resonances)),
	}
	for _, node := range m.nodes {
		snap.Nodes = append(snap.Nodes, node.Clone())
	}
	for _, hypha := range m.hyphae {
		snap.Hyphae = append(snap.Hyphae, hypha.Clone())
	}
	for _, sig := range m.signals {
		snap.Signals = append(snap.Signals, sig.Clone())
	}
	for _, res := range m.resonances {
		snap.Resonances = append(snap.Resonances, res.Clone())
	}
	return snap
}

// Import replaces the entire network state with the snapshot's contents
// and recomputes statistics. Signals become resident at the last node of
// their path again; the work queue is cleared.
func (m *Manager) Import(snap *domain.Snapshot) {
	if snap == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes = make(map[string]*domain.Node, len(snap.Nodes))
	m.hyphae = make(map[string]*domain.Hypha, len(snap.Hyphae))
	m.signals = make(map[string]*domain.Signal, len(snap.Signals))
	m.resonances = make(map[string]*domain.Resonance, len(snap.Resonances))
	m.residents = make(map[string][]*domain.Signal)
	m.queue = nil

	for _, node := range snap.Nodes {
		clone := node.Clone()
		if clone.Metadata == nil {
			clone.Metadata = make(map[string]any)
		}
		if clone.HyphaIDs == nil {
			clone.HyphaIDs = make([]string, 0)
		}
		m.nodes[clone.ID] = clone
	}
	for _, hypha := range snap.Hyphae {
		clone := hypha.Clone()
		source, ok := m.nodes[clone.SourceID]
		if !ok {
			continue
		}
		target, ok := m.nodes[clone.TargetID]
		if !ok {
			continue
		}
		m.hyphae[clone.ID] = clone
		source.AttachHypha(clone.ID)
		target.AttachHypha(clone.ID)
	}
	for _, sig := range snap.Signals {
		clone := sig.Clone()
		m.signals[clone.ID] = clone
		if _, ok := m.nodes[clone.At()]; ok {
			m.attachResidentLocked(clone.At(), clone)
		}
	}
	for _, res := range snap.Resonances {
		m.resonances[res.ID] = res.Clone()
	}

	m.refreshStatsLocked()
}

// attachResidentLocked records residency without re-aggregating;
// imported nodes keep the received levels the snapshot carried
func (m *Manager) attachResidentLocked(nodeID string, sig *domain.Signal) {
	m.residents[nodeID] = append(m.residents[nodeID], sig)
}

// State bundles a full network snapshot with the current statistics
type State struct {
	Snapshot *domain.Snapshot `json:"snapshot"`
	Stats    Stats            `json:"stats"`
}

// GetState returns a deep copy of the network's observable state
func (m *Manager) GetState() State {
	snap := m.Export()
	return State{Snapshot: snap, Stats: m.Stats()}
}
