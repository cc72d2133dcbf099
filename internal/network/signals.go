package network

import (
	"mycelia/internal/domain"
	"mycelia/internal/propagation"
)

// PropagatedPayload is the event payload for signal:propagated
type PropagatedPayload struct {
	Signal       *domain.Signal `json:"signal"`
	TargetNodeID string         `json:"target_node_id"`
	ViaHyphaID   string         `json:"via_hypha_id"`
	DecayFactor  float64        `json:"decay_factor"`
}

// EmitSignal emits a signal at the source node and synchronously drains
// the propagation queue: the full reachable wave is computed before the
// call returns, bounded by MaxHops and MinStrength. Returns nil without
// emitting any event when the source node does not exist. At capacity,
// the oldest active signal is evicted silently.
func (m *Manager) EmitSignal(sourceID, emitterID string, cfg propagation.EmissionConfig) *domain.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, ok := m.nodes[sourceID]
	if !ok {
		return nil
	}

	if len(m.signals) >= m.cfg.MaxActiveSignals {
		m.evictOldestLocked()
	}

	now := m.now()
	sig := propagation.New(sourceID, emitterID, cfg, now)
	m.signals[sig.ID] = sig

	m.attachLocked(sourceID, sig, now)
	source.SignalStrength = clamp01(source.SignalStrength + sig.InitialStrength)
	source.Touch(now)

	m.emit(EventSignalEmitted, sig.Clone())

	m.queue = append(m.queue, sig.Clone())
	m.drainLocked()

	return sig.Clone()
}

// drainLocked pops signals off the work queue until it is empty. Dead
// signals are dropped silently; live ones take one propagation step and
// their surviving copies are re-enqueued. The loop is bounded because
// every step strictly grows a lineage's path within a finite node set.
func (m *Manager) drainLocked() {
	for len(m.queue) > 0 {
		sig := m.queue[0]
		m.queue = m.queue[1:]

		now := m.now()
		if !propagation.Alive(sig, m.cfg.Propagation, now) {
			continue
		}

		visited := make(map[string]bool, len(sig.Path))
		for _, id := range sig.Path {
			visited[id] = true
		}

		steps := propagation.Propagate(sig, sig.At(), m.nodes, m.hyphae, m.cfg.Propagation, visited, now)
		for _, step := range steps {
			target, ok := m.nodes[step.TargetNodeID]
			if !ok {
				continue
			}

			m.attachLocked(step.TargetNodeID, step.Signal, now)
			target.Touch(now)

			if hypha, ok := m.hyphae[step.ViaHyphaID]; ok {
				ts := now
				hypha.LastSignalAt = &ts
			}

			m.emit(EventSignalPropagated, PropagatedPayload{
				Signal:       step.Signal.Clone(),
				TargetNodeID: step.TargetNodeID,
				ViaHyphaID:   step.ViaHyphaID,
				DecayFactor:  step.DecayFactor,
			})

			if propagation.Alive(step.Signal, m.cfg.Propagation, now) {
				m.queue = append(m.queue, step.Signal)
			}
		}
	}
}

// attachLocked makes the signal copy resident at the node and re-derives
// the node's received-signal level from its resident set
func (m *Manager) attachLocked(nodeID string, sig *domain.Signal, now int64) {
	list := m.residents[nodeID]
	replaced := false
	for i, resident := range list {
		if resident.ID == sig.ID {
			list[i] = sig.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, sig.Clone())
	}
	m.residents[nodeID] = list
	m.reaggregateLocked(nodeID, now)
}

// reaggregateLocked recomputes a node's ReceivedSignal from its current
// resident signal set
func (m *Manager) reaggregateLocked(nodeID string, now int64) {
	node, ok := m.nodes[nodeID]
	if !ok {
		return
	}
	node.ReceivedSignal = propagation.Aggregate(m.residents[nodeID], m.cfg.Aggregation, now)
}

// RemoveSignal deletes a signal from the active set and from every
// node's resident list, re-aggregating each affected node. It reports
// whether the signal existed.
func (m *Manager) RemoveSignal(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.signals[id]; !ok {
		return false
	}
	m.removeSignalLocked(id)
	return true
}

func (m *Manager) removeSignalLocked(id string) {
	delete(m.signals, id)

	now := m.now()
	for nodeID, list := range m.residents {
		kept := list[:0]
		removed := false
		for _, resident := range list {
			if resident.ID == id {
				removed = true
				continue
			}
			kept = append(kept, resident)
		}
		if !removed {
			continue
		}
		if len(kept) == 0 {
			delete(m.residents, nodeID)
		} else {
			m.residents[nodeID] = kept
		}
		m.reaggregateLocked(nodeID, now)
	}

	kept := m.queue[:0]
	for _, queued := range m.queue {
		if queued.ID != id {
			kept = append(kept, queued)
		}
	}
	m.queue = kept
}

// GetSignal returns a copy of the active signal, or nil
func (m *Manager) GetSignal(id string) *domain.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig, ok := m.signals[id]
	if !ok {
		return nil
	}
	return sig.Clone()
}

// ActiveSignals returns copies of every active signal
func (m *Manager) ActiveSignals() []*domain.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Signal, 0, len(m.signals))
	for _, sig := range m.signals {
		out = append(out, sig.Clone())
	}
	return out
}

// evictOldestLocked silently drops the active signal with the earliest
// emission time
func (m *Manager) evictOldestLocked() {
	var oldestID string
	var oldestAt int64
	for id, sig := range m.signals {
		if oldestID == "" || sig.EmittedAt < oldestAt {
			oldestID = id
			oldestAt = sig.EmittedAt
		}
	}
	if oldestID != "" {
		m.removeSignalLocked(oldestID)
	}
}
