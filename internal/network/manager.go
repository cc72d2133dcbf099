// Package network implements the stateful orchestrator of the mycelium
// simulation: it owns nodes, hyphae, active signals, and resonances,
// drives propagation through a work queue, runs periodic maintenance and
// statistics jobs, and emits a typed event stream.
package network

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"mycelia/internal/domain"
)

// Manager owns one mycelium network instance. All mutation methods are
// serialized through an internal mutex so the periodic jobs and external
// callers do not race; within a call, propagation runs to completion
// before the method returns.
type Manager struct {
	mu  sync.Mutex
	cfg Config

	nodes      map[string]*domain.Node
	hyphae     map[string]*domain.Hypha
	signals    map[string]*domain.Signal
	resonances map[string]*domain.Resonance

	// residents maps node ID to the signal copies currently resident
	// there; the node's ReceivedSignal is always the aggregation of this
	// set
	residents map[string][]*domain.Signal

	// queue holds signals awaiting their next propagation step, FIFO
	queue []*domain.Signal

	stats        Stats
	lastDecayAt  int64
	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int

	// now is the millisecond clock; tests inject a deterministic one
	now func() int64

	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a manager with the given configuration. Out-of-range
// configuration values are clamped, not rejected.
func New(cfg Config) *Manager {
	cfg.normalize()
	m := &Manager{
		cfg:        cfg,
		nodes:      make(map[string]*domain.Node),
		hyphae:     make(map[string]*domain.Hypha),
		signals:    make(map[string]*domain.Signal),
		resonances: make(map[string]*domain.Resonance),
		residents:  make(map[string][]*domain.Signal),
		listeners:  make(map[int]Listener),
		now:        func() int64 { return time.Now().UnixMilli() },
	}
	m.lastDecayAt = m.now()
	return m
}

// Start launches the periodic maintenance and statistics jobs.
// Stop must be called to release their tickers.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.done = make(chan struct{})

	m.wg.Add(1)
	go m.run(m.cfg.MaintenanceInterval, m.cfg.StatsInterval)
}

// Stop halts the periodic jobs and releases their tickers
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.done)
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Manager) run(maintenanceEvery, statsEvery time.Duration) {
	defer m.wg.Done()

	maintenance := time.NewTicker(maintenanceEvery)
	defer maintenance.Stop()
	stats := time.NewTicker(statsEvery)
	defer stats.Stop()

	for {
		select {
		case <-maintenance.C:
			m.Maintain()
		case <-stats.C:
			m.RefreshStats()
		case <-m.done:
			return
		}
	}
}

// NodeParams describes a node to create
type NodeParams struct {
	ID             string                 `json:"id,omitempty"`
	Type           domain.NodeType        `json:"type,omitempty"`
	Label          string                 `json:"label"`
	Position       *domain.GeoPosition    `json:"position,omitempty"`
	CanvasPosition *domain.CanvasPosition `json:"canvas_position,omitempty"`
	Metadata       map[string]any         `json:"metadata,omitempty"`
	OwnerID        string                 `json:"owner_id,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	SignalStrength float64                `json:"signal_strength,omitempty"`
}

// CreateNode adds a node to the network and returns a copy of it
func (m *Manager) CreateNode(params NodeParams) *domain.Node {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	if existing, ok := m.nodes[id]; ok {
		return existing.Clone()
	}

	nodeType := params.Type
	if nodeType == "" {
		nodeType = domain.NodeTypeStandard
	}

	node := domain.NewNode(id, nodeType, params.Label, m.now())
	node.Position = params.Position
	node.CanvasPosition = params.CanvasPosition
	node.OwnerID = params.OwnerID
	node.Tags = append([]string(nil), params.Tags...)
	node.SignalStrength = clamp01(params.SignalStrength)
	for k, v := range params.Metadata {
		node.Metadata[k] = v
	}

	m.nodes[id] = node
	m.emit(EventNodeCreated, node.Clone())
	return node.Clone()
}

// NodeUpdate is a partial node mutation; nil fields are left unchanged
type NodeUpdate struct {
	Type           *domain.NodeType       `json:"type,omitempty"`
	Label          *string                `json:"label,omitempty"`
	Position       *domain.GeoPosition    `json:"position,omitempty"`
	CanvasPosition *domain.CanvasPosition `json:"canvas_position,omitempty"`
	Metadata       map[string]any         `json:"metadata,omitempty"`
	OwnerID        *string                `json:"owner_id,omitempty"`
	Tags           *[]string              `json:"tags,omitempty"`
	SignalStrength *float64               `json:"signal_strength,omitempty"`
	ReceivedSignal *float64               `json:"received_signal,omitempty"`
}

// UpdateNode applies a partial update and returns a copy of the node,
// or nil if the node does not exist
func (m *Manager) UpdateNode(id string, update NodeUpdate) *domain.Node {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[id]
	if !ok {
		return nil
	}

	if update.Type != nil {
		node.Type = *update.Type
	}
	if update.Label != nil {
		node.Label = *update.Label
	}
	if update.Position != nil {
		p := *update.Position
		node.Position = &p
	}
	if update.CanvasPosition != nil {
		p := *update.CanvasPosition
		node.CanvasPosition = &p
	}
	for k, v := range update.Metadata {
		node.Metadata[k] = v
	}
	if update.OwnerID != nil {
		node.OwnerID = *update.OwnerID
	}
	if update.Tags != nil {
		node.Tags = append([]string(nil), (*update.Tags)...)
	}
	if update.SignalStrength != nil {
		node.SignalStrength = clamp01(*update.SignalStrength)
	}
	if update.ReceivedSignal != nil {
		node.ReceivedSignal = clamp01(*update.ReceivedSignal)
	}
	node.Touch(m.now())

	m.emit(EventNodeUpdated, node.Clone())
	return node.Clone()
}

// RemoveNode deletes a node and cascades to its incident hyphae.
// It reports whether the node existed.
func (m *Manager) RemoveNode(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeNodeLocked(id)
}

func (m *Manager) removeNodeLocked(id string) bool {
	node, ok := m.nodes[id]
	if !ok {
		return false
	}

	for _, hyphaID := range append([]string(nil), node.HyphaIDs...) {
		m.removeHyphaLocked(hyphaID)
	}

	delete(m.residents, id)
	delete(m.nodes, id)
	m.emit(EventNodeRemoved, node.Clone())
	return true
}

// GetNode returns a copy of the node, or nil if it does not exist
func (m *Manager) GetNode(id string) *domain.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, ok := m.nodes[id]
	if !ok {
		return nil
	}
	return node.Clone()
}

// GetAllNodes returns copies of every node
func (m *Manager) GetAllNodes() []*domain.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		out = append(out, node.Clone())
	}
	return out
}

// GeoFilter restricts a node search to a radius around a center
type GeoFilter struct {
	Center domain.GeoPosition `json:"center"`
	Radius float64            `json:"radius"`
}

// FindCriteria filters nodes; all set criteria must match
type FindCriteria struct {
	Type    *domain.NodeType `json:"type,omitempty"`
	OwnerID string           `json:"owner_id,omitempty"`
	Tags    []string         `json:"tags,omitempty"`
	Near    *GeoFilter       `json:"near,omitempty"`
}

// FindNodes returns copies of every node matching all criteria
func (m *Manager) FindNodes(criteria FindCriteria) []*domain.Node {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Node
	for _, node := range m.nodes {
		if criteria.Type != nil && node.Type != *criteria.Type {
			continue
		}
		if criteria.OwnerID != "" && node.OwnerID != criteria.OwnerID {
			continue
		}
		if !hasAllTags(node, criteria.Tags) {
			continue
		}
		if criteria.Near != nil {
			if node.Position == nil {
				continue
			}
			if domain.Haversine(*node.Position, criteria.Near.Center) > criteria.Near.Radius {
				continue
			}
		}
		out = append(out, node.Clone())
	}
	return out
}

func hasAllTags(node *domain.Node, tags []string) bool {
	for _, tag := range tags {
		if !node.HasTag(tag) {
			return false
		}
	}
	return true
}

// HyphaParams describes a hypha to create
type HyphaParams struct {
	SourceID    string           `json:"source_id"`
	TargetID    string           `json:"target_id"`
	Type        domain.HyphaType `json:"type,omitempty"`
	Strength    *float64         `json:"strength,omitempty"`
	Conductance *float64         `json:"conductance,omitempty"`
	Directed    bool             `json:"directed,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

// CreateHypha connects two existing nodes and returns a copy of the new
// hypha, or nil if either endpoint is missing. Both endpoints' hypha
// lists are kept in sync.
func (m *Manager) CreateHypha(params HyphaParams) *domain.Hypha {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, ok := m.nodes[params.SourceID]
	if !ok {
		return nil
	}
	target, ok := m.nodes[params.TargetID]
	if !ok {
		return nil
	}

	hyphaType := params.Type
	if hyphaType == "" {
		hyphaType = domain.HyphaTypeStandard
	}

	hypha := domain.NewHypha(params.SourceID, params.TargetID, hyphaType, m.now())
	hypha.Directed = params.Directed
	hypha.ID = hypha.GenerateID()
	if params.Strength != nil {
		hypha.Strength = clamp01(*params.Strength)
	}
	if params.Conductance != nil {
		hypha.Conductance = clamp01(*params.Conductance)
	}
	for k, v := range params.Metadata {
		hypha.Metadata[k] = v
	}

	if existing, ok := m.hyphae[hypha.ID]; ok {
		return existing.Clone()
	}

	m.hyphae[hypha.ID] = hypha
	source.AttachHypha(hypha.ID)
	target.AttachHypha(hypha.ID)

	m.emit(EventHyphaCreated, hypha.Clone())
	return hypha.Clone()
}

// HyphaUpdate is a partial hypha mutation; nil fields are left unchanged
type HyphaUpdate struct {
	Type        *domain.HyphaType `json:"type,omitempty"`
	Strength    *float64          `json:"strength,omitempty"`
	Conductance *float64          `json:"conductance,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// UpdateHypha applies a partial update and returns a copy of the hypha,
// or nil if it does not exist
func (m *Manager) UpdateHypha(id string, update HyphaUpdate) *domain.Hypha {
	m.mu.Lock()
	defer m.mu.Unlock()

	hypha, ok := m.hyphae[id]
	if !ok {
		return nil
	}

	if update.Type != nil {
		hypha.Type = *update.Type
	}
	if update.Strength != nil {
		hypha.Strength = clamp01(*update.Strength)
	}
	if update.Conductance != nil {
		hypha.Conductance = clamp01(*update.Conductance)
	}
	for k, v := range update.Metadata {
		hypha.Metadata[k] = v
	}

	m.emit(EventHyphaUpdated, hypha.Clone())
	return hypha.Clone()
}

// RemoveHypha deletes a hypha and detaches it from both endpoints.
// It reports whether the hypha existed.
func (m *Manager) RemoveHypha(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeHyphaLocked(id)
}

func (m *Manager) removeHyphaLocked(id string) bool {
	hypha, ok := m.hyphae[id]
	if !ok {
		return false
	}

	if source, ok := m.nodes[hypha.SourceID]; ok {
		source.DetachHypha(id)
	}
	if target, ok := m.nodes[hypha.TargetID]; ok {
		target.DetachHypha(id)
	}

	delete(m.hyphae, id)
	m.emit(EventHyphaRemoved, hypha.Clone())
	return true
}

// GetHypha returns a copy of the hypha, or nil if it does not exist
func (m *Manager) GetHypha(id string) *domain.Hypha {
	m.mu.Lock()
	defer m.mu.Unlock()
	hypha, ok := m.hyphae[id]
	if !ok {
		return nil
	}
	return hypha.Clone()
}

// GetNodeHyphae returns copies of the node's incident hyphae in
// attachment order
func (m *Manager) GetNodeHyphae(nodeID string) []*domain.Hypha {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[nodeID]
	if !ok {
		return nil
	}

	out := make([]*domain.Hypha, 0, len(node.HyphaIDs))
	for _, id := range node.HyphaIDs {
		if hypha, ok := m.hyphae[id]; ok {
			out = append(out, hypha.Clone())
		}
	}
	return out
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
