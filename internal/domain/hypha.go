package domain

import (
	"crypto/sha256"
	"fmt"
)

// HyphaType represents the kind of a hypha
type HyphaType string

const (
	HyphaTypeStandard HyphaType = "standard"
	HyphaTypeTaproot  HyphaType = "taproot"
)

// Hypha represents a weighted filament connecting exactly two nodes
type Hypha struct {
	ID       string    `json:"id" yaml:"id"`
	SourceID string    `json:"source_id" yaml:"source_id"`
	TargetID string    `json:"target_id" yaml:"target_id"`
	Type     HyphaType `json:"type" yaml:"type"`

	// Strength is the structural weight of the filament in [0,1]
	Strength float64 `json:"strength" yaml:"strength"`

	// Conductance multiplies every signal strength passing through, in [0,1]
	Conductance float64 `json:"conductance" yaml:"conductance"`

	Directed     bool           `json:"directed" yaml:"directed"`
	CreatedAt    int64          `json:"created_at" yaml:"created_at"`
	LastSignalAt *int64         `json:"last_signal_at,omitempty" yaml:"last_signal_at,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewHypha creates a new hypha with a deterministic ID derived from its
// endpoints and type
func NewHypha(sourceID, targetID string, hyphaType HyphaType, now int64) *Hypha {
	h := &Hypha{
		SourceID:    sourceID,
		TargetID:    targetID,
		Type:        hyphaType,
		Strength:    1,
		Conductance: 1,
		CreatedAt:   now,
		Metadata:    make(map[string]any),
	}
	h.ID = h.GenerateID()
	return h
}

// GenerateID creates a deterministic ID for the hypha based on endpoints
func (h *Hypha) GenerateID() string {
	// Normalize endpoints for consistent ID
	from, to := h.SourceID, h.TargetID
	if !h.Directed && from > to {
		from, to = to, from
	}

	key := fmt.Sprintf("%s-%s-%s", from, to, h.Type)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}

// TraversableFrom reports whether a signal at the given node may cross
// this hypha. Undirected hyphae are traversable from either end.
func (h *Hypha) TraversableFrom(nodeID string) bool {
	if h.SourceID == nodeID {
		return true
	}
	return !h.Directed && h.TargetID == nodeID
}

// OtherEnd returns the node on the far side of the hypha relative to nodeID
func (h *Hypha) OtherEnd(nodeID string) string {
	if h.SourceID == nodeID {
		return h.TargetID
	}
	return h.SourceID
}

// Touches reports whether the hypha is incident to the given node
func (h *Hypha) Touches(nodeID string) bool {
	return h.SourceID == nodeID || h.TargetID == nodeID
}

// Clone returns a deep copy of the hypha
func (h *Hypha) Clone() *Hypha {
	c := *h
	if h.LastSignalAt != nil {
		ts := *h.LastSignalAt
		c.LastSignalAt = &ts
	}
	c.Metadata = make(map[string]any, len(h.Metadata))
	for k, v := range h.Metadata {
		c.Metadata[k] = v
	}
	return &c
}
