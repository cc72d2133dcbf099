package domain

// NodeType represents the kind of a mycelium node
type NodeType string

const (
	NodeTypeStandard NodeType = "standard"
	// NodeTypeGhost marks an expired node kept for history. Ghost nodes
	// remain traversable but no longer count as active participants.
	NodeTypeGhost NodeType = "ghost"
)

// Node represents a point of interest in the mycelium network
type Node struct {
	ID             string          `json:"id" yaml:"id"`
	Type           NodeType        `json:"type" yaml:"type"`
	Label          string          `json:"label" yaml:"label"`
	Position       *GeoPosition    `json:"position,omitempty" yaml:"position,omitempty"`
	CanvasPosition *CanvasPosition `json:"canvas_position,omitempty" yaml:"canvas_position,omitempty"`
	CreatedAt      int64           `json:"created_at" yaml:"created_at"`
	LastActiveAt   int64           `json:"last_active_at" yaml:"last_active_at"`
	SignalStrength float64         `json:"signal_strength" yaml:"signal_strength"`
	ReceivedSignal float64         `json:"received_signal" yaml:"received_signal"`
	Metadata       map[string]any  `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// HyphaIDs lists incident hyphae in creation order. The network
	// manager keeps this in sync with hypha creation and removal; the
	// list holds IDs only, never references.
	HyphaIDs []string `json:"hyphae" yaml:"hyphae"`

	OwnerID string   `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// NewNode creates a new node with initialized collections
func NewNode(id string, nodeType NodeType, label string, now int64) *Node {
	return &Node{
		ID:           id,
		Type:         nodeType,
		Label:        label,
		CreatedAt:    now,
		LastActiveAt: now,
		Metadata:     make(map[string]any),
		HyphaIDs:     make([]string, 0),
	}
}

// Touch records activity on the node
func (n *Node) Touch(now int64) {
	n.LastActiveAt = now
}

// HasTag reports whether the node carries the given tag
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AttachHypha appends a hypha back-reference if not already present
func (n *Node) AttachHypha(hyphaID string) {
	for _, id := range n.HyphaIDs {
		if id == hyphaID {
			return
		}
	}
	n.HyphaIDs = append(n.HyphaIDs, hyphaID)
}

// DetachHypha removes a hypha back-reference
func (n *Node) DetachHypha(hyphaID string) {
	for i, id := range n.HyphaIDs {
		if id == hyphaID {
			n.HyphaIDs = append(n.HyphaIDs[:i], n.HyphaIDs[i+1:]...)
			return
		}
	}
}

// Activity returns the node's combined activity level in [0,1]
func (n *Node) Activity() float64 {
	return (n.SignalStrength + n.ReceivedSignal) / 2
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	c := *n
	if n.Position != nil {
		p := *n.Position
		c.Position = &p
	}
	if n.CanvasPosition != nil {
		p := *n.CanvasPosition
		c.CanvasPosition = &p
	}
	c.Metadata = make(map[string]any, len(n.Metadata))
	for k, v := range n.Metadata {
		c.Metadata[k] = v
	}
	c.HyphaIDs = append([]string(nil), n.HyphaIDs...)
	c.Tags = append([]string(nil), n.Tags...)
	return &c
}
