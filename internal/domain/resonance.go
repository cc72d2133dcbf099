package domain

// Resonance is a detected convergence pattern: a cluster of
// geographically close, recently active nodes with independent owners.
type Resonance struct {
	ID     string      `json:"id" yaml:"id"`
	Center GeoPosition `json:"center" yaml:"center"`

	// Radius is the distance in meters from the center to the farthest
	// participating node
	Radius float64 `json:"radius" yaml:"radius"`

	// Participants holds the distinct owner IDs of the clustered nodes
	Participants []string `json:"participants" yaml:"participants"`

	Strength   float64 `json:"strength" yaml:"strength"`
	DetectedAt int64   `json:"detected_at" yaml:"detected_at"`
	UpdatedAt  int64   `json:"updated_at" yaml:"updated_at"`

	// Serendipitous is true when the participating nodes are not all
	// mutually reachable through hyphae inside the cluster
	Serendipitous bool `json:"is_serendipitous" yaml:"is_serendipitous"`
}

// Clone returns a deep copy of the resonance
func (r *Resonance) Clone() *Resonance {
	c := *r
	c.Participants = append([]string(nil), r.Participants...)
	return &c
}
