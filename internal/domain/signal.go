package domain

// Signal is one unit of propagating information. Signals are copied at
// each hop, never mutated: every propagation step produces a fresh copy
// with an incremented hop count, an appended path, and a reduced strength.
type Signal struct {
	ID              string  `json:"id" yaml:"id"`
	Type            string  `json:"type" yaml:"type"`
	InitialStrength float64 `json:"initial_strength" yaml:"initial_strength"`

	// CurrentStrength is monotonically non-increasing across hops
	CurrentStrength float64 `json:"current_strength" yaml:"current_strength"`

	SourceID  string `json:"source_id" yaml:"source_id"`
	EmitterID string `json:"emitter_id" yaml:"emitter_id"`
	EmittedAt int64  `json:"emitted_at" yaml:"emitted_at"`
	HopCount  int    `json:"hop_count" yaml:"hop_count"`

	// Path is the ordered list of visited node IDs, starting with the
	// source. HopCount == len(Path)-1 always holds.
	Path []string `json:"path" yaml:"path"`

	Payload any `json:"payload,omitempty" yaml:"payload,omitempty"`

	// TTL is the absolute lifetime in milliseconds; 0 means no limit
	TTL int64 `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// At returns the node the signal currently resides at (the last path entry)
func (s *Signal) At() string {
	if len(s.Path) == 0 {
		return s.SourceID
	}
	return s.Path[len(s.Path)-1]
}

// Age returns the elapsed milliseconds since emission
func (s *Signal) Age(now int64) int64 {
	return now - s.EmittedAt
}

// Hop returns a copy of the signal advanced to the target node with the
// given attenuated strength
func (s *Signal) Hop(targetID string, strength float64) *Signal {
	c := *s
	c.HopCount = s.HopCount + 1
	c.CurrentStrength = strength
	c.Path = make([]string, 0, len(s.Path)+1)
	c.Path = append(c.Path, s.Path...)
	c.Path = append(c.Path, targetID)
	return &c
}

// Clone returns a deep copy of the signal
func (s *Signal) Clone() *Signal {
	c := *s
	c.Path = append([]string(nil), s.Path...)
	return &c
}
