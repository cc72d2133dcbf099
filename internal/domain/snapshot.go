package domain

// Snapshot is a plain-data export of a complete network: no live
// references, safe to serialize or hand to another network instance.
type Snapshot struct {
	Nodes      []*Node      `json:"nodes" yaml:"nodes"`
	Hyphae     []*Hypha     `json:"hyphae" yaml:"hyphae"`
	Signals    []*Signal    `json:"signals" yaml:"signals"`
	Resonances []*Resonance `json:"resonances" yaml:"resonances"`
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Nodes:      make([]*Node, 0, len(s.Nodes)),
		Hyphae:     make([]*Hypha, 0, len(s.Hyphae)),
		Signals:    make([]*Signal, 0, len(s.Signals)),
		Resonances: make([]*Resonance, 0, len(s.Resonances)),
	}
	for _, n := range s.Nodes {
		c.Nodes = append(c.Nodes, n.Clone())
	}
	for _, h := range s.Hyphae {
		c.Hyphae = append(c.Hyphae, h.Clone())
	}
	for _, sig := range s.Signals {
		c.Signals = append(c.Signals, sig.Clone())
	}
	for _, r := range s.Resonances {
		c.Resonances = append(c.Resonances, r.Clone())
	}
	return c
}
