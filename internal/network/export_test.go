package network

import (
	"testing"

	"mycelia/internal/domain"
	"mycelia/internal/propagation"
)

func TestExportImportRoundTrip(t *testing.T) {
	m, _ := newTestManager(lineConfig())
	m.CreateNode(NodeParams{ID: "a", Label: "alpha", OwnerID: "alice",
		Position: &domain.GeoPosition{Lat: 1, Lng: 2}, Tags: []string{"t1"}})
	m.CreateNode(NodeParams{ID: "b", Label: "beta"})
	h := m.CreateHypha(HyphaParams{SourceID: "a", TargetID: "b"})
	sig := m.EmitSignal("a", "", propagation.EmissionConfig{InitialStrength: 1.0})

	snap := m.Export()

	if len(snap.Nodes) != 2 || len(snap.Hyphae) != 1 || len(snap.Signals) != 1 {
		t.Fatalf("snapshot = %d nodes, %d hyphae, %d signals; want 2/1/1",
			len(snap.Nodes), len(snap.Hyphae), len(snap.Signals))
	}

	other, _ := newTestManager(lineConfig())
	other.Import(snap)

	node := other.GetNode("a")
	if node == nil {
		t.Fatal("imported network lacks node a")
	}
	if node.Label != "alpha" || node.OwnerID != "alice" || !node.HasTag("t1") {
		t.Errorf("imported node = %+v, want original fields", node)
	}
	if node.Position == nil || node.Position.Lat != 1 {
		t.Errorf("imported position = %+v, want {1 2}", node.Position)
	}

	// Hypha back-references are rebuilt on both ends
	if got := other.GetNodeHyphae("a"); len(got) != 1 || got[0].ID != h.ID {
		t.Errorf("node a hyphae = %v, want [%s]", got, h.ID)
	}
	if got := other.GetNodeHyphae("b"); len(got) != 1 {
		t.Errorf("node b hyphae = %v, want one entry", got)
	}

	if other.GetSignal(sig.ID) == nil {
		t.Error("imported network lacks the active signal")
	}

	if got := other.Stats(); got.Nodes != 2 || got.Hyphae != 1 {
		t.Errorf("stats after import = %d/%d, want 2/1", got.Nodes, got.Hyphae)
	}
}

func TestImportSkipsOrphanHyphae(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	snap := &domain.Snapshot{
		Nodes: []*domain.Node{
			domain.NewNode("a", domain.NodeTypeStandard, "a", 0),
		},
		Hyphae: []*domain.Hypha{
			domain.NewHypha("a", "missing", domain.HyphaTypeStandard, 0),
		},
	}
	m.Import(snap)

	if got := m.GetAllNodes(); len(got) != 1 {
		t.Fatalf("nodes = %d, want 1", len(got))
	}
	if got := m.GetNodeHyphae("a"); len(got) != 0 {
		t.Errorf("orphan hypha was imported: %v", got)
	}
}

func TestImportReplacesExistingState(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())
	m.CreateNode(NodeParams{ID: "old"})

	m.Import(&domain.Snapshot{
		Nodes: []*domain.Node{domain.NewNode("new", domain.NodeTypeStandard, "new", 0)},
	})

	if m.GetNode("old") != nil {
		t.Error("import kept pre-existing node")
	}
	if m.GetNode("new") == nil {
		t.Error("import missed snapshot node")
	}

	// Nil import is a no-op
	m.Import(nil)
	if m.GetNode("new") == nil {
		t.Error("nil import cleared state")
	}
}

func TestGetState(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())
	m.CreateNode(NodeParams{ID: "a"})
	m.RefreshStats()

	state := m.GetState()
	if state.Snapshot == nil || len(state.Snapshot.Nodes) != 1 {
		t.Fatalf("state snapshot = %+v, want one node", state.Snapshot)
	}
	if state.Stats.Nodes != 1 {
		t.Errorf("state stats nodes = %d, want 1", state.Stats.Nodes)
	}
}
