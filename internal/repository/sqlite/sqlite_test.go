package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"mycelia/internal/domain"
)

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func testSnapshot() *domain.Snapshot {
	node := domain.NewNode("n1", domain.NodeTypeStandard, "cafe", 1000)
	node.OwnerID = "alice"
	node.Position = &domain.GeoPosition{Lat: 52.52, Lng: 13.405}
	node.Tags = []string{"coffee"}

	other := domain.NewNode("n2", domain.NodeTypeGhost, "park", 2000)
	hypha := domain.NewHypha("n1", "n2", domain.HyphaTypeStandard, 1500)
	hypha.Conductance = 0.8

	return &domain.Snapshot{
		Nodes:  []*domain.Node{node, other},
		Hyphae: []*domain.Hypha{hypha},
		Signals: []*domain.Signal{{
			ID:              "sig-1",
			Type:            "pulse",
			InitialStrength: 1,
			CurrentStrength: 0.4,
			SourceID:        "n1",
			EmittedAt:       3000,
			Path:            []string{"n1", "n2"},
			HopCount:        1,
		}},
		Resonances: []*domain.Resonance{{
			ID:            "res-1",
			Center:        domain.GeoPosition{Lat: 52.52, Lng: 13.4},
			Radius:        120,
			Participants:  []string{"alice", "bob"},
			Strength:      0.7,
			DetectedAt:    3500,
			UpdatedAt:     3500,
			Serendipitous: true,
		}},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, testSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	got, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}

	if len(got.Nodes) != 2 || len(got.Hyphae) != 1 || len(got.Signals) != 1 || len(got.Resonances) != 1 {
		t.Fatalf("loaded %d/%d/%d/%d records, want 2/1/1/1",
			len(got.Nodes), len(got.Hyphae), len(got.Signals), len(got.Resonances))
	}

	// Rows come back ordered by ID
	node := got.Nodes[0]
	if node.ID != "n1" || node.Label != "cafe" || node.OwnerID != "alice" {
		t.Errorf("node = %+v, want original n1", node)
	}
	if node.Position == nil || node.Position.Lat != 52.52 {
		t.Errorf("node position = %+v, want preserved", node.Position)
	}
	if !node.HasTag("coffee") {
		t.Errorf("node tags = %v, want [coffee]", node.Tags)
	}
	if got.Nodes[1].Type != domain.NodeTypeGhost {
		t.Errorf("node type = %s, want ghost preserved", got.Nodes[1].Type)
	}

	if got.Hyphae[0].Conductance != 0.8 {
		t.Errorf("hypha conductance = %f, want 0.8", got.Hyphae[0].Conductance)
	}
	if got.Signals[0].CurrentStrength != 0.4 || len(got.Signals[0].Path) != 2 {
		t.Errorf("signal = %+v, want original sig-1", got.Signals[0])
	}
	if !got.Resonances[0].Serendipitous || len(got.Resonances[0].Participants) != 2 {
		t.Errorf("resonance = %+v, want original res-1", got.Resonances[0])
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, testSnapshot()); err != nil {
		t.Fatalf("first SaveSnapshot() error: %v", err)
	}

	smaller := &domain.Snapshot{
		Nodes: []*domain.Node{domain.NewNode("solo", domain.NodeTypeStandard, "solo", 0)},
	}
	if err := repo.SaveSnapshot(ctx, smaller); err != nil {
		t.Fatalf("second SaveSnapshot() error: %v", err)
	}

	got, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if len(got.Nodes) != 1 || got.Nodes[0].ID != "solo" {
		t.Errorf("nodes = %v, want only solo", got.Nodes)
	}
	if len(got.Hyphae) != 0 || len(got.Signals) != 0 || len(got.Resonances) != 0 {
		t.Error("previous snapshot rows survived the replace")
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if len(got.Nodes) != 0 {
		t.Errorf("empty database returned %d nodes", len(got.Nodes))
	}
	if got.Nodes == nil || got.Hyphae == nil {
		t.Error("expected initialized empty slices, not nil")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mycelia.db")
	ctx := context.Background()

	repo, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := repo.SaveSnapshot(ctx, testSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() after reopen error: %v", err)
	}
	if len(got.Nodes) != 2 {
		t.Errorf("loaded %d nodes after reopen, want 2", len(got.Nodes))
	}
}
