package codec

import (
	"bytes"
	"strings"
	"testing"

	"mycelia/internal/domain"
)

func sampleSnapshot() *domain.Snapshot {
	node := domain.NewNode("n1", domain.NodeTypeStandard, "cafe", 1000)
	node.OwnerID = "alice"
	node.Position = &domain.GeoPosition{Lat: 52.52, Lng: 13.405}

	other := domain.NewNode("n2", domain.NodeTypeStandard, "park", 1000)
	hypha := domain.NewHypha("n1", "n2", domain.HyphaTypeStandard, 1000)

	return &domain.Snapshot{
		Nodes:  []*domain.Node{node, other},
		Hyphae: []*domain.Hypha{hypha},
		Signals: []*domain.Signal{{
			ID:              "sig-1",
			Type:            "pulse",
			InitialStrength: 1,
			CurrentStrength: 0.5,
			SourceID:        "n1",
			Path:            []string{"n1", "n2"},
			HopCount:        1,
		}},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c := NewJSONCodec()
	snap := sampleSnapshot()

	var buf bytes.Buffer
	if err := c.Export(snap, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	got, err := c.Parse(&buf)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(got.Nodes) != 2 || len(got.Hyphae) != 1 || len(got.Signals) != 1 {
		t.Fatalf("round trip lost data: %d/%d/%d", len(got.Nodes), len(got.Hyphae), len(got.Signals))
	}
	if got.Nodes[0].Label != "cafe" || got.Nodes[0].OwnerID != "alice" {
		t.Errorf("node = %+v, want original fields", got.Nodes[0])
	}
	if got.Nodes[0].Position == nil || got.Nodes[0].Position.Lat != 52.52 {
		t.Errorf("position = %+v, want preserved", got.Nodes[0].Position)
	}
	if got.Signals[0].CurrentStrength != 0.5 || got.Signals[0].HopCount != 1 {
		t.Errorf("signal = %+v, want original fields", got.Signals[0])
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	c := NewYAMLCodec()
	snap := sampleSnapshot()

	var buf bytes.Buffer
	if err := c.Export(snap, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	got, err := c.Parse(&buf)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(got.Nodes) != 2 || len(got.Hyphae) != 1 {
		t.Fatalf("round trip lost data: %d/%d", len(got.Nodes), len(got.Hyphae))
	}
	if got.Hyphae[0].SourceID != "n1" || got.Hyphae[0].TargetID != "n2" {
		t.Errorf("hypha = %+v, want original endpoints", got.Hyphae[0])
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := NewJSONCodec().Parse(strings.NewReader("{not json")); err == nil {
		t.Error("expected JSON parse error")
	}
	if _, err := NewYAMLCodec().Parse(strings.NewReader("nodes: [}{")); err == nil {
		t.Error("expected YAML parse error")
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"network.json", "json"},
		{"network.yaml", "yaml"},
		{"network.yml", "yaml"},
		{"network", "yaml"},
	}

	for _, tt := range tests {
		if got := ForPath(tt.path).Format(); got != tt.want {
			t.Errorf("ForPath(%s).Format() = %s, want %s", tt.path, got, tt.want)
		}
	}
}
