package propagation

import (
	"testing"

	"mycelia/internal/domain"
)

func TestNewSignal(t *testing.T) {
	s := New("src", "emitter", EmissionConfig{Type: "nudge", InitialStrength: 0.7, TTL: 5000}, 1234)

	if s.ID == "" {
		t.Error("expected non-empty signal ID")
	}
	if s.Type != "nudge" {
		t.Errorf("Type = %s, want nudge", s.Type)
	}
	if s.CurrentStrength != 0.7 || s.InitialStrength != 0.7 {
		t.Errorf("strength = %f/%f, want 0.7/0.7", s.CurrentStrength, s.InitialStrength)
	}
	if s.EmittedAt != 1234 {
		t.Errorf("EmittedAt = %d, want 1234", s.EmittedAt)
	}
	if len(s.Path) != 1 || s.Path[0] != "src" {
		t.Errorf("Path = %v, want [src]", s.Path)
	}
	if s.HopCount != 0 {
		t.Errorf("HopCount = %d, want 0", s.HopCount)
	}
}

func TestNewSignalDefaults(t *testing.T) {
	s := New("src", "", EmissionConfig{}, 0)

	if s.Type != "pulse" {
		t.Errorf("default Type = %s, want pulse", s.Type)
	}
	if s.CurrentStrength != 1 {
		t.Errorf("default strength = %f, want 1", s.CurrentStrength)
	}

	// Overdriven strength clamps to 1
	s = New("src", "", EmissionConfig{InitialStrength: 3.5}, 0)
	if s.CurrentStrength != 1 {
		t.Errorf("clamped strength = %f, want 1", s.CurrentStrength)
	}
}

func TestAlive(t *testing.T) {
	cfg := Config{MaxHops: 3, MinStrength: 0.1}

	tests := []struct {
		name   string
		signal *domain.Signal
		now    int64
		want   bool
	}{
		{
			name:   "healthy",
			signal: &domain.Signal{CurrentStrength: 0.5, HopCount: 1, Path: []string{"a", "b"}},
			want:   true,
		},
		{
			name:   "strength below floor",
			signal: &domain.Signal{CurrentStrength: 0.05, HopCount: 1},
			want:   false,
		},
		{
			name:   "at max hops",
			signal: &domain.Signal{CurrentStrength: 0.5, HopCount: 3},
			want:   false,
		},
		{
			name:   "ttl elapsed",
			signal: &domain.Signal{CurrentStrength: 0.5, EmittedAt: 0, TTL: 1000},
			now:    1000,
			want:   false,
		},
		{
			name:   "ttl not yet elapsed",
			signal: &domain.Signal{CurrentStrength: 0.5, EmittedAt: 0, TTL: 1000},
			now:    999,
			want:   true,
		},
		{
			name:   "zero ttl never expires",
			signal: &domain.Signal{CurrentStrength: 0.5, EmittedAt: 0},
			now:    1 << 40,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Alive(tt.signal, cfg, tt.now); got != tt.want {
				t.Errorf("Alive() = %v, want %v", got, tt.want)
			}
		})
	}
}
