package propagation

import (
	"github.com/google/uuid"

	"mycelia/internal/domain"
)

// New builds a signal at its source node. The path starts with the
// source and the current strength equals the initial strength.
func New(sourceID, emitterID string, cfg EmissionConfig, now int64) *domain.Signal {
	strength := cfg.InitialStrength
	if strength <= 0 {
		strength = 1
	}
	if strength > 1 {
		strength = 1
	}

	sigType := cfg.Type
	if sigType == "" {
		sigType = "pulse"
	}

	return &domain.Signal{
		ID:              uuid.NewString(),
		Type:            sigType,
		InitialStrength: strength,
		CurrentStrength: strength,
		SourceID:        sourceID,
		EmitterID:       emitterID,
		EmittedAt:       now,
		HopCount:        0,
		Path:            []string{sourceID},
		Payload:         cfg.Payload,
		TTL:             cfg.TTL,
	}
}

// Alive is the single gate checked before every further propagation
// attempt. A signal is dead once its TTL elapsed, its strength fell
// below MinStrength, or it reached MaxHops.
func Alive(s *domain.Signal, cfg Config, now int64) bool {
	if s.TTL > 0 && s.Age(now) >= s.TTL {
		return false
	}
	if s.CurrentStrength < cfg.MinStrength {
		return false
	}
	if cfg.MaxHops > 0 && s.HopCount >= cfg.MaxHops {
		return false
	}
	return true
}
