// Package repository defines the persistence boundary for network
// snapshots. The engine itself is purely in-memory; a repository only
// ever consumes the plain-data snapshots Export produces and feeds them
// back through Import.
package repository

import (
	"context"

	"mycelia/internal/domain"
)

// Repository stores and loads network snapshots
type Repository interface {
	// SaveSnapshot replaces the stored snapshot atomically
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error

	// LoadSnapshot returns the stored snapshot, or an empty snapshot if
	// nothing was ever saved
	LoadSnapshot(ctx context.Context) (*domain.Snapshot, error)

	// Close releases resources
	Close() error
}
