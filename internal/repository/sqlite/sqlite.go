// Package sqlite implements snapshot persistence on SQLite. Indexed
// columns carry what queries need; the full record lives in a JSON data
// column beside them.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"mycelia/internal/domain"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New opens or creates the snapshot database at the given path
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	PRAGMA journal_mode = WAL;

	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		owner_id TEXT,
		last_active_at INTEGER NOT NULL,
		data JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS hyphae (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		data JSON NOT NULL,
		FOREIGN KEY (source_id) REFERENCES nodes(id) ON DELETE CASCADE,
		FOREIGN KEY (target_id) REFERENCES nodes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS signals (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		emitted_at INTEGER NOT NULL,
		data JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resonances (
		id TEXT PRIMARY KEY,
		updated_at INTEGER NOT NULL,
		data JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_hyphae_source ON hyphae(source_id);
	CREATE INDEX IF NOT EXISTS idx_hyphae_target ON hyphae(target_id);
	CREATE INDEX IF NOT EXISTS idx_nodes_owner ON nodes(owner_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveSnapshot replaces the stored snapshot in one transaction
func (r *Repository) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"resonances", "signals", "hyphae", "nodes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, node := range snap.Nodes {
		data, err := json.Marshal(node)
		if err != nil {
			return fmt.Errorf("failed to marshal node %s: %w", node.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO nodes (id, type, owner_id, last_active_at, data)
			VALUES (?, ?, ?, ?, ?)
		`, node.ID, string(node.Type), node.OwnerID, node.LastActiveAt, data)
		if err != nil {
			return fmt.Errorf("failed to insert node %s: %w", node.ID, err)
		}
	}

	for _, hypha := range snap.Hyphae {
		data, err := json.Marshal(hypha)
		if err != nil {
			return fmt.Errorf("failed to marshal hypha %s: %w", hypha.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO hyphae (id, source_id, target_id, data)
			VALUES (?, ?, ?, ?)
		`, hypha.ID, hypha.SourceID, hypha.TargetID, data)
		if err != nil {
			return fmt.Errorf("failed to insert hypha %s: %w", hypha.ID, err)
		}
	}

	for _, sig := range snap.Signals {
		data, err := json.Marshal(sig)
		if err != nil {
			return fmt.Errorf("failed to marshal signal %s: %w", sig.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO signals (id, source_id, emitted_at, data)
			VALUES (?, ?, ?, ?)
		`, sig.ID, sig.SourceID, sig.EmittedAt, data)
		if err != nil {
			return fmt.Errorf("failed to insert signal %s: %w", sig.ID, err)
		}
	}

	for _, res := range snap.Resonances {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal resonance %s: %w", res.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO resonances (id, updated_at, data)
			VALUES (?, ?, ?)
		`, res.ID, res.UpdatedAt, data)
		if err != nil {
			return fmt.Errorf("failed to insert resonance %s: %w", res.ID, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the stored snapshot
func (r *Repository) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		Nodes:      make([]*domain.Node, 0),
		Hyphae:     make([]*domain.Hypha, 0),
		Signals:    make([]*domain.Signal, 0),
		Resonances: make([]*domain.Resonance, 0),
	}

	if err := loadTable(ctx, r.db, "nodes", &snap.Nodes); err != nil {
		return nil, err
	}
	if err := loadTable(ctx, r.db, "hyphae", &snap.Hyphae); err != nil {
		return nil, err
	}
	if err := loadTable(ctx, r.db, "signals", &snap.Signals); err != nil {
		return nil, err
	}
	if err := loadTable(ctx, r.db, "resonances", &snap.Resonances); err != nil {
		return nil, err
	}

	return snap, nil
}

// loadTable reads every row's data column into the destination slice
func loadTable[T any](ctx context.Context, db *sql.DB, table string, dest *[]*T) error {
	rows, err := db.QueryContext(ctx, "SELECT data FROM "+table+" ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		item := new(T)
		if err := json.Unmarshal(data, item); err != nil {
			return fmt.Errorf("failed to unmarshal %s row: %w", table, err)
		}
		*dest = append(*dest, item)
	}
	return rows.Err()
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}
