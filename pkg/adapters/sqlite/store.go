// Package sqlite persists graph run snapshots in a SQLite database through
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	_ "modernc.org/sqlite"
)

// Store implements ports.SnapshotStore on SQLite.
type Store struct {
	db *sql.DB
}

// New initializes the schema in db and returns a Store.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to init snapshot schema: %w", err)
	}
	return s, nil
}

// Open opens dsn with the "sqlite" driver and initializes the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if dsn == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	s, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_snapshots (
			run_id TEXT PRIMARY KEY,
			graph_id TEXT NOT NULL,
			status TEXT NOT NULL,
			next_node TEXT NOT NULL,
			steps INTEGER NOT NULL,
			store BLOB,
			error TEXT,
			updated_at INTEGER NOT NULL
		);`,
	)
	return err
}

// Save upserts the snapshot of runID.
func (s *Store) Save(ctx context.Context, runID string, snap *domain.Snapshot) error {
	store, err := json.Marshal(snap.Store)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot store: %w", err)
	}

	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO run_snapshots (run_id, graph_id, status, next_node, steps, store, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			graph_id = excluded.graph_id,
			status = excluded.status,
			next_node = excluded.next_node,
			steps = excluded.steps,
			store = excluded.store,
			error = excluded.error,
			updated_at = excluded.updated_at`,
		runID,
		snap.GraphID,
		string(snap.Status),
		snap.NextNode,
		snap.Steps,
		store,
		snap.Error,
		updated.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot of runID.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT graph_id, status, next_node, steps, store, error, updated_at
		FROM run_snapshots WHERE run_id = ?`, runID)

	var (
		snap    = domain.Snapshot{RunID: runID}
		status  string
		store   []byte
		errStr  sql.NullString
		updated int64
	)
	if err := row.Scan(&snap.GraphID, &status, &snap.NextNode, &snap.Steps, &store, &errStr, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap.Status = domain.RunStatus(status)
	snap.Error = errStr.String
	snap.UpdatedAt = time.Unix(0, updated)
	snap.Store = map[string]any{}
	if len(store) > 0 {
		if err := json.Unmarshal(store, &snap.Store); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot store: %w", err)
		}
	}
	return &snap, nil
}

// Delete removes the snapshot of runID.
func (s *Store) Delete(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM run_snapshots WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// List returns run IDs, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM run_snapshots ORDER BY updated_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	runs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
