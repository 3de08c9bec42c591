package ports

import (
	"context"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

// SnapshotStore persists graph run snapshots.
// This allows for durable execution, enabling "Stop & Resume" workflows.
type SnapshotStore interface {
	// Save persists the snapshot for a given run ID.
	Save(ctx context.Context, runID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given run ID.
	// Returns domain.ErrSnapshotNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of stored runs.
	List(ctx context.Context) ([]string, error)
}

// MemoryStore is a key/value store that outlives a single run.
// A zero TTL means the entry never expires.
type MemoryStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Get returns the value and whether it was found (and not expired).
	Get(ctx context.Context, key string) (any, bool, error)

	Delete(ctx context.Context, key string) error
}
