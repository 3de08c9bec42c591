package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/adapters/sqlite"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := sqlite.New(context.Background(), db)
	require.NoError(t, err)
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, newTestStore(t))
}

func TestSQLiteStore_RoundTripsFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snap := &domain.Snapshot{
		RunID:     "r1",
		GraphID:   "g",
		NextNode:  "",
		Steps:     7,
		Status:    domain.RunFailed,
		Store:     map[string]any{"items": []any{"a", "b"}},
		Error:     "node 'x' (fn) failed: boom",
		UpdatedAt: at,
	}
	require.NoError(t, store.Save(ctx, "r1", snap))

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "g", loaded.GraphID)
	assert.Equal(t, 7, loaded.Steps)
	assert.Equal(t, domain.RunFailed, loaded.Status)
	assert.Equal(t, snap.Error, loaded.Error)
	assert.Equal(t, []any{"a", "b"}, loaded.Store["items"])
	assert.True(t, at.Equal(loaded.UpdatedAt))
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		snap := &domain.Snapshot{RunID: id, Status: domain.RunActive, UpdatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, store.Save(ctx, id, snap))
	}

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, runs)
}

func TestSQLiteStore_OpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "r", &domain.Snapshot{RunID: "r", Status: domain.RunCompleted}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, loaded.Status)
}
