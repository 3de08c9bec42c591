package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(runID, "graph", domain.NewStore(map[string]any{
			"foo":   "bar",
			"count": 42,
		}))
		snap.NextNode = "step-2"
		snap.Steps = 1

		err := store.Save(ctx, runID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "step-2", loaded.NextNode)
		assert.Equal(t, 1, loaded.Steps)
		assert.Equal(t, domain.RunActive, loaded.Status)
		assert.Equal(t, "bar", loaded.Store["foo"])
		// JSON-backed stores turn ints into float64; only presence is portable.
		assert.NotNil(t, loaded.Store["count"])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		snap := domain.NewSnapshot(runID, "graph", domain.NewStore(nil))
		snap.Status = domain.RunCompleted
		require.NoError(t, store.Save(ctx, runID, snap))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.RunCompleted, loaded.Status)
		assert.Empty(t, loaded.Store)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, runID, domain.NewSnapshot(runID, "", domain.NewStore(nil)))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, id1, domain.NewSnapshot(id1, "", domain.NewStore(nil)))
		_ = store.Save(ctx, id2, domain.NewSnapshot(id2, "", domain.NewStore(nil)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}

// RunMemoryStoreContract verifies a MemoryStore implementation.
func RunMemoryStoreContract(t *testing.T, store MemoryStore) {
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "greeting", "hello", 0))

		v, ok, err := store.Get(ctx, "greeting")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "hello", v)
	})

	t.Run("Structured Values", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "profile", map[string]any{"name": "ada"}, 0))

		v, ok, err := store.Get(ctx, "profile")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"name": "ada"}, v)
	})

	t.Run("Missing", func(t *testing.T) {
		v, ok, err := store.Get(ctx, "missing-key")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "temp", 1, time.Hour))
		require.NoError(t, store.Delete(ctx, "temp"))

		_, ok, err := store.Get(ctx, "temp")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.NoError(t, store.Delete(ctx, "never-set"))
	})
}
