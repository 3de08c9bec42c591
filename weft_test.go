package weft_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/builtin"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/flow"
	"github.com/aretw0/weft/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCatalog(t *testing.T) {
	eng, err := weft.New()
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, def := range eng.Definitions() {
		ids = append(ids, def.ID)
	}
	assert.Contains(t, ids, flow.BatchForEachID)
	assert.Contains(t, ids, builtin.MemorySetID)
	assert.IsIncreasing(t, ids)

	bare, err := weft.New(weft.WithoutBuiltins())
	require.NoError(t, err)
	_, ok := bare.Definition(builtin.SetValueID)
	assert.False(t, ok)
	_, ok = bare.Definition(flow.SwitchID)
	assert.True(t, ok)
}

func TestEngine_Register(t *testing.T) {
	eng, err := weft.New()
	require.NoError(t, err)

	noop := domain.FunctionFunc(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		return domain.Ok(nil)
	})
	require.NoError(t, eng.Register(domain.Definition{ID: "noop"}, noop))
	assert.ErrorIs(t, eng.Register(domain.Definition{ID: "noop"}, noop), domain.ErrDuplicateFunction)
	assert.ErrorIs(t, eng.Register(domain.Definition{ID: flow.CounterID}, noop), domain.ErrDuplicateFunction)
}

func TestEngine_Invoke(t *testing.T) {
	eng, err := weft.New(weft.WithEnv(map[string]string{"REGION": "eu"}))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("unknown function", func(t *testing.T) {
		_, err := eng.Invoke(ctx, "nope", nil, nil)
		assert.ErrorIs(t, err, domain.ErrFunctionNotFound)
	})

	t.Run("env is engine scoped", func(t *testing.T) {
		res, err := eng.Invoke(ctx, builtin.EnvID, map[string]any{"name": "REGION"}, nil)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "eu", res.Output)
	})

	t.Run("panic becomes failure", func(t *testing.T) {
		require.NoError(t, eng.Register(domain.Definition{ID: "panics"},
			domain.FunctionFunc(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
				panic("bad input")
			})))

		res, err := eng.Invoke(ctx, "panics", nil, nil)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "bad input")
	})
}

func TestEngine_RunWithSnapshotsAndHooks(t *testing.T) {
	var (
		mu      sync.Mutex
		entered []string
	)
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, ev *domain.NodeEvent) {
			mu.Lock()
			defer mu.Unlock()
			entered = append(entered, ev.NodeID)
		},
	}
	snaps := memory.NewStore()
	eng, err := weft.New(weft.WithSnapshotStore(snaps), weft.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	b := graph.New("pair")
	b.Add("first", builtin.SetValueID).With("key", "a").With("value", 1).Next("second")
	b.Add("second", flow.CounterID).With("key", "a")
	g, err := b.Build()
	require.NoError(t, err)

	report, err := eng.Run(context.Background(), g, "r-1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, 2, report.Store["a"])
	assert.Equal(t, []string{"first", "second"}, entered)

	snap, err := snaps.Load(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, snap.Status)

	_, err = eng.Resume(context.Background(), g, "r-1")
	assert.ErrorIs(t, err, domain.ErrRunNotResumable)
}
