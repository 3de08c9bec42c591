package builtin_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/builtin"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	require.NoError(t, builtin.Register(reg, memory.NewMemory()))
	return reg
}

func call(t *testing.T, reg *registry.Registry, id string, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	t.Helper()
	fn, ok := reg.Lookup(id)
	require.True(t, ok, id)
	return fn.Execute(context.Background(), params, ec)
}

func TestSetValue(t *testing.T) {
	reg := setup(t)
	ec := domain.NewExecutionContext("n", nil, nil, nil)

	res := call(t, reg, builtin.SetValueID, map[string]any{"key": "mode", "value": "A"}, ec)
	assert.True(t, res.Success)
	assert.Equal(t, "A", ec.Store.GetOr("mode", nil))

	res = call(t, reg, builtin.SetValueID, map[string]any{"values": map[string]any{"a": 1, "b": []any{2}}}, ec)
	assert.True(t, res.Success)
	assert.Equal(t, 1, ec.Store.GetOr("a", nil))
	assert.Equal(t, []any{2}, ec.Store.GetOr("b", nil))

	res = call(t, reg, builtin.SetValueID, map[string]any{}, ec)
	assert.False(t, res.Success)
}

func TestGetValue(t *testing.T) {
	reg := setup(t)
	ec := domain.NewExecutionContext("n", domain.NewStore(map[string]any{"name": "ada"}), nil, nil)

	res := call(t, reg, builtin.GetValueID, map[string]any{"key": "name", "outputKey": "copy"}, ec)
	assert.Equal(t, "ada", res.Output)
	assert.Equal(t, domain.ActionSuccess, res.Action)
	assert.Equal(t, "ada", ec.Store.GetOr("copy", nil))

	res = call(t, reg, builtin.GetValueID, map[string]any{"key": "missing", "default": "anon"}, ec)
	assert.True(t, res.Success)
	assert.Equal(t, "anon", res.Output)
	assert.Equal(t, domain.ActionDefault, res.Action)
}

func TestEnv(t *testing.T) {
	reg := setup(t)
	ec := domain.NewExecutionContext("n", nil, map[string]string{"REGION": "eu"}, nil)

	res := call(t, reg, builtin.EnvID, map[string]any{"name": "REGION", "outputKey": "region"}, ec)
	require.True(t, res.Success)
	assert.Equal(t, "eu", res.Output)
	assert.Equal(t, "eu", ec.Store.GetOr("region", nil))

	res = call(t, reg, builtin.EnvID, map[string]any{"name": "ZONE", "default": "a"}, ec)
	assert.Equal(t, "a", res.Output)

	res = call(t, reg, builtin.EnvID, map[string]any{"name": "ZONE"}, ec)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "'ZONE' not set")
}

func TestLog(t *testing.T) {
	reg := setup(t)
	ec := domain.NewExecutionContext("n", domain.NewStore(map[string]any{"count": 3}), nil, nil)

	var gotMsg string
	var gotArgs []any
	ec.Log = func(msg string, args ...any) {
		gotMsg = msg
		gotArgs = args
	}

	res := call(t, reg, builtin.LogID, map[string]any{"message": "tick", "keys": []any{"count"}}, ec)
	assert.True(t, res.Success)
	assert.Equal(t, "tick", gotMsg)
	assert.Equal(t, []any{"count", 3}, gotArgs)
}

func TestDelay(t *testing.T) {
	reg := setup(t)
	ec := domain.NewExecutionContext("n", nil, nil, nil)

	start := time.Now()
	res := call(t, reg, builtin.DelayID, map[string]any{"duration": "20ms"}, ec)
	assert.True(t, res.Success)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	res = call(t, reg, builtin.DelayID, map[string]any{"duration": 5}, ec)
	assert.True(t, res.Success)
	assert.Equal(t, "5ms", res.Output)

	res = call(t, reg, builtin.DelayID, map[string]any{"duration": "soon"}, ec)
	assert.False(t, res.Success)
}

func TestDelay_HonoursCancellation(t *testing.T) {
	reg := setup(t)
	fn, _ := reg.Lookup(builtin.DelayID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := fn.Execute(ctx, map[string]any{"duration": "5s"}, domain.NewExecutionContext("n", nil, nil, nil))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "interrupted")
	assert.Less(t, time.Since(start), time.Second)
}

func TestMemory_SurvivesAcrossRuns(t *testing.T) {
	reg := setup(t)

	first := domain.NewExecutionContext("n", domain.NewStore(map[string]any{"user": "ada"}), nil, nil)
	res := call(t, reg, builtin.MemorySetID, map[string]any{"key": "last_user", "valueKey": "user", "ttl": "1h"}, first)
	require.True(t, res.Success, res.Error)

	second := domain.NewExecutionContext("n", nil, nil, nil)
	res = call(t, reg, builtin.MemoryGetID, map[string]any{"key": "last_user"}, second)
	assert.Equal(t, domain.ActionSuccess, res.Action)
	assert.Equal(t, "ada", second.Store.GetOr("last_user", nil))

	res = call(t, reg, builtin.MemoryGetID, map[string]any{"key": "nobody", "default": "guest", "outputKey": "who"}, second)
	assert.Equal(t, domain.ActionDefault, res.Action)
	assert.Equal(t, "guest", second.Store.GetOr("who", nil))
}

func TestMemorySet_BadTTL(t *testing.T) {
	reg := setup(t)
	res := call(t, reg, builtin.MemorySetID, map[string]any{"key": "k", "value": 1, "ttl": "forever"}, domain.NewExecutionContext("n", nil, nil, nil))
	assert.False(t, res.Success)
}

func TestRegister_NilMemoryFallsBack(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, builtin.Register(reg, nil))
	assert.Equal(t, len(builtin.Definitions()), reg.Len())
}
