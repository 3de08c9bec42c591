package flow_test

import (
	"testing"

	"github.com/aretw0/weft/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_TransformsInOrder(t *testing.T) {
	reg := newTestRegistry(nil)
	ec := newContext(nil)

	res := execute(reg, flow.BatchID, map[string]any{
		"items":     []any{1, 2, 3},
		"processor": "double",
	}, ec)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, []any{2, 4, 6}, res.Output)
	assert.Equal(t, []any{2, 4, 6}, ec.Store.GetOr("batchResults", nil))
	assert.Empty(t, res.Action)
}

func TestBatch_IsStrictlySequential(t *testing.T) {
	reg := newTestRegistry(nil)
	ec := newContext(nil)

	res := execute(reg, flow.BatchID, map[string]any{
		"items":     []any{"a", "b", "c", "d", "e"},
		"processor": "record",
		"outputKey": "lengths",
	}, ec)

	require.True(t, res.Success)
	// each invocation saw every earlier write
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ec.Store.GetOr("log", nil))
	assert.Equal(t, []any{1, 2, 3, 4, 5}, ec.Store.GetOr("lengths", nil))
}

func TestBatch_ItemFailuresAreAbsorbed(t *testing.T) {
	reg := newTestRegistry(nil)
	ec := newContext(nil)

	res := execute(reg, flow.BatchID, map[string]any{
		"items":     []any{1, 2, 3, 4},
		"processor": "fragile",
	}, ec)

	assert.False(t, res.Success)
	assert.Equal(t, "2 of 4 items failed", res.Error)
	assert.Equal(t, []any{1, nil, nil, 4}, res.Output)
	assert.Equal(t, []any{1, nil, nil, 4}, ec.Store.GetOr("batchResults", nil))
}

func TestBatch_ReadsInputKeyAndMergesProcessorParams(t *testing.T) {
	reg := newTestRegistry(nil)
	ec := newContext(map[string]any{"names": []string{"ann", "bob"}})

	res := execute(reg, flow.BatchID, map[string]any{
		"inputKey":        "names",
		"processor":       "with_suffix",
		"processorParams": map[string]any{"suffix": "!"},
	}, ec)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, []any{"ann!", "bob!"}, res.Output)
}

func TestBatchFamily_InvalidInputLeavesStoreUntouched(t *testing.T) {
	for _, id := range []string{flow.BatchID, flow.ParallelID, flow.BatchForEachID} {
		t.Run(id, func(t *testing.T) {
			reg := newTestRegistry(nil)
			ec := newContext(map[string]any{"seed": true})

			res := execute(reg, id, map[string]any{
				"items":     "not-an-array",
				"processor": "double",
			}, ec)

			assert.False(t, res.Success)
			assert.Contains(t, res.Error, "not an array")
			assert.Equal(t, map[string]any{"seed": true}, ec.Store.Snapshot())
		})
	}
}

func TestBatchFamily_UnknownProcessor(t *testing.T) {
	for _, id := range []string{flow.BatchID, flow.ParallelID, flow.BatchForEachID} {
		t.Run(id, func(t *testing.T) {
			reg := newTestRegistry(nil)
			ec := newContext(nil)

			res := execute(reg, id, map[string]any{
				"items":     []any{1, 2},
				"processor": "does_not_exist",
			}, ec)

			assert.False(t, res.Success)
			assert.Contains(t, res.Error, "processor function 'does_not_exist' not found")
			assert.Equal(t, 0, ec.Store.Len())
		})
	}
}

func TestBatchFamily_EmptyInputResolution(t *testing.T) {
	// Batch and Parallel resolve the processor even for empty input.
	for _, id := range []string{flow.BatchID, flow.ParallelID} {
		reg := newTestRegistry(nil)
		ec := newContext(nil)
		res := execute(reg, id, map[string]any{"items": []any{}, "processor": "missing"}, ec)
		assert.False(t, res.Success, id)
		assert.Equal(t, 0, ec.Store.Len(), id)
	}

	// BatchForEach short-circuits before resolving.
	reg := newTestRegistry(nil)
	ec := newContext(nil)
	res := execute(reg, flow.BatchForEachID, map[string]any{"items": []any{}, "processor": "missing"}, ec)
	assert.True(t, res.Success)
	assert.Equal(t, []any{}, res.Output)
	assert.Equal(t, []any{}, ec.Store.GetOr("batchForEachResults", nil))
}

func TestBatch_EmptyInputWithKnownProcessor(t *testing.T) {
	reg := newTestRegistry(nil)
	ec := newContext(nil)

	res := execute(reg, flow.BatchID, map[string]any{"items": []any{}, "processor": "double"}, ec)

	assert.True(t, res.Success)
	assert.Equal(t, []any{}, ec.Store.GetOr("batchResults", nil))
}
