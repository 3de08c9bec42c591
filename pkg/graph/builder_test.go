package graph_test

import (
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := graph.New("simple")
	b.Add("start", "set_value").With("key", "a").With("value", 1).Next("check")
	b.Add("check", "condition").
		Params(map[string]any{"key": "a", "operator": "eq", "value": 1}).
		On(domain.ActionSuccess, "yes").
		On(domain.ActionError, "no")
	b.Add("yes", "log")
	b.Add("no", "log")

	g, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "simple", g.ID)
	assert.Equal(t, "start", g.Start)
	assert.Len(t, g.Nodes, 4)
	assert.Equal(t, "check", g.Nodes["start"].Next)
	assert.Equal(t, map[string]any{"key": "a", "value": 1}, g.Nodes["start"].Params)
	assert.Equal(t, map[string]string{"success": "yes", "error": "no"}, g.Nodes["check"].Edges)
}

func TestBuilder_AddIsIdempotent(t *testing.T) {
	b := graph.New("g")
	first := b.Add("a", "log")
	assert.Same(t, first, b.Add("a", "other"))
}

func TestBuilder_ExplicitStart(t *testing.T) {
	b := graph.New("g")
	b.Add("a", "log")
	b.Add("b", "log").Next("a")
	b.Start("b")

	g, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "b", g.Start)
}

func TestBuilder_Validation(t *testing.T) {
	_, err := graph.New("empty").Build()
	assert.ErrorIs(t, err, domain.ErrInvalidGraph)

	b := graph.New("dangling")
	b.Add("a", "log").Next("ghost")
	_, err = b.Build()
	assert.ErrorIs(t, err, domain.ErrInvalidGraph)
	assert.Contains(t, err.Error(), "ghost")

	b = graph.New("bad-edge")
	b.Add("a", "log").OnError("nowhere")
	_, err = b.Build()
	assert.ErrorIs(t, err, domain.ErrInvalidGraph)

	b = graph.New("no-fn")
	b.Add("a", "")
	_, err = b.Build()
	assert.ErrorIs(t, err, domain.ErrInvalidGraph)

	b = graph.New("bad-start")
	b.Add("a", "log")
	b.Start("zzz")
	_, err = b.Build()
	assert.ErrorIs(t, err, domain.ErrInvalidGraph)
}
