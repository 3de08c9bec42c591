package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/weft/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMermaid(t *testing.T) {
	b := graph.New("demo")
	b.Add("load-items", "set_value").Next("fan.out")
	b.Add("fan.out", "batch_foreach").OnError("check").Next("check")
	b.Add("check", "condition").On("success", "done")
	b.Add("done", "log")
	g, err := b.Build()
	require.NoError(t, err)

	out := g.Mermaid(nil)

	assert.Contains(t, out, "graph TD\n")
	assert.Contains(t, out, `load_items(("load-items <br/> set_value"))`)
	assert.Contains(t, out, `fan_out[["fan.out <br/> batch_foreach"]]`)
	assert.Contains(t, out, `check{"check <br/> condition"}`)
	assert.Contains(t, out, `done["done <br/> log"]`)
	assert.Contains(t, out, `fan_out -. "error" .-> check`)
	assert.Contains(t, out, `check -- "success" --> done`)
	assert.Contains(t, out, "load_items --> fan_out")
	assert.NotContains(t, out, "classDef")
}

func TestMermaid_RunOverlay(t *testing.T) {
	b := graph.New("demo")
	b.Add("a", "log").Next("b")
	b.Add("b", "log").Next("c")
	b.Add("c", "log")
	g, err := b.Build()
	require.NoError(t, err)

	out := g.Mermaid(&graph.Report{Path: []string{"a", "b", "a", "b"}})

	assert.Contains(t, out, "class a visited;")
	assert.Contains(t, out, "class b current;")
	assert.NotContains(t, out, "class c")
	assert.Equal(t, 1, strings.Count(out, "class a visited;"))
}
