package graph

import (
	"fmt"
	"sort"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/flow"
)

// Node binds a registry function to a position in the graph.
type Node struct {
	ID       string            `json:"id" yaml:"id"`
	Function string            `json:"function" yaml:"function"`
	Params   map[string]any    `json:"params,omitempty" yaml:"params,omitempty"`
	Edges    map[string]string `json:"edges,omitempty" yaml:"edges,omitempty"`
	Next     string            `json:"next,omitempty" yaml:"next,omitempty"`
}

// Graph is an immutable set of nodes with a start node.
type Graph struct {
	ID    string          `json:"id" yaml:"id"`
	Start string          `json:"start" yaml:"start"`
	Nodes map[string]Node `json:"nodes" yaml:"nodes"`
}

// Validate checks that the start node and every edge target exist.
// When r is not nil, node functions must also be registered.
func (g *Graph) Validate(r flow.Resolver) error {
	if _, ok := g.Nodes[g.Start]; !ok {
		return fmt.Errorf("%w: start node '%s' not found", domain.ErrInvalidGraph, g.Start)
	}

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := g.Nodes[id]
		if n.Function == "" {
			return fmt.Errorf("%w: node '%s' has no function", domain.ErrInvalidGraph, id)
		}
		if r != nil {
			if _, ok := r.Lookup(n.Function); !ok {
				return fmt.Errorf("%w: node '%s': %w '%s'", domain.ErrInvalidGraph, id, domain.ErrFunctionNotFound, n.Function)
			}
		}
		targets := []string{n.Next}
		for _, t := range n.Edges {
			targets = append(targets, t)
		}
		for _, t := range targets {
			if t == "" {
				continue
			}
			if _, ok := g.Nodes[t]; !ok {
				return fmt.Errorf("%w: node '%s' points to unknown node '%s'", domain.ErrInvalidGraph, id, t)
			}
		}
	}
	return nil
}

// route picks the node to visit after n produced res. An empty target ends
// the run; failed reports a failure with no error edge.
func (n Node) route(res domain.Result) (target string, failed bool) {
	if !res.Success {
		if t, ok := n.Edges[domain.ActionError]; ok {
			return t, false
		}
		return "", true
	}
	if res.Action != "" {
		if t, ok := n.Edges[res.Action]; ok {
			return t, false
		}
	}
	return n.Next, false
}
