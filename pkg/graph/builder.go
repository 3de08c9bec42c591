package graph

import (
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	id    string
	start string
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new graph builder.
func New(id string) *Builder {
	return &Builder{
		id:    id,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a node running function. The first node added is the start
// node unless Start says otherwise. Adding an existing id returns its builder.
func (b *Builder) Add(id, function string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{node: Node{ID: id, Function: function}}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Start sets the entry node.
func (b *Builder) Start(id string) *Builder {
	b.start = id
	return b
}

// Build compiles and validates the graph.
func (b *Builder) Build() (*Graph, error) {
	if len(b.order) == 0 {
		return nil, fmt.Errorf("%w: graph '%s' has no nodes", domain.ErrInvalidGraph, b.id)
	}

	g := &Graph{
		ID:    b.id,
		Start: b.start,
		Nodes: make(map[string]Node, len(b.nodes)),
	}
	if g.Start == "" {
		g.Start = b.order[0]
	}
	for id, nb := range b.nodes {
		g.Nodes[id] = nb.node
	}

	if err := g.Validate(nil); err != nil {
		return nil, err
	}
	return g, nil
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node Node
}

// With sets one parameter.
func (n *NodeBuilder) With(key string, value any) *NodeBuilder {
	if n.node.Params == nil {
		n.node.Params = make(map[string]any)
	}
	n.node.Params[key] = value
	return n
}

// Params merges several parameters.
func (n *NodeBuilder) Params(params map[string]any) *NodeBuilder {
	for k, v := range params {
		n.With(k, v)
	}
	return n
}

// On routes the given action to target.
func (n *NodeBuilder) On(action, target string) *NodeBuilder {
	if n.node.Edges == nil {
		n.node.Edges = make(map[string]string)
	}
	n.node.Edges[action] = target
	return n
}

// OnError routes failed results to target.
func (n *NodeBuilder) OnError(target string) *NodeBuilder {
	return n.On(domain.ActionError, target)
}

// Next sets the default successor.
func (n *NodeBuilder) Next(target string) *NodeBuilder {
	n.node.Next = target
	return n
}
