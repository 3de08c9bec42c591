/*
Package graph is a small in-memory runtime that walks a workflow graph,
invoking one registry function per node and choosing the next node from the
Action of its Result.

Graphs are built in code with the fluent Builder:

	b := graph.New("greet")
	b.Add("loop", flow.ForEachID).With("items", []any{"ann", "bob"}).
		On(domain.ActionNext, "say").
		On(domain.ActionComplete, "done")
	b.Add("say", builtin.LogID).With("keys", []any{"currentItem"}).Next("advance")
	b.Add("advance", flow.ForEachAdvanceID).Next("loop")
	b.Add("done", builtin.SetValueID).With("key", "finished").With("value", true)

	g, err := b.Build()

Routing rules, in order: a failed Result follows the node's "error" edge or
stops the run with a *domain.NodeFailedError; a Result whose Action names an
edge follows it; otherwise the node's Next is taken. A node with nowhere to
go ends the run.

The Runner optionally persists a domain.Snapshot after every step so an
interrupted run can be resumed, and may guard runs with a distributed lock.
*/
package graph
