/*
Package weft is a workflow execution engine: a graph of nodes, each bound to a
registered function, walked against a shared key/value Store.

# Concept

Every node invokes a Function through the Registry. Functions read and write the
run Store through an ExecutionContext and answer with a Result whose Action
selects the outgoing edge. Control flow is itself made of functions: Batch,
Parallel and BatchForEach dispatch a processor over a sequence, ForEach and
LoopCheck drive loops, Switch and Condition branch.

# Key Features

  - Uniform Result/Action protocol: leaves and control-flow nodes route the same way.
  - Bounded concurrency: BatchForEach never runs more than maxConcurrency items at once.
  - Fault isolation: a failing or panicking item is counted, never fatal to its siblings.
  - Durable runs: snapshots are persisted after every step (memory, file, Redis, SQLite).

# Usage

	eng, err := weft.New()
	if err != nil {
		log.Fatal(err)
	}

	b := graph.New("greet")
	b.Add("items", "set_value").With("key", "names").With("value", []any{"ann", "bob"}).Next("shout")
	b.Add("shout", "batch").With("inputKey", "names").With("processor", "upper")
	g, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	report, err := eng.Run(context.Background(), g, "", nil)
*/
package weft
