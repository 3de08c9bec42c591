/*
Package flow implements the control-flow node family of the Weft engine.

Control-flow nodes are ordinary registry functions that consume the Store and,
for the batch variants, dispatch to other registered functions by id:

  - Batch: sequential, order-dependent processing sharing one Store.
  - Parallel: unbounded fan-out sharing one Store (writes race).
  - BatchForEach: chunked fan-out bounded by maxConcurrency; every item runs
    against an isolated copy of the Store.
  - ForEach / ForEachAdvance: re-entrant iteration whose position lives in the
    Store, driven by the graph runtime through "next"/"complete" actions.
  - LoopCheck / Counter: manual bounded loops.
  - Switch / Condition: N-ary and boolean branching.

Per-item failures never abort sibling items: they are logged, recorded as a
nil slot and folded into the aggregate Result. Only input-shape and processor
resolution errors fail a node as a whole.

Use Register to add the whole family to a registry.
*/
package flow
