/*
Package domain contains the core contracts of the Weft execution engine.

It defines the entities every function node shares: the per-run Store, the
ExecutionContext handed to each invocation, the static Definition of a
registered function, and the uniform Result/Action protocol consumed by the
graph runtime. This package is kept free of I/O, persistence and transport
concerns, following Hexagonal Architecture principles.

# Key Entities

  - Store: shared, mutable key/value state of a single run.
  - ExecutionContext: Store + read-only environment + logging sink + node identity.
  - Definition: immutable metadata (parameters, outputs, actions) of a function.
  - Function: the executable contract `(params, context) -> Result`.
  - Result: output, success flag, error message and optional routing Action.
*/
package domain
