/*
Package ports defines the driven ports (interfaces) for the weft engine.

These interfaces decouple the graph runtime and the built-in functions from
storage backends.

# Key Interfaces

  - SnapshotStore: persists and loads graph run snapshots.
  - MemoryStore: key/value memory with TTL, shared across runs.
  - DistributedLocker: serializes access to a run across processes.
*/
package ports
