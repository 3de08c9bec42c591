package domain

import (
	"errors"
	"fmt"
)

// ErrFunctionNotFound is returned when a function id is not present in the registry.
var ErrFunctionNotFound = errors.New("function not found")

// ErrDuplicateFunction is returned when a function id is registered twice.
var ErrDuplicateFunction = errors.New("function already registered")

// ErrInvalidDefinition is returned when a definition cannot be registered (e.g. empty id).
var ErrInvalidDefinition = errors.New("invalid function definition")

// ErrSnapshotNotFound is returned when a run snapshot cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrNodeNotFound is returned when the graph runtime is asked to visit an unknown node.
var ErrNodeNotFound = errors.New("node not found")

// ErrMaxStepsExceeded is returned when a run visits more nodes than allowed.
var ErrMaxStepsExceeded = errors.New("max steps exceeded")

// NodeFailedError reports a node whose Result failed and had no error edge to follow.
type NodeFailedError struct {
	NodeID     string
	FunctionID string
	Cause      string
}

func (e *NodeFailedError) Error() string {
	return fmt.Sprintf("node '%s' (%s) failed: %s", e.NodeID, e.FunctionID, e.Cause)
}

// ErrRunNotResumable is returned when resuming a run that already completed or failed.
var ErrRunNotResumable = errors.New("run is not resumable")

// ErrInvalidGraph is returned by graph validation.
var ErrInvalidGraph = errors.New("invalid graph")
