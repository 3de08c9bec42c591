package domain

import (
	"fmt"
	"log/slog"
)

// LogFunc is the logging sink available to functions.
// args follow the slog key/value convention.
type LogFunc func(msg string, args ...any)

// ExecutionContext bundles everything an invocation may touch.
// It is created per node invocation (or per isolated item) and must not be
// shared for mutation across isolated branches.
type ExecutionContext struct {
	NodeID string
	Store  *Store
	Log    LogFunc

	env map[string]string
}

// NewExecutionContext builds a context for nodeID bound to store.
// A nil logger discards log output.
func NewExecutionContext(nodeID string, store *Store, env map[string]string, logger *slog.Logger) *ExecutionContext {
	if store == nil {
		store = NewStore(nil)
	}
	ec := &ExecutionContext{
		NodeID: nodeID,
		Store:  store,
		env:    make(map[string]string, len(env)),
	}
	for k, v := range env {
		ec.env[k] = v
	}
	if logger != nil {
		l := logger.With("node", nodeID)
		ec.Log = func(msg string, args ...any) { l.Info(msg, args...) }
	} else {
		ec.Log = func(string, ...any) {}
	}
	return ec
}

// Getenv returns the environment value for key.
func (ec *ExecutionContext) Getenv(key string) (string, bool) {
	v, ok := ec.env[key]
	return v, ok
}

// Env returns a copy of the read-only environment.
func (ec *ExecutionContext) Env() map[string]string {
	out := make(map[string]string, len(ec.env))
	for k, v := range ec.env {
		out[k] = v
	}
	return out
}

// Isolated derives a context for one item of a concurrent batch: the store is
// a shallow copy seeded with currentItem/currentIndex and log messages are
// prefixed with the item's index. Nothing written through the derived
// context reaches the parent store.
func (ec *ExecutionContext) Isolated(index int, item any) *ExecutionContext {
	store := ec.Store.Clone()
	store.Set(KeyCurrentItem, item)
	store.Set(KeyCurrentIndex, index)

	parent := ec.Log
	if parent == nil {
		parent = func(string, ...any) {}
	}
	prefix := fmt.Sprintf("[item %d] ", index)
	return &ExecutionContext{
		NodeID: ec.NodeID,
		Store:  store,
		env:    ec.env,
		Log: func(msg string, args ...any) {
			parent(prefix+msg, args...)
		},
	}
}
