package weft

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/weft/pkg/builtin"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/flow"
	"github.com/aretw0/weft/pkg/graph"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/registry"
)

// Engine is the high-level entry point for the Weft library.
// It owns the function registry and a graph runner bound to it.
type Engine struct {
	registry    *registry.Registry
	runner      *graph.Runner
	middlewares []registry.Middleware
	snapshots   ports.SnapshotStore
	memory      ports.MemoryStore
	locker      ports.DistributedLocker
	lockTTL     time.Duration
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	env         map[string]string
	maxSteps    int
	noBuiltins  bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEnv sets the read-only environment handed to every function.
func WithEnv(env map[string]string) Option {
	return func(e *Engine) {
		e.env = env
	}
}

// WithMiddleware decorates every registered function.
func WithMiddleware(mw ...registry.Middleware) Option {
	return func(e *Engine) {
		e.middlewares = append(e.middlewares, mw...)
	}
}

// WithSnapshotStore persists run snapshots, enabling Resume.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(e *Engine) {
		e.snapshots = store
	}
}

// WithMemoryStore backs the memory_set/memory_get built-ins.
func WithMemoryStore(mem ports.MemoryStore) Option {
	return func(e *Engine) {
		e.memory = mem
	}
}

// WithLocker serializes runs sharing a run ID.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// WithMaxSteps bounds the node visits of a single run.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithoutBuiltins skips the data and utility leaves; the control-flow
// family is always installed.
func WithoutBuiltins() Option {
	return func(e *Engine) {
		e.noBuiltins = true
	}
}

// New initializes an Engine with the control-flow family and the built-in
// leaves registered.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}

	eng.registry = registry.NewRegistry(registry.WithMiddleware(eng.middlewares...))
	if err := flow.Register(eng.registry); err != nil {
		return nil, fmt.Errorf("failed to register control flow: %w", err)
	}
	if !eng.noBuiltins {
		if err := builtin.Register(eng.registry, eng.memory); err != nil {
			return nil, fmt.Errorf("failed to register built-ins: %w", err)
		}
	}

	runnerOpts := []graph.Option{
		graph.WithLogger(eng.logger),
		graph.WithEnv(eng.env),
		graph.WithHooks(eng.hooks),
		graph.WithMaxSteps(eng.maxSteps),
	}
	if eng.snapshots != nil {
		runnerOpts = append(runnerOpts, graph.WithSnapshots(eng.snapshots))
	}
	if eng.locker != nil {
		runnerOpts = append(runnerOpts, graph.WithLocker(eng.locker, eng.lockTTL))
	}
	eng.runner = graph.NewRunner(eng.registry, runnerOpts...)

	return eng, nil
}

// Registry exposes the underlying registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Register adds a custom function.
func (e *Engine) Register(def domain.Definition, fn domain.Function) error {
	return e.registry.Register(def, fn)
}

// Definitions lists the catalog sorted by id.
func (e *Engine) Definitions() []domain.Definition {
	return e.registry.Definitions()
}

// Definition returns the metadata of one function.
func (e *Engine) Definition(id string) (domain.Definition, bool) {
	return e.registry.Definition(id)
}

// NewContext builds an ExecutionContext over a fresh Store seeded with store.
func (e *Engine) NewContext(nodeID string, store map[string]any) *domain.ExecutionContext {
	return domain.NewExecutionContext(nodeID, domain.NewStore(store), e.env, e.logger)
}

// Invoke runs a single function outside of a graph. A panicking function
// yields a failed Result; only an unknown id is reported as an error.
func (e *Engine) Invoke(ctx context.Context, id string, params map[string]any, ec *domain.ExecutionContext) (domain.Result, error) {
	fn, ok := e.registry.Lookup(id)
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: %s", domain.ErrFunctionNotFound, id)
	}
	if ec == nil {
		ec = e.NewContext(id, nil)
	}
	return flow.Invoke(ctx, fn, params, ec), nil
}

// Run executes g from its start node.
func (e *Engine) Run(ctx context.Context, g *graph.Graph, runID string, initial map[string]any) (*graph.Report, error) {
	return e.runner.Run(ctx, g, runID, initial)
}

// Resume continues an active run from its last snapshot.
func (e *Engine) Resume(ctx context.Context, g *graph.Graph, runID string) (*graph.Report, error) {
	return e.runner.Resume(ctx, g, runID)
}
