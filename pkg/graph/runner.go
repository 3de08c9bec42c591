package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/flow"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/google/uuid"
)

// DefaultMaxSteps bounds a run when WithMaxSteps is not used.
const DefaultMaxSteps = 1000

// DefaultLockTTL is the lease taken on a run when a locker is configured.
const DefaultLockTTL = 5 * time.Minute

// Report summarises a finished (or stopped) run.
type Report struct {
	RunID  string           `json:"run_id"`
	Status domain.RunStatus `json:"status"`
	Steps  int              `json:"steps"`
	Path   []string         `json:"path"`
	Last   *domain.Result   `json:"last,omitempty"`
	Store  map[string]any   `json:"store"`
}

// Runner walks graphs, resolving node functions through a registry.
// A Runner is safe for concurrent use by multiple runs.
type Runner struct {
	resolver  flow.Resolver
	logger    *slog.Logger
	env       map[string]string
	hooks     domain.LifecycleHooks
	snapshots ports.SnapshotStore
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	maxSteps  int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger handed to every node.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithEnv sets the environment visible to nodes.
func WithEnv(env map[string]string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithSnapshots persists a snapshot after every step, enabling Resume.
func WithSnapshots(store ports.SnapshotStore) Option {
	return func(r *Runner) {
		r.snapshots = store
	}
}

// WithLocker serializes runs sharing a run ID across processes.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(r *Runner) {
		r.locker = locker
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithMaxSteps bounds the number of node visits per run.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// NewRunner creates a runner resolving functions through resolver.
func NewRunner(resolver flow.Resolver, opts ...Option) *Runner {
	r := &Runner{
		resolver: resolver,
		lockTTL:  DefaultLockTTL,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Run executes g from its start node against a Store seeded with initial.
// An empty runID is replaced with a generated one.
func (r *Runner) Run(ctx context.Context, g *Graph, runID string, initial map[string]any) (*Report, error) {
	if err := g.Validate(r.resolver); err != nil {
		return nil, err
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	snap := domain.NewSnapshot(runID, g.ID, domain.NewStore(initial))
	snap.NextNode = g.Start
	return r.execute(ctx, g, snap)
}

// Resume continues a run from its last persisted snapshot.
func (r *Runner) Resume(ctx context.Context, g *Graph, runID string) (*Report, error) {
	if r.snapshots == nil {
		return nil, errors.New("resume requires a snapshot store")
	}
	if err := g.Validate(r.resolver); err != nil {
		return nil, err
	}

	snap, err := r.snapshots.Load(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if snap.Status != domain.RunActive {
		return nil, fmt.Errorf("%w: run %s is %s", domain.ErrRunNotResumable, runID, snap.Status)
	}
	if snap.GraphID != "" && snap.GraphID != g.ID {
		return nil, fmt.Errorf("%w: run %s belongs to graph '%s'", domain.ErrRunNotResumable, runID, snap.GraphID)
	}

	r.logger.Info("resuming run", "run_id", runID, "node_id", snap.NextNode, "steps", snap.Steps)
	return r.execute(ctx, g, snap)
}

func (r *Runner) execute(ctx context.Context, g *Graph, snap *domain.Snapshot) (*Report, error) {
	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, snap.RunID, r.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock run %s: %w", snap.RunID, err)
		}
		defer func() {
			if uerr := unlock(context.Background()); uerr != nil {
				r.logger.Warn("failed to release run lock", "run_id", snap.RunID, "err", uerr)
			}
		}()
	}

	store := domain.NewStore(snap.Store)
	report := &Report{RunID: snap.RunID, Status: domain.RunActive, Steps: snap.Steps}
	current := snap.NextNode

	// persist records the position reached so far.
	persist := func(status domain.RunStatus, cause error) error {
		report.Status = status
		report.Store = store.Snapshot()
		if r.snapshots == nil {
			return nil
		}
		s := &domain.Snapshot{
			RunID:     snap.RunID,
			GraphID:   g.ID,
			NextNode:  current,
			Steps:     report.Steps,
			Status:    status,
			Store:     report.Store,
			UpdatedAt: time.Now(),
		}
		if cause != nil {
			s.Error = cause.Error()
		}
		// a cancelled run still records where it stopped
		if err := r.snapshots.Save(context.WithoutCancel(ctx), snap.RunID, s); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		return nil
	}

	// stop ends the run with err, keeping it resumable when status is active.
	stop := func(status domain.RunStatus, cause error) (*Report, error) {
		if perr := persist(status, cause); perr != nil {
			r.logger.Error("failed to persist stopped run", "run_id", snap.RunID, "err", perr)
		}
		return report, cause
	}

	for current != "" {
		if err := ctx.Err(); err != nil {
			return stop(domain.RunActive, err)
		}
		if report.Steps >= r.maxSteps {
			return stop(domain.RunFailed, fmt.Errorf("%w: %d", domain.ErrMaxStepsExceeded, r.maxSteps))
		}

		node, ok := g.Nodes[current]
		if !ok {
			return stop(domain.RunFailed, fmt.Errorf("%w: '%s'", domain.ErrNodeNotFound, current))
		}
		fn, ok := r.resolver.Lookup(node.Function)
		if !ok {
			return stop(domain.RunFailed, fmt.Errorf("%w: '%s'", domain.ErrFunctionNotFound, node.Function))
		}

		res := r.visit(ctx, snap.RunID, node, fn, store)
		report.Steps++
		report.Path = append(report.Path, node.ID)
		report.Last = &res

		next, failed := node.route(res)
		if failed {
			return stop(domain.RunFailed, &domain.NodeFailedError{
				NodeID:     node.ID,
				FunctionID: node.Function,
				Cause:      res.Error,
			})
		}

		current = next
		status := domain.RunActive
		if current == "" {
			status = domain.RunCompleted
		}
		if err := persist(status, nil); err != nil {
			return report, err
		}
	}

	r.logger.Debug("run completed", "run_id", snap.RunID, "steps", report.Steps)
	return report, nil
}

func (r *Runner) visit(ctx context.Context, runID string, node Node, fn domain.Function, store *domain.Store) domain.Result {
	event := &domain.NodeEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventNodeEnter,
			RunID:     runID,
		},
		NodeID:     node.ID,
		FunctionID: node.Function,
	}
	if r.hooks.OnNodeEnter != nil {
		r.hooks.OnNodeEnter(ctx, event)
	}

	ec := domain.NewExecutionContext(node.ID, store, r.env, r.logger)
	res := flow.Invoke(ctx, fn, node.Params, ec)

	if r.hooks.OnNodeLeave != nil {
		leave := *event
		leave.Timestamp = time.Now()
		leave.Type = domain.EventNodeLeave
		leave.Result = &res
		r.hooks.OnNodeLeave(ctx, &leave)
	}
	return res
}
