// Package cli wires the engine and its adapters from a loaded config.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/adapters/file"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/adapters/process"
	redisAdapter "github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/adapters/sqlite"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/aretw0/weft/pkg/persistence/middleware"
	"github.com/aretw0/weft/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// LockPrefix namespaces run locks in Redis.
const LockPrefix = "weft:"

// Runtime is a fully wired engine plus the resources it holds.
type Runtime struct {
	Engine    *weft.Engine
	Metrics   *observability.Metrics
	Snapshots ports.SnapshotStore
	Logger    *slog.Logger

	closers []io.Closer
}

// Close releases database and Redis connections.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewLogger builds the application logger from the log section.
func NewLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, level, cfg.Format), nil
}

// Build creates the engine described by cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	rt := &Runtime{
		Metrics: observability.NewMetrics(),
		Logger:  logger,
	}

	var client *backend.Client
	if cfg.UsesRedis() {
		client = backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, client)
	}

	snapshots, err := rt.snapshotStore(ctx, cfg.Snapshots, client)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Snapshots = snapshots

	opts := []weft.Option{
		weft.WithLogger(logger),
		weft.WithEnv(cfg.Engine.Env),
		weft.WithMaxSteps(cfg.Engine.MaxSteps),
		weft.WithMiddleware(rt.Metrics.Middleware()),
		weft.WithLifecycleHooks(observability.CombineHooks(
			observability.LoggingHooks(logger),
			rt.Metrics.Hooks(),
		)),
	}
	if snapshots != nil {
		opts = append(opts, weft.WithSnapshotStore(snapshots))
	}
	if cfg.Memory.Driver == config.DriverRedis {
		opts = append(opts, weft.WithMemoryStore(redisAdapter.NewMemory(client, cfg.Memory.Prefix)))
	} else {
		opts = append(opts, weft.WithMemoryStore(memory.NewMemory()))
	}
	if cfg.Lock.Enabled {
		opts = append(opts, weft.WithLocker(redisAdapter.NewLocker(client, LockPrefix), cfg.Lock.TTL))
	}

	eng, err := weft.New(opts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	rt.Engine = eng

	if cfg.Engine.Functions != "" {
		fns, err := process.LoadFunctions(cfg.Engine.Functions)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		baseDir := filepath.Dir(cfg.Engine.Functions)
		if err := process.Register(eng.Registry(), fns, process.WithBaseDir(baseDir)); err != nil {
			_ = rt.Close()
			return nil, err
		}
		logger.Debug("process functions registered", "count", len(fns), "file", cfg.Engine.Functions)
	}

	return rt, nil
}

// snapshotStore opens the configured backend and applies masking and
// encryption, masking first so sealed payloads never hold raw secrets.
func (rt *Runtime) snapshotStore(ctx context.Context, cfg config.SnapshotConfig, client *backend.Client) (ports.SnapshotStore, error) {
	var store ports.SnapshotStore
	switch cfg.Driver {
	case config.DriverNone:
		return nil, nil
	case config.DriverMemory:
		store = memory.NewStore()
	case config.DriverFile:
		store = file.New(cfg.Path)
	case config.DriverRedis:
		var opts []redisAdapter.Option
		if cfg.Prefix != "" {
			opts = append(opts, redisAdapter.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redisAdapter.WithTTL(cfg.TTL))
		}
		store = redisAdapter.NewFromClient(client, opts...)
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, s)
		store = s
	default:
		return nil, fmt.Errorf("unknown snapshots driver %q", cfg.Driver)
	}

	var mws []middleware.Middleware
	if len(cfg.MaskKeys) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.MaskKeys))
	}
	if cfg.EncryptionKey != "" {
		active, fallback, err := cfg.Keys()
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	return middleware.Chain(store, mws...), nil
}
