package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
)

// LoggingHooks logs node enter/leave events.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("node_enter", "run_id", e.RunID, "node_id", e.NodeID, "function", e.FunctionID)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			args := []any{"run_id", e.RunID, "node_id", e.NodeID, "function", e.FunctionID}
			if e.Result != nil {
				args = append(args, "success", e.Result.Success, "action", e.Result.Action)
				if !e.Result.Success {
					args = append(args, "error", e.Result.Error)
				}
			}
			logger.Debug("node_leave", args...)
		},
	}
}

// CombineHooks fans every event out to all hook sets, in order.
func CombineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			for _, h := range sets {
				if h.OnNodeEnter != nil {
					h.OnNodeEnter(ctx, e)
				}
			}
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			for _, h := range sets {
				if h.OnNodeLeave != nil {
					h.OnNodeLeave(ctx, e)
				}
			}
		},
	}
}
