package builtin

import (
	"context"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

const (
	EnvID   = "env"
	LogID   = "log"
	DelayID = "delay"
)

type envParams struct {
	Name      string  `mapstructure:"name"`
	Default   *string `mapstructure:"default"`
	OutputKey string  `mapstructure:"outputKey"`
}

// Env reads a variable from the run environment. The process environment
// is never consulted directly; callers decide what a run may see.
func Env(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	var p envParams
	if err := decode(params, &p); err != nil {
		return domain.Fail("%s: %v", EnvID, err)
	}
	if p.Name == "" {
		return domain.Fail("%s: name is required", EnvID)
	}

	value, ok := ec.Getenv(p.Name)
	if !ok {
		if p.Default == nil {
			return domain.Fail("%s: environment variable '%s' not set", EnvID, p.Name)
		}
		value = *p.Default
	}
	if p.OutputKey != "" {
		ec.Store.Set(p.OutputKey, value)
	}
	return domain.Ok(value)
}

type logParams struct {
	Message string   `mapstructure:"message"`
	Keys    []string `mapstructure:"keys"`
}

// Log writes message to the run log, attaching the Store values of keys.
func Log(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	var p logParams
	if err := decode(params, &p); err != nil {
		return domain.Fail("%s: %v", LogID, err)
	}

	args := make([]any, 0, len(p.Keys)*2)
	for _, k := range p.Keys {
		v, _ := ec.Store.Get(k)
		args = append(args, k, v)
	}
	if ec.Log != nil {
		ec.Log(p.Message, args...)
	}
	return domain.Ok(p.Message)
}

// Delay suspends the node for the given duration, returning early with a
// failure when ctx is cancelled.
func Delay(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	d, err := parseDuration(params["duration"])
	if err != nil {
		return domain.Fail("%s: %v", DelayID, err)
	}
	if d < 0 {
		return domain.Fail("%s: negative duration %s", DelayID, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return domain.Fail("%s: interrupted: %v", DelayID, ctx.Err())
	case <-timer.C:
		return domain.Ok(d.String())
	}
}
