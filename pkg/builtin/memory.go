package builtin

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

const (
	MemorySetID = "memory_set"
	MemoryGetID = "memory_get"
)

type memorySetParams struct {
	Key      string `mapstructure:"key"`
	Value    any    `mapstructure:"value"`
	ValueKey string `mapstructure:"valueKey"`
	TTL      any    `mapstructure:"ttl"`
}

// MemorySet persists a value beyond the current run. The value is either
// literal or read from the Store at valueKey.
func MemorySet(mem ports.MemoryStore) domain.FunctionFunc {
	return func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		var p memorySetParams
		if err := decode(params, &p); err != nil {
			return domain.Fail("%s: %v", MemorySetID, err)
		}
		if p.Key == "" {
			return domain.Fail("%s: key is required", MemorySetID)
		}
		ttl, err := parseDuration(p.TTL)
		if err != nil {
			return domain.Fail("%s: ttl: %v", MemorySetID, err)
		}

		value := p.Value
		if p.ValueKey != "" {
			value, _ = ec.Store.Get(p.ValueKey)
		}
		if err := mem.Set(ctx, p.Key, value, ttl); err != nil {
			return domain.Fail("%s: %v", MemorySetID, err)
		}
		return domain.Ok(value)
	}
}

type memoryGetParams struct {
	Key       string `mapstructure:"key"`
	Default   any    `mapstructure:"default"`
	OutputKey string `mapstructure:"outputKey"`
}

// MemoryGet loads a remembered value into the Store (at outputKey, or key
// when unset). Like get_value it routes "success" on a hit and "default"
// on a miss.
func MemoryGet(mem ports.MemoryStore) domain.FunctionFunc {
	return func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		var p memoryGetParams
		if err := decode(params, &p); err != nil {
			return domain.Fail("%s: %v", MemoryGetID, err)
		}
		if p.Key == "" {
			return domain.Fail("%s: key is required", MemoryGetID)
		}

		value, found, err := mem.Get(ctx, p.Key)
		if err != nil {
			return domain.Fail("%s: %v", MemoryGetID, err)
		}
		action := domain.ActionSuccess
		if !found {
			value = p.Default
			action = domain.ActionDefault
		}

		out := p.OutputKey
		if out == "" {
			out = p.Key
		}
		ec.Store.Set(out, value)
		return domain.OkAction(value, action)
	}
}
