package builtin

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

const (
	SetValueID = "set_value"
	GetValueID = "get_value"
)

type setValueParams struct {
	Key    string         `mapstructure:"key"`
	Value  any            `mapstructure:"value"`
	Values map[string]any `mapstructure:"values"`
}

// SetValue writes a literal value, or a map of values, into the Store.
func SetValue(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	var p setValueParams
	if err := decode(params, &p); err != nil {
		return domain.Fail("%s: %v", SetValueID, err)
	}
	if p.Key == "" && len(p.Values) == 0 {
		return domain.Fail("%s: key or values is required", SetValueID)
	}

	for k, v := range p.Values {
		ec.Store.Set(k, v)
	}
	if p.Key != "" {
		ec.Store.Set(p.Key, p.Value)
		return domain.Ok(p.Value)
	}
	return domain.Ok(p.Values)
}

type getValueParams struct {
	Key       string `mapstructure:"key"`
	Default   any    `mapstructure:"default"`
	OutputKey string `mapstructure:"outputKey"`
}

// GetValue reads a Store value, optionally copying it to outputKey. It
// routes "success" when the key exists and "default" when the fallback
// was used.
func GetValue(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	var p getValueParams
	if err := decode(params, &p); err != nil {
		return domain.Fail("%s: %v", GetValueID, err)
	}
	if p.Key == "" {
		return domain.Fail("%s: key is required", GetValueID)
	}

	value, found := ec.Store.Get(p.Key)
	action := domain.ActionSuccess
	if !found {
		value = p.Default
		action = domain.ActionDefault
	}
	if p.OutputKey != "" {
		ec.Store.Set(p.OutputKey, value)
	}
	return domain.OkAction(value, action)
}
