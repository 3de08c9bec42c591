package flow

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

const (
	LoopCheckID = "loop_check"
	CounterID   = "counter"
)

// DefaultCounterKey is the Store key shared by Counter and LoopCheck.
const DefaultCounterKey = "counter"

type loopCheckParams struct {
	CounterKey string   `mapstructure:"counterKey"`
	Limit      *float64 `mapstructure:"limit"`
	LimitKey   string   `mapstructure:"limitKey"`
}

// LoopCheck emits "success" while the persisted counter is below the limit
// and "default" once it is reached.
type LoopCheck struct{}

// NewLoopCheck creates a LoopCheck node.
func NewLoopCheck() *LoopCheck {
	return &LoopCheck{}
}

// Execute implements domain.Function.
func (l *LoopCheck) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	p := loopCheckParams{CounterKey: DefaultCounterKey}
	if err := decodeParams(params, &p); err != nil {
		return domain.Fail("%s: %v", LoopCheckID, err)
	}

	counter, ok := toNumber(ec.Store.GetOr(p.CounterKey, 0))
	if !ok {
		return domain.Fail("%s: counter '%s' is not numeric", LoopCheckID, p.CounterKey)
	}

	var limit float64
	switch {
	case p.LimitKey != "":
		v, found := ec.Store.Get(p.LimitKey)
		if limit, ok = toNumber(v); !found || !ok {
			return domain.Fail("%s: limit '%s' is missing or not numeric", LoopCheckID, p.LimitKey)
		}
	case p.Limit != nil:
		limit = *p.Limit
	default:
		return domain.Fail("%s: limit is required", LoopCheckID)
	}

	if counter < limit {
		return domain.OkAction(true, domain.ActionSuccess)
	}
	return domain.OkAction(false, domain.ActionDefault)
}

// Counter operations.
const (
	CounterInit      = "init"
	CounterIncrement = "increment"
	CounterDecrement = "decrement"
)

type counterParams struct {
	Key       string  `mapstructure:"key"`
	Operation string  `mapstructure:"operation"`
	Step      float64 `mapstructure:"step"`
	Initial   float64 `mapstructure:"initial"`
}

// Counter maintains a numeric value in the Store.
type Counter struct{}

// NewCounter creates a Counter node.
func NewCounter() *Counter {
	return &Counter{}
}

// Execute implements domain.Function.
func (c *Counter) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	p := counterParams{Key: DefaultCounterKey, Operation: CounterIncrement, Step: 1}
	if err := decodeParams(params, &p); err != nil {
		return domain.Fail("%s: %v", CounterID, err)
	}

	var value float64
	switch p.Operation {
	case CounterInit:
		value = p.Initial
	case CounterIncrement, CounterDecrement:
		current, ok := toNumber(ec.Store.GetOr(p.Key, 0))
		if !ok {
			return domain.Fail("%s: value at '%s' is not numeric", CounterID, p.Key)
		}
		if p.Operation == CounterIncrement {
			value = current + p.Step
		} else {
			value = current - p.Step
		}
	default:
		return domain.Fail("%s: unknown operation '%s'", CounterID, p.Operation)
	}

	out := normalizeNumber(value)
	ec.Store.Set(p.Key, out)
	return domain.Ok(out)
}
