package flow

import (
	"context"
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
)

// Resolver looks functions up by id. *registry.Registry satisfies it.
type Resolver interface {
	Lookup(id string) (domain.Function, bool)
}

// Invoke executes fn and converts a panic into a failed Result.
// It is the fault boundary between a control-flow node and the functions it
// dispatches to: a faulting item never takes its siblings down with it.
func Invoke(ctx context.Context, fn domain.Function, params map[string]any, ec *domain.ExecutionContext) (res domain.Result) {
	defer func() {
		if r := recover(); r != nil {
			logTo(ec, "function panicked", "panic", r)
			res = domain.Result{Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return fn.Execute(ctx, params, ec)
}

// aggregate builds the node-level Result for the batch variants.
func aggregate(results []any, failures int) domain.Result {
	res := domain.Result{Output: results, Success: failures == 0}
	if failures > 0 {
		res.Error = fmt.Sprintf("%d of %d items failed", failures, len(results))
	}
	return res
}

// batchParams are shared by Batch, Parallel and BatchForEach.
type batchParams struct {
	Source          itemSource     `mapstructure:",squash"`
	Processor       string         `mapstructure:"processor"`
	ProcessorParams map[string]any `mapstructure:"processorParams"`
	OutputKey       string         `mapstructure:"outputKey"`
	MaxConcurrency  int            `mapstructure:"maxConcurrency"`
}

// prepareBatch decodes params and resolves the input sequence. Nothing is written
// to the Store when it fails.
func prepareBatch(name, defaultKey string, params map[string]any, ec *domain.ExecutionContext, p *batchParams) ([]any, *domain.Result) {
	p.OutputKey = defaultKey
	if err := decodeParams(params, p); err != nil {
		res := domain.Fail("%s: %v", name, err)
		return nil, &res
	}
	if p.OutputKey == "" {
		p.OutputKey = defaultKey
	}
	items, err := p.Source.resolve(ec.Store)
	if err != nil {
		res := domain.Fail("%s: %v", name, err)
		return nil, &res
	}
	return items, nil
}

func resolveProcessor(name string, r Resolver, id string) (domain.Function, *domain.Result) {
	fn, ok := r.Lookup(id)
	if !ok {
		res := domain.Fail("%s: processor function '%s' not found", name, id)
		return nil, &res
	}
	return fn, nil
}
