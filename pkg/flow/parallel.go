package flow

import (
	"context"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// ParallelID is the registry id of the unbounded fan-out node.
const ParallelID = "parallel"

// Parallel dispatches every item at once and waits for all of them.
//
// All items share the caller's ExecutionContext and Store: concurrent writes
// race and their order is unspecified. Graphs that need per-item isolation
// should use BatchForEach instead. The output slice keeps input order.
type Parallel struct {
	resolver Resolver
}

// NewParallel creates a Parallel node resolving processors through r.
func NewParallel(r Resolver) *Parallel {
	return &Parallel{resolver: r}
}

// Execute implements domain.Function.
func (p *Parallel) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	var bp batchParams
	items, fail := prepareBatch(ParallelID, "parallelResults", params, ec, &bp)
	if fail != nil {
		return *fail
	}
	fn, fail := resolveProcessor(ParallelID, p.resolver, bp.Processor)
	if fail != nil {
		return *fail
	}

	results := make([]any, len(items))
	failed := make([]bool, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item any) {
			defer wg.Done()
			res := Invoke(ctx, fn, itemParams(bp.ProcessorParams, item, i), ec)
			if !res.Success {
				failed[i] = true
				logTo(ec, "parallel item failed", "index", i, "err", res.Error)
				return
			}
			results[i] = res.Output
		}(i, item)
	}
	wg.Wait()

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}

	ec.Store.Set(bp.OutputKey, results)
	return aggregate(results, failures)
}
