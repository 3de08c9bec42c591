package flow

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// BatchID is the registry id of the sequential batch node.
const BatchID = "batch"

// Batch runs a processor over a sequence strictly in order.
//
// Every item shares the caller's ExecutionContext, so Store writes made while
// processing item i are visible when item i+1 runs. This is what makes Batch
// suitable for stateful, order-dependent pipelines.
type Batch struct {
	resolver Resolver
}

// NewBatch creates a Batch node resolving processors through r.
func NewBatch(r Resolver) *Batch {
	return &Batch{resolver: r}
}

// Execute implements domain.Function.
func (b *Batch) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	var p batchParams
	items, fail := prepareBatch(BatchID, "batchResults", params, ec, &p)
	if fail != nil {
		return *fail
	}
	fn, fail := resolveProcessor(BatchID, b.resolver, p.Processor)
	if fail != nil {
		return *fail
	}

	results := make([]any, len(items))
	failures := 0
	for i, item := range items {
		res := Invoke(ctx, fn, itemParams(p.ProcessorParams, item, i), ec)
		if !res.Success {
			failures++
			logTo(ec, "batch item failed", "index", i, "err", res.Error)
			continue
		}
		results[i] = res.Output
	}

	ec.Store.Set(p.OutputKey, results)
	return aggregate(results, failures)
}
