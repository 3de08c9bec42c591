package flow

import (
	"context"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// BatchForEachID is the registry id of the bounded-concurrency batch node.
const BatchForEachID = "batch_foreach"

// DefaultMaxConcurrency bounds BatchForEach when maxConcurrency is not set.
const DefaultMaxConcurrency = 5

// BatchForEach processes a sequence in contiguous chunks of at most
// maxConcurrency items. Chunks run one after another; the items of a chunk
// run concurrently. Chunking is the engine's only backpressure mechanism.
//
// Each item runs against an isolated ExecutionContext (see
// domain.ExecutionContext.Isolated), so its Store writes are visible neither
// to its siblings nor to the parent run.
type BatchForEach struct {
	resolver Resolver
}

// NewBatchForEach creates a BatchForEach node resolving processors through r.
func NewBatchForEach(r Resolver) *BatchForEach {
	return &BatchForEach{resolver: r}
}

// Execute implements domain.Function.
func (b *BatchForEach) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	p := batchParams{MaxConcurrency: DefaultMaxConcurrency}
	items, fail := prepareBatch(BatchForEachID, "batchForEachResults", params, ec, &p)
	if fail != nil {
		return *fail
	}

	// Empty input never resolves the processor.
	if len(items) == 0 {
		ec.Store.Set(p.OutputKey, []any{})
		return domain.Ok([]any{})
	}

	fn, fail := resolveProcessor(BatchForEachID, b.resolver, p.Processor)
	if fail != nil {
		return *fail
	}

	size := p.MaxConcurrency
	if size < 1 {
		size = 1
	}

	results := make([]any, 0, len(items))
	failures := 0
	for start := 0; start < len(items); start += size {
		chunk := items[start:min(start+size, len(items))]
		offset := len(results)

		slots := make([]any, len(chunk))
		failed := make([]bool, len(chunk))

		var wg sync.WaitGroup
		for j, item := range chunk {
			wg.Add(1)
			go func(j int, item any) {
				defer wg.Done()
				index := offset + j
				itemCtx := ec.Isolated(index, item)
				res := Invoke(ctx, fn, itemParams(p.ProcessorParams, item, index), itemCtx)
				if !res.Success {
					failed[j] = true
					logTo(itemCtx, "item failed", "err", res.Error)
					return
				}
				slots[j] = res.Output
			}(j, item)
		}
		wg.Wait()

		for _, f := range failed {
			if f {
				failures++
			}
		}
		results = append(results, slots...)
	}

	ec.Store.Set(p.OutputKey, results)
	return aggregate(results, failures)
}
