package flow

import (
	"context"
	"math"

	"github.com/aretw0/weft/pkg/domain"
)

const (
	ForEachID        = "foreach"
	ForEachAdvanceID = "foreach_advance"
)

// Default Store keys used by the ForEach pair.
const (
	DefaultIndexKey   = "foreachIndex"
	DefaultResultsKey = "foreachResults"
)

type forEachParams struct {
	Source     itemSource `mapstructure:",squash"`
	IndexKey   string     `mapstructure:"indexKey"`
	ItemKey    string     `mapstructure:"itemKey"`
	ResultsKey string     `mapstructure:"resultsKey"`
	ResultKey  string     `mapstructure:"resultKey"`
}

func (p *forEachParams) defaults() {
	if p.IndexKey == "" {
		p.IndexKey = DefaultIndexKey
	}
	if p.ItemKey == "" {
		p.ItemKey = domain.KeyCurrentItem
	}
	if p.ResultsKey == "" {
		p.ResultsKey = DefaultResultsKey
	}
}

// storedIndex reads a loop position persisted in the Store. Missing,
// negative, non-finite or out-of-range values read as 0.
func storedIndex(store *domain.Store, key string) int {
	f, ok := toNumber(store.GetOr(key, 0))
	if !ok || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt32 {
		return 0
	}
	return int(f)
}

// ForEach is one step of a re-entrant loop. It keeps no memory of its own:
// the graph runtime invokes it again through a loop edge and it recovers its
// position from the Store. It emits "next" with the current item while items
// remain, then "complete" with the accumulated results and rewinds the index.
type ForEach struct{}

// NewForEach creates a ForEach node.
func NewForEach() *ForEach {
	return &ForEach{}
}

// Execute implements domain.Function.
func (f *ForEach) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	var p forEachParams
	if err := decodeParams(params, &p); err != nil {
		return domain.Fail("%s: %v", ForEachID, err)
	}
	p.defaults()

	items, err := p.Source.resolve(ec.Store)
	if err != nil {
		return domain.Fail("%s: %v", ForEachID, err)
	}

	index := storedIndex(ec.Store, p.IndexKey)
	if index >= len(items) {
		results, ok := toSlice(ec.Store.GetOr(p.ResultsKey, nil))
		if !ok || index == 0 {
			// an empty pass has no results of its own
			results = []any{}
			ec.Store.Set(p.ResultsKey, results)
		}
		ec.Store.Set(p.IndexKey, 0)
		logTo(ec, "foreach complete", "items", len(items))
		return domain.OkAction(results, domain.ActionComplete)
	}

	// A fresh pass starts with an empty accumulator so the loop can be reused.
	if index == 0 {
		ec.Store.Set(p.ResultsKey, []any{})
	}

	item := items[index]
	ec.Store.Set(p.ItemKey, item)
	ec.Store.Set(p.IndexKey, index)
	return domain.OkAction(item, domain.ActionNext)
}

// ForEachAdvance is the companion step placed after per-item processing. It
// moves the persisted index forward and, when resultKey is set, appends the
// Store value at that key to the results accumulator.
type ForEachAdvance struct{}

// NewForEachAdvance creates a ForEachAdvance node.
func NewForEachAdvance() *ForEachAdvance {
	return &ForEachAdvance{}
}

// Execute implements domain.Function.
func (f *ForEachAdvance) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	var p forEachParams
	if err := decodeParams(params, &p); err != nil {
		return domain.Fail("%s: %v", ForEachAdvanceID, err)
	}
	p.defaults()

	next := storedIndex(ec.Store, p.IndexKey) + 1
	ec.Store.Set(p.IndexKey, next)

	if p.ResultKey != "" {
		value, _ := ec.Store.Get(p.ResultKey)
		prev, _ := toSlice(ec.Store.GetOr(p.ResultsKey, nil))
		acc := make([]any, len(prev), len(prev)+1)
		copy(acc, prev)
		ec.Store.Set(p.ResultsKey, append(acc, value))
	}

	return domain.Ok(next)
}
