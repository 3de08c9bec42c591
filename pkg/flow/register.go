package flow

import (
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
)

// Registrar is the subset of *registry.Registry needed to install the family.
type Registrar interface {
	Resolver
	Register(def domain.Definition, fn domain.Function) error
}

var sequenceParams = []domain.ParamSpec{
	{Name: "items", Type: domain.ParamArray, Description: "Sequence to iterate (alternative to inputKey)"},
	{Name: "inputKey", Type: domain.ParamString, Description: "Store key holding the sequence"},
}

func batchParamSpecs(outputKey string, extra ...domain.ParamSpec) []domain.ParamSpec {
	specs := append([]domain.ParamSpec{}, sequenceParams...)
	specs = append(specs,
		domain.ParamSpec{Name: "processor", Type: domain.ParamString, Required: true, Description: "Function id invoked once per item"},
		domain.ParamSpec{Name: "processorParams", Type: domain.ParamObject, Description: "Extra parameters merged into every invocation"},
		domain.ParamSpec{Name: "outputKey", Type: domain.ParamString, Default: outputKey, Description: "Store key receiving the ordered results"},
	)
	return append(specs, extra...)
}

// Definitions returns the catalog metadata of the control-flow family.
func Definitions() []domain.Definition {
	return []domain.Definition{
		{
			ID:          BatchID,
			Name:        "Batch",
			Description: "Runs a processor over every item in order, sharing the run store.",
			Category:    domain.CategoryControl,
			Params:      batchParamSpecs("batchResults"),
			Outputs:     []string{"batchResults"},
			Icon:        "layers",
		},
		{
			ID:          ParallelID,
			Name:        "Parallel",
			Description: "Runs a processor over every item concurrently, sharing the run store.",
			Category:    domain.CategoryControl,
			Params:      batchParamSpecs("parallelResults"),
			Outputs:     []string{"parallelResults"},
			Icon:        "git-fork",
		},
		{
			ID:          BatchForEachID,
			Name:        "Batch For Each",
			Description: "Runs a processor in chunks of maxConcurrency items, each item on an isolated store copy.",
			Category:    domain.CategoryControl,
			Params: batchParamSpecs("batchForEachResults",
				domain.ParamSpec{Name: "maxConcurrency", Type: domain.ParamNumber, Default: DefaultMaxConcurrency, Description: "Maximum items in flight"},
			),
			Outputs: []string{"batchForEachResults"},
			Icon:    "grid",
		},
		{
			ID:          ForEachID,
			Name:        "For Each",
			Description: "Emits the next item of a sequence, or the accumulated results when done.",
			Category:    domain.CategoryControl,
			Params: append(append([]domain.ParamSpec{}, sequenceParams...),
				domain.ParamSpec{Name: "indexKey", Type: domain.ParamString, Default: DefaultIndexKey},
				domain.ParamSpec{Name: "itemKey", Type: domain.ParamString, Default: domain.KeyCurrentItem},
				domain.ParamSpec{Name: "resultsKey", Type: domain.ParamString, Default: DefaultResultsKey},
			),
			Outputs: []string{domain.KeyCurrentItem, DefaultIndexKey},
			Actions: []string{domain.ActionNext, domain.ActionComplete},
			Icon:    "repeat",
		},
		{
			ID:          ForEachAdvanceID,
			Name:        "For Each Advance",
			Description: "Advances a For Each loop and collects the item result.",
			Category:    domain.CategoryControl,
			Params: []domain.ParamSpec{
				{Name: "indexKey", Type: domain.ParamString, Default: DefaultIndexKey},
				{Name: "resultsKey", Type: domain.ParamString, Default: DefaultResultsKey},
				{Name: "resultKey", Type: domain.ParamString, Description: "Store key whose value is appended to the results"},
			},
			Outputs: []string{DefaultIndexKey, DefaultResultsKey},
			Icon:    "skip-forward",
		},
		{
			ID:          LoopCheckID,
			Name:        "Loop Check",
			Description: "Routes to success while the counter is below the limit.",
			Category:    domain.CategoryControl,
			Params: []domain.ParamSpec{
				{Name: "counterKey", Type: domain.ParamString, Default: DefaultCounterKey},
				{Name: "limit", Type: domain.ParamNumber},
				{Name: "limitKey", Type: domain.ParamString, Description: "Store key holding the limit"},
			},
			Actions: []string{domain.ActionSuccess, domain.ActionDefault},
			Icon:    "rotate-cw",
		},
		{
			ID:          CounterID,
			Name:        "Counter",
			Description: "Initialises, increments or decrements a numeric store value.",
			Category:    domain.CategoryControl,
			Params: []domain.ParamSpec{
				{Name: "key", Type: domain.ParamString, Default: DefaultCounterKey},
				{Name: "operation", Type: domain.ParamString, Default: CounterIncrement, Description: "init | increment | decrement"},
				{Name: "step", Type: domain.ParamNumber, Default: 1},
				{Name: "initial", Type: domain.ParamNumber, Default: 0},
			},
			Outputs: []string{DefaultCounterKey},
			Icon:    "hash",
		},
		{
			ID:          SwitchID,
			Name:        "Switch",
			Description: "Routes on a store value through a value to action table.",
			Category:    domain.CategoryControl,
			Params: []domain.ParamSpec{
				{Name: "key", Type: domain.ParamString, Required: true},
				{Name: "cases", Type: domain.ParamObject, Required: true},
				{Name: "defaultAction", Type: domain.ParamString, Default: domain.ActionDefault},
			},
			Actions: []string{domain.ActionDefault},
			Icon:    "shuffle",
		},
		{
			ID:          ConditionID,
			Name:        "Condition",
			Description: "Compares a store value with a literal and routes to success or error.",
			Category:    domain.CategoryControl,
			Params: []domain.ParamSpec{
				{Name: "key", Type: domain.ParamString, Required: true},
				{Name: "operator", Type: domain.ParamString, Default: OpEq, Description: "eq | ne | gt | lt | gte | lte | truthy | falsy"},
				{Name: "value", Description: "Literal of any type compared with the store value; numeric for gt, lt, gte and lte"},
			},
			Actions: []string{domain.ActionSuccess, domain.ActionError},
			Icon:    "git-branch",
		},
	}
}

// Register installs the control-flow family into reg. The batch variants
// resolve their processors through reg at invocation time.
func Register(reg Registrar) error {
	fns := map[string]domain.Function{
		BatchID:          NewBatch(reg),
		ParallelID:       NewParallel(reg),
		BatchForEachID:   NewBatchForEach(reg),
		ForEachID:        NewForEach(),
		ForEachAdvanceID: NewForEachAdvance(),
		LoopCheckID:      NewLoopCheck(),
		CounterID:        NewCounter(),
		SwitchID:         NewSwitch(),
		ConditionID:      NewCondition(),
	}
	for _, def := range Definitions() {
		if err := reg.Register(def, fns[def.ID]); err != nil {
			return fmt.Errorf("failed to register %s: %w", def.ID, err)
		}
	}
	return nil
}
