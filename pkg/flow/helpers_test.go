package flow_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/flow"
	"github.com/aretw0/weft/pkg/registry"
)

// tracker records how many processor invocations overlap in time.
type tracker struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (t *tracker) enter() {
	t.calls.Add(1)
	n := t.inFlight.Add(1)
	for {
		p := t.peak.Load()
		if n <= p || t.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (t *tracker) leave() { t.inFlight.Add(-1) }

// logSink collects ExecutionContext log lines from concurrent items.
type logSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *logSink) log(msg string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, msg)
}

func (s *logSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.lines...)
}

func fn(f func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result) domain.Function {
	return domain.FunctionFunc(f)
}

// newTestRegistry returns a registry holding the control-flow family plus a
// handful of processors used across the tests.
func newTestRegistry(tr *tracker) *registry.Registry {
	reg := registry.NewRegistry()
	if err := flow.Register(reg); err != nil {
		panic(err)
	}

	reg.MustRegister(domain.Definition{ID: "double"}, fn(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		n, ok := params[domain.KeyCurrentItem].(int)
		if !ok {
			return domain.Fail("not an int: %v", params[domain.KeyCurrentItem])
		}
		return domain.Ok(n * 2)
	}))

	// fails on 2, panics on 3
	reg.MustRegister(domain.Definition{ID: "fragile"}, fn(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		switch params[domain.KeyCurrentItem] {
		case 2:
			return domain.Fail("cannot handle 2")
		case 3:
			panic("boom")
		}
		return domain.Ok(params[domain.KeyCurrentItem])
	}))

	reg.MustRegister(domain.Definition{ID: "record"}, fn(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		seen, _ := ec.Store.GetOr("log", []int{}).([]int)
		seen = append(append([]int{}, seen...), params[domain.KeyCurrentIndex].(int))
		ec.Store.Set("log", seen)
		return domain.Ok(len(seen))
	}))

	reg.MustRegister(domain.Definition{ID: "slow"}, fn(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		if tr != nil {
			tr.enter()
			defer tr.leave()
		}
		item := params[domain.KeyCurrentItem].(int)
		// later items finish first
		time.Sleep(time.Duration(10-item%10) * time.Millisecond)
		return domain.Ok(item * 10)
	}))

	reg.MustRegister(domain.Definition{ID: "nil_output"}, fn(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		return domain.Ok(nil)
	}))

	reg.MustRegister(domain.Definition{ID: "scribble"}, fn(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		item, _ := ec.Store.Get(domain.KeyCurrentItem)
		ec.Store.Set("scribbled", item)
		ec.Log("scribbled")
		return domain.Ok(item)
	}))

	reg.MustRegister(domain.Definition{ID: "with_suffix"}, fn(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		return domain.Ok(params[domain.KeyCurrentItem].(string) + params["suffix"].(string))
	}))

	return reg
}

func newContext(initial map[string]any) *domain.ExecutionContext {
	return domain.NewExecutionContext("test-node", domain.NewStore(initial), nil, nil)
}

func execute(reg *registry.Registry, id string, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	f, ok := reg.Lookup(id)
	if !ok {
		panic("missing function " + id)
	}
	return flow.Invoke(context.Background(), f, params, ec)
}
