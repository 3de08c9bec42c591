package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo() domain.Function {
	return domain.FunctionFunc(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
		return domain.Ok(params["value"])
	})
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(domain.Definition{ID: "echo"}, echo()))

	fn, ok := reg.Lookup("echo")
	require.True(t, ok)
	res := fn.Execute(context.Background(), map[string]any{"value": 42}, domain.NewExecutionContext("n", nil, nil, nil))
	assert.True(t, res.Success)
	assert.Equal(t, 42, res.Output)

	def, ok := reg.Definition("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", def.Name, "name defaults to id")

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(domain.Definition{ID: "echo"}, echo()))

	err := reg.Register(domain.Definition{ID: "echo"}, echo())
	assert.ErrorIs(t, err, domain.ErrDuplicateFunction)
	assert.Equal(t, 1, reg.Len())

	assert.Panics(t, func() { reg.MustRegister(domain.Definition{ID: "echo"}, echo()) })
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	reg := registry.NewRegistry()
	assert.ErrorIs(t, reg.Register(domain.Definition{}, echo()), domain.ErrInvalidDefinition)
	assert.ErrorIs(t, reg.Register(domain.Definition{ID: "x"}, nil), domain.ErrInvalidDefinition)
}

func TestRegistry_DefinitionsSorted(t *testing.T) {
	reg := registry.NewRegistry()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		reg.MustRegister(domain.Definition{ID: id}, echo())
	}

	var ids []string
	for _, d := range reg.Definitions() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}

func TestRegistry_MiddlewareOrder(t *testing.T) {
	var trace []string
	mw := func(name string) registry.Middleware {
		return func(def domain.Definition, next domain.Function) domain.Function {
			return domain.FunctionFunc(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
				trace = append(trace, name+":"+def.ID)
				return next.Execute(ctx, params, ec)
			})
		}
	}

	reg := registry.NewRegistry(registry.WithMiddleware(mw("outer"), mw("inner")))
	reg.MustRegister(domain.Definition{ID: "echo"}, echo())

	fn, _ := reg.Lookup("echo")
	fn.Execute(context.Background(), nil, domain.NewExecutionContext("n", nil, nil, nil))

	assert.Equal(t, []string{"outer:echo", "inner:echo"}, trace)
}
