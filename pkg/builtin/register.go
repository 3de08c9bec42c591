package builtin

import (
	"fmt"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Registrar is the subset of *registry.Registry used to install built-ins.
type Registrar interface {
	Register(def domain.Definition, fn domain.Function) error
}

// Definitions returns the catalog metadata of the built-in leaves.
func Definitions() []domain.Definition {
	return []domain.Definition{
		{
			ID:          SetValueID,
			Name:        "Set Value",
			Description: "Writes a literal value (or a map of values) into the run store.",
			Category:    domain.CategoryData,
			Params: []domain.ParamSpec{
				{Name: "key", Type: domain.ParamString},
				{Name: "value", Type: domain.ParamString},
				{Name: "values", Type: domain.ParamObject, Description: "Several key/value pairs at once"},
			},
			Icon: "edit",
		},
		{
			ID:          GetValueID,
			Name:        "Get Value",
			Description: "Reads a run store value, falling back to a default.",
			Category:    domain.CategoryData,
			Params: []domain.ParamSpec{
				{Name: "key", Type: domain.ParamString, Required: true},
				{Name: "default", Type: domain.ParamString},
				{Name: "outputKey", Type: domain.ParamString, Description: "Copy the value to this key"},
			},
			Actions: []string{domain.ActionSuccess, domain.ActionDefault},
			Icon:    "eye",
		},
		{
			ID:          EnvID,
			Name:        "Environment",
			Description: "Reads a variable from the run environment.",
			Category:    domain.CategoryUtility,
			Params: []domain.ParamSpec{
				{Name: "name", Type: domain.ParamString, Required: true},
				{Name: "default", Type: domain.ParamString},
				{Name: "outputKey", Type: domain.ParamString},
			},
			Icon: "settings",
		},
		{
			ID:          LogID,
			Name:        "Log",
			Description: "Writes a message and selected store values to the run log.",
			Category:    domain.CategoryUtility,
			Params: []domain.ParamSpec{
				{Name: "message", Type: domain.ParamString, Required: true},
				{Name: "keys", Type: domain.ParamArray},
			},
			Icon: "file-text",
		},
		{
			ID:          DelayID,
			Name:        "Delay",
			Description: "Waits for a duration (\"2s\", or milliseconds as a number).",
			Category:    domain.CategoryUtility,
			Params: []domain.ParamSpec{
				{Name: "duration", Type: domain.ParamString, Required: true},
			},
			Icon: "clock",
		},
		{
			ID:          MemorySetID,
			Name:        "Remember",
			Description: "Persists a value across runs, with an optional TTL.",
			Category:    domain.CategoryMemory,
			Params: []domain.ParamSpec{
				{Name: "key", Type: domain.ParamString, Required: true},
				{Name: "value", Type: domain.ParamString},
				{Name: "valueKey", Type: domain.ParamString, Description: "Store key to persist instead of a literal"},
				{Name: "ttl", Type: domain.ParamString},
			},
			Icon: "save",
		},
		{
			ID:          MemoryGetID,
			Name:        "Recall",
			Description: "Loads a persisted value into the run store.",
			Category:    domain.CategoryMemory,
			Params: []domain.ParamSpec{
				{Name: "key", Type: domain.ParamString, Required: true},
				{Name: "default", Type: domain.ParamString},
				{Name: "outputKey", Type: domain.ParamString},
			},
			Actions: []string{domain.ActionSuccess, domain.ActionDefault},
			Icon:    "database",
		},
	}
}

// Register installs the built-in leaves into reg. A nil mem falls back to
// a process-local memory store.
func Register(reg Registrar, mem ports.MemoryStore) error {
	if mem == nil {
		mem = memory.NewMemory()
	}
	fns := map[string]domain.Function{
		SetValueID:  domain.FunctionFunc(SetValue),
		GetValueID:  domain.FunctionFunc(GetValue),
		EnvID:       domain.FunctionFunc(Env),
		LogID:       domain.FunctionFunc(Log),
		DelayID:     domain.FunctionFunc(Delay),
		MemorySetID: MemorySet(mem),
		MemoryGetID: MemoryGet(mem),
	}
	for _, def := range Definitions() {
		if err := reg.Register(def, fns[def.ID]); err != nil {
			return fmt.Errorf("failed to register %s: %w", def.ID, err)
		}
	}
	return nil
}
