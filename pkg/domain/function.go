package domain

import "context"

// ParamType is the declared type tag of a function parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamObject  ParamType = "object"
	ParamArray   ParamType = "array"
)

// ParamSpec describes one parameter accepted by a function.
// The engine does not validate parameters generically; each function checks
// the shapes it depends on. An empty Type accepts a value of any type.
type ParamSpec struct {
	Name        string    `json:"name" yaml:"name" mapstructure:"name"`
	Type        ParamType `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}

// Definition is the static metadata of a registered function.
// It is immutable once registered.
type Definition struct {
	ID          string      `json:"id" yaml:"id" mapstructure:"id"`
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Category    string      `json:"category,omitempty" yaml:"category,omitempty" mapstructure:"category"`
	Params      []ParamSpec `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
	Outputs     []string    `json:"outputs,omitempty" yaml:"outputs,omitempty" mapstructure:"outputs"`
	Actions     []string    `json:"actions,omitempty" yaml:"actions,omitempty" mapstructure:"actions"`
	Icon        string      `json:"icon,omitempty" yaml:"icon,omitempty" mapstructure:"icon"`
}

// Function is the executable side of a registry entry.
type Function interface {
	Execute(ctx context.Context, params map[string]any, ec *ExecutionContext) Result
}

// FunctionFunc adapts an ordinary function to the Function interface.
type FunctionFunc func(ctx context.Context, params map[string]any, ec *ExecutionContext) Result

// Execute calls f(ctx, params, ec).
func (f FunctionFunc) Execute(ctx context.Context, params map[string]any, ec *ExecutionContext) Result {
	return f(ctx, params, ec)
}
