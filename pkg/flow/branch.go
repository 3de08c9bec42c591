package flow

import (
	"context"
	"reflect"

	"github.com/aretw0/weft/pkg/domain"
)

const (
	SwitchID    = "switch"
	ConditionID = "condition"
)

type switchParams struct {
	Key           string            `mapstructure:"key"`
	Cases         map[string]string `mapstructure:"cases"`
	DefaultAction string            `mapstructure:"defaultAction"`
}

// Switch routes on a Store value: the stringified value is looked up in a
// value -> action table, falling back to the default action.
// It has no failure semantics of its own.
type Switch struct{}

// NewSwitch creates a Switch node.
func NewSwitch() *Switch {
	return &Switch{}
}

// Execute implements domain.Function.
func (s *Switch) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	p := switchParams{DefaultAction: domain.ActionDefault}
	if err := decodeParams(params, &p); err != nil {
		return domain.Fail("%s: %v", SwitchID, err)
	}
	if p.DefaultAction == "" {
		p.DefaultAction = domain.ActionDefault
	}

	value, _ := ec.Store.Get(p.Key)
	action, ok := p.Cases[stringify(value)]
	if !ok {
		action = p.DefaultAction
	}
	return domain.OkAction(value, action)
}

// Condition operators.
const (
	OpEq     = "eq"
	OpNe     = "ne"
	OpGt     = "gt"
	OpLt     = "lt"
	OpGte    = "gte"
	OpLte    = "lte"
	OpTruthy = "truthy"
	OpFalsy  = "falsy"
)

type conditionParams struct {
	Key      string `mapstructure:"key"`
	Operator string `mapstructure:"operator"`
	Value    any    `mapstructure:"value"`
}

// Condition compares a Store value with a literal and routes through
// "success" or "error". The comparison outcome is the output; a false
// comparison is not a node failure.
type Condition struct{}

// NewCondition creates a Condition node.
func NewCondition() *Condition {
	return &Condition{}
}

// Execute implements domain.Function.
func (c *Condition) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	p := conditionParams{Operator: OpEq}
	if err := decodeParams(params, &p); err != nil {
		return domain.Fail("%s: %v", ConditionID, err)
	}

	left, _ := ec.Store.Get(p.Key)
	ok, known := compare(p.Operator, left, p.Value)
	if !known {
		return domain.Fail("%s: unknown operator '%s'", ConditionID, p.Operator)
	}

	action := domain.ActionError
	if ok {
		action = domain.ActionSuccess
	}
	return domain.OkAction(ok, action)
}

// compare evaluates op. The second return value is false for unknown operators.
func compare(op string, left, right any) (bool, bool) {
	switch op {
	case OpEq:
		return equal(left, right), true
	case OpNe:
		return !equal(left, right), true
	case OpTruthy:
		return truthy(left), true
	case OpFalsy:
		return !truthy(left), true
	case OpGt, OpLt, OpGte, OpLte:
		l, lok := toNumber(left)
		r, rok := toNumber(right)
		if !lok || !rok {
			return false, true
		}
		switch op {
		case OpGt:
			return l > r, true
		case OpLt:
			return l < r, true
		case OpGte:
			return l >= r, true
		default:
			return l <= r, true
		}
	}
	return false, false
}

// equal treats numbers of different Go types as equal when their values match.
func equal(a, b any) bool {
	if an, ok := numeric(a); ok {
		if bn, ok := numeric(b); ok {
			return an == bn
		}
	}
	return reflect.DeepEqual(a, b)
}
