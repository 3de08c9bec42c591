package domain

import "fmt"

// Standard action names emitted by the control-flow family.
const (
	ActionNext     = "next"
	ActionComplete = "complete"
	ActionSuccess  = "success"
	ActionError    = "error"
	ActionDefault  = "default"
)

// Result is the uniform value every Function returns.
//
// Expected failures (bad input, missing record, unreachable network) are
// reported with Success=false and an Error message, never as a panic.
// Action, when set, names the edge the graph runtime should follow next;
// an empty Action selects the default edge.
type Result struct {
	Output  any    `json:"output"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Action  string `json:"action,omitempty"`
}

// Ok builds a successful Result.
func Ok(output any) Result {
	return Result{Output: output, Success: true}
}

// OkAction builds a successful Result that routes through action.
func OkAction(output any, action string) Result {
	return Result{Output: output, Success: true, Action: action}
}

// Fail builds a failed Result with a formatted error message.
func Fail(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}
