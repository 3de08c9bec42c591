// Package process exposes allow-listed local commands as functions.
//
// Parameters never reach the command line: each one is passed as a
// WEFT_ARG_<NAME> environment variable, which rules out flag injection.
// Standard output becomes the Result output, decoded when it is JSON.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

// Category is the catalog category of process functions.
const Category = "process"

// EnvPrefix prefixes the environment variables carrying parameters.
const EnvPrefix = "WEFT_ARG_"

// DefaultGracePeriod is how long a cancelled command may take to exit
// after the interrupt before it is killed.
const DefaultGracePeriod = 5 * time.Second

// Function runs one allow-listed command.
type Function struct {
	cfg     Config
	baseDir string
	grace   time.Duration
}

// Option configures a Function.
type Option func(*Function)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(f *Function) {
		f.baseDir = dir
	}
}

// WithGracePeriod overrides DefaultGracePeriod.
func WithGracePeriod(d time.Duration) Option {
	return func(f *Function) {
		f.grace = d
	}
}

// NewFunction creates a function for cfg.
func NewFunction(cfg Config, opts ...Option) *Function {
	f := &Function{cfg: cfg, grace: DefaultGracePeriod}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Execute implements domain.Function. The reserved outputKey parameter
// stores the output instead of forwarding it to the command.
func (f *Function) Execute(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	outputKey, _ := params["outputKey"].(string)

	cmd := exec.CommandContext(ctx, f.cfg.Command, f.cfg.Args...)
	cmd.Dir = f.baseDir
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = f.grace
	cmd.Env = append(cmd.Environ(), environment(f.cfg.Environment, params)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Fail("%s: %v", f.cfg.Name, ctxErr)
		}
		return domain.Fail("%s: execution failed: %v: %s", f.cfg.Name, err, strings.TrimSpace(stderr.String()))
	}

	output := parseOutput(stdout.String())
	if outputKey != "" {
		ec.Store.Set(outputKey, output)
	}
	return domain.Ok(output)
}

// environment renders the configured variables followed by one variable per
// parameter, in a stable order.
func environment(static map[string]string, params map[string]any) []string {
	env := make([]string, 0, len(static)+len(params))
	for k, v := range static {
		env = append(env, k+"="+v)
	}
	for k, v := range params {
		if k == "outputKey" {
			continue
		}
		env = append(env, EnvPrefix+strings.ToUpper(k)+"="+stringify(v))
	}
	sort.Strings(env)
	return env
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}

// parseOutput decodes JSON objects and arrays and falls back to the trimmed text.
func parseOutput(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	return trimmed
}

// Registrar is the subset of *registry.Registry used to install functions.
type Registrar interface {
	Register(def domain.Definition, fn domain.Function) error
}

// Register installs one function per config.
func Register(reg Registrar, cfgs []Config, opts ...Option) error {
	for _, cfg := range cfgs {
		def := domain.Definition{
			ID:          cfg.Name,
			Name:        cfg.Name,
			Description: cfg.Description,
			Category:    Category,
			Params: []domain.ParamSpec{
				{Name: "outputKey", Type: domain.ParamString, Description: "Store key receiving the output"},
			},
			Icon: "terminal",
		}
		if err := reg.Register(def, NewFunction(cfg, opts...)); err != nil {
			return fmt.Errorf("failed to register %s: %w", cfg.Name, err)
		}
	}
	return nil
}
