package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// Middleware decorates a function at registration time (metrics, tracing, ...).
type Middleware func(def domain.Definition, next domain.Function) domain.Function

type entry struct {
	def domain.Definition
	fn  domain.Function
}

// Registry manages the available functions.
// Registration is expected at start-up; lookups are safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]entry
	middlewares []Middleware
}

// Option configures a Registry.
type Option func(*Registry)

// WithMiddleware wraps every registered function with mw.
// Middlewares apply in the order given, the first one being outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Registry) {
		r.middlewares = append(r.middlewares, mw...)
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a function to the registry under def.ID.
// Registering an id twice is rejected with domain.ErrDuplicateFunction.
func (r *Registry) Register(def domain.Definition, fn domain.Function) error {
	if def.ID == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidDefinition)
	}
	if fn == nil {
		return fmt.Errorf("%w: nil function for %s", domain.ErrInvalidDefinition, def.ID)
	}
	if def.Name == "" {
		def.Name = def.ID
	}

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		fn = r.middlewares[i](def, fn)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[def.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateFunction, def.ID)
	}
	r.entries[def.ID] = entry{def: def, fn: fn}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def domain.Definition, fn domain.Function) {
	if err := r.Register(def, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the function registered under id. It never invokes it.
func (r *Registry) Lookup(id string) (domain.Function, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.fn, true
}

// Definition returns the metadata registered under id.
func (r *Registry) Definition(id string) (domain.Definition, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	return e.def, ok
}

// Definitions returns every registered definition sorted by id.
func (r *Registry) Definitions() []domain.Definition {
	r.mu.RLock()
	defs := make([]domain.Definition, 0, len(r.entries))
	for _, e := range r.entries {
		defs = append(defs, e.def)
	}
	r.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
