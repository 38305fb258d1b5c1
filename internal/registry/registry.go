package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/cartstore"
	"github.com/vk/cartchain/internal/chain"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Deps carries the shared collaborators a runner may use when building its
// step.
type Deps struct {
	// Store is the storefront cart backend.
	Store cartstore.Store
	// Output receives human-readable runner output.
	Output io.Writer
	// Environ lists the process environment as "KEY=value" pairs.
	Environ func() []string
}

// WithDefaults fills unset collaborators with process defaults.
func (d Deps) WithDefaults() Deps {
	if d.Output == nil {
		d.Output = os.Stdout
	}
	if d.Environ == nil {
		d.Environ = os.Environ
	}
	return d
}

// StepBuilder turns a decoded input struct into a step action.
type StepBuilder func(ctx context.Context, deps Deps, input any) (chain.Action[cart.Cart], error)

// RegisteredRunner holds the compiled Go parts of a runner.
type RegisteredRunner struct {
	Description string
	// NewInput returns a pointer to a fresh input struct, pre-filled with
	// the defaults of optional arguments. Nil means the runner takes no
	// arguments.
	NewInput func() any
	Build    StepBuilder
}

// Registry holds all the registered runners for a single application
// instance.
type Registry struct {
	runners map[string]*RegisteredRunner
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{runners: make(map[string]*RegisteredRunner)}
}

// RegisterRunner registers the Go implementation of a runner type.
func (r *Registry) RegisterRunner(name string, runner *RegisteredRunner) {
	if _, exists := r.runners[name]; exists {
		panic(fmt.Sprintf("runner with name '%s' already registered", name))
	}
	if runner == nil || runner.Build == nil {
		panic(fmt.Sprintf("runner '%s' must provide a Build function", name))
	}
	slog.Debug("Registering runner.", "name", name)
	r.runners[name] = runner
}

// Runner returns the runner registered under name.
func (r *Registry) Runner(name string) (*RegisteredRunner, bool) {
	rn, ok := r.runners[name]
	return rn, ok
}

// Names returns the registered runner types in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RegisterAll registers every module with r.
func (r *Registry) RegisterAll(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}
