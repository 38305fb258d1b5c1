package testutil

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/registry"
)

// Runner types registered by ScriptModule.
const (
	ContinueRunner = "test_continue"
	StopRunner     = "test_stop"
	FailRunner     = "test_fail"
)

type scriptInput struct {
	Label      string         `cty:"label,optional"`
	Attributes map[string]any `cty:"attributes,optional"`
	Message    string         `cty:"message,optional"`
}

// ScriptModule registers runners whose behaviour is fully described by their
// arguments, and records the label of every step it executes.
type ScriptModule struct {
	mu    sync.Mutex
	calls []string
}

// Calls returns the labels of the executed steps, in order.
func (m *ScriptModule) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *ScriptModule) record(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, label)
}

// Register implements the registry.Module interface.
func (m *ScriptModule) Register(r *registry.Registry) {
	newInput := func() any { return &scriptInput{Message: "scripted failure"} }

	r.RegisterRunner(ContinueRunner, &registry.RegisteredRunner{
		Description: "Merges attributes into the cart locally and continues.",
		NewInput:    newInput,
		Build: func(_ context.Context, _ registry.Deps, raw any) (chain.Action[cart.Cart], error) {
			input := raw.(*scriptInput)
			attrs := maps.Clone(input.Attributes)
			return func(_ context.Context, c cart.Cart) (chain.Outcome[cart.Cart], error) {
				m.record(input.Label)
				return chain.Continue(c.WithAttributes(attrs)), nil
			}, nil
		},
	})
	r.RegisterRunner(StopRunner, &registry.RegisteredRunner{
		Description: "Stops the chain.",
		NewInput:    newInput,
		Build: func(_ context.Context, _ registry.Deps, raw any) (chain.Action[cart.Cart], error) {
			input := raw.(*scriptInput)
			return func(context.Context, cart.Cart) (chain.Outcome[cart.Cart], error) {
				m.record(input.Label)
				return chain.Stop[cart.Cart](), nil
			}, nil
		},
	})
	r.RegisterRunner(FailRunner, &registry.RegisteredRunner{
		Description: "Fails with the configured message.",
		NewInput:    newInput,
		Build: func(_ context.Context, _ registry.Deps, raw any) (chain.Action[cart.Cart], error) {
			input := raw.(*scriptInput)
			return func(context.Context, cart.Cart) (chain.Outcome[cart.Cart], error) {
				m.record(input.Label)
				return chain.Outcome[cart.Cart]{}, errors.New(input.Message)
			}, nil
		},
	})
}
