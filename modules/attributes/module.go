// Package attributes provides the merge_attributes runner, which merges a
// fixed set of attributes into the session cart through the storefront API.
package attributes

import (
	"context"
	"fmt"
	"maps"

	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/registry"
)

// RunnerType is the name chains use to reference this runner.
const RunnerType = "merge_attributes"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the merge_attributes runner.
type Input struct {
	Attributes map[string]any `cty:"attributes"`
}

func build(_ context.Context, deps registry.Deps, raw any) (chain.Action[cart.Cart], error) {
	input, ok := raw.(*Input)
	if !ok {
		return nil, fmt.Errorf("unexpected input type %T", raw)
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("cart store dependency was not injected")
	}
	if len(input.Attributes) == 0 {
		return nil, fmt.Errorf("attributes must not be empty")
	}
	attrs := maps.Clone(input.Attributes)

	return func(ctx context.Context, _ cart.Cart) (chain.Outcome[cart.Cart], error) {
		updated, err := deps.Store.UpdateAttributes(ctx, attrs)
		if err != nil {
			return chain.Outcome[cart.Cart]{}, fmt.Errorf("failed to update cart attributes: %w", err)
		}
		ctxlog.FromContext(ctx).Info("Cart attributes merged.", "runner", RunnerType, "keys", len(attrs))
		return chain.Continue(updated), nil
	}, nil
}

// Register registers the runner with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner(RunnerType, &registry.RegisteredRunner{
		Description: "Merges attributes into the cart through the storefront API.",
		NewInput:    func() any { return new(Input) },
		Build:       build,
	})
}
