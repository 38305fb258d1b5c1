// Package gift provides the min_total_gift runner, which hands out a free
// gift line to carts whose total reaches a threshold and stops the chain
// for every other cart.
package gift

import (
	"context"
	"fmt"

	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/registry"
)

// RunnerType is the name chains use to reference this runner.
const RunnerType = "min_total_gift"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the min_total_gift runner. Prices are in
// cents.
type Input struct {
	MinTotal      int64  `cty:"min_total"`
	VariantID     int64  `cty:"variant_id,optional"`
	ProductID     int64  `cty:"product_id,optional"`
	Title         string `cty:"title,optional"`
	Quantity      int64  `cty:"quantity,optional"`
	SkipIfPresent bool   `cty:"skip_if_present,optional"`
}

// newInput returns an Input holding the defaults of every optional argument.
func newInput() any {
	return &Input{
		VariantID:     cart.GiftVariantID,
		Title:         "Free Gift",
		Quantity:      1,
		SkipIfPresent: true,
	}
}

// build validates the input and returns the step action.
func build(_ context.Context, deps registry.Deps, raw any) (chain.Action[cart.Cart], error) {
	input, ok := raw.(*Input)
	if !ok {
		return nil, fmt.Errorf("unexpected input type %T", raw)
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("cart store dependency was not injected")
	}
	if input.MinTotal < 0 {
		return nil, fmt.Errorf("min_total must not be negative, got %d", input.MinTotal)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", input.Quantity)
	}

	return func(ctx context.Context, c cart.Cart) (chain.Outcome[cart.Cart], error) {
		logger := ctxlog.FromContext(ctx).With("runner", RunnerType, "total", c.TotalPrice, "min_total", input.MinTotal)

		if c.TotalPrice < input.MinTotal {
			logger.Info("Cart total below threshold, stopping chain.")
			return chain.Stop[cart.Cart](), nil
		}
		if input.SkipIfPresent && c.HasVariant(input.VariantID) {
			logger.Info("Gift already in cart, continuing unchanged.", "variant_id", input.VariantID)
			return chain.Continue(c), nil
		}

		updated, err := deps.Store.AddItem(ctx, cart.LineItem{
			ProductID: input.ProductID,
			Title:     input.Title,
			Quantity:  input.Quantity,
			VariantID: input.VariantID,
		})
		if err != nil {
			return chain.Outcome[cart.Cart]{}, fmt.Errorf("failed to add gift to cart: %w", err)
		}
		logger.Info("Gift added to cart.", "variant_id", input.VariantID, "items", updated.ItemCount())
		return chain.Continue(updated), nil
	}, nil
}

// Register registers the runner with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner(RunnerType, &registry.RegisteredRunner{
		Description: "Adds a free gift line when the cart total reaches min_total, otherwise stops the chain.",
		NewInput:    newInput,
		Build:       build,
	})
}
