package print

import (
	"context"
	"fmt"
	"io"
	"slices"

	jsoniter "github.com/json-iterator/go"
	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/registry"
)

// RunnerType is the name chains use to reference this runner.
const RunnerType = "print"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print runner.
type Input struct {
	Label  string `cty:"label,optional"`
	Format string `cty:"format,optional"`
}

func newInput() any {
	return &Input{Format: "summary"}
}

// render writes the cart to w in the requested format.
func render(w io.Writer, input *Input, c cart.Cart) error {
	if input.Label != "" {
		if _, err := fmt.Fprintf(w, "%s:\n", input.Label); err != nil {
			return err
		}
	}

	switch input.Format {
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	default:
		if _, err := fmt.Fprintf(w, "      %s\n", c.Summary()); err != nil {
			return err
		}
		for _, it := range c.Items {
			if _, err := fmt.Fprintf(w, "      - %s x%d (variant %d) %s\n",
				it.Title, it.Quantity, it.VariantID, cart.FormatPrice(it.Price*it.Quantity)); err != nil {
				return err
			}
		}
		// Sort keys for consistent output
		keys := make([]string, 0, len(c.Attributes))
		for k := range c.Attributes {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "      %s = %v\n", k, c.Attributes[k]); err != nil {
				return err
			}
		}
		return nil
	}
}

func build(_ context.Context, deps registry.Deps, raw any) (chain.Action[cart.Cart], error) {
	input, ok := raw.(*Input)
	if !ok {
		return nil, fmt.Errorf("unexpected input type %T", raw)
	}
	if input.Format != "summary" && input.Format != "json" {
		return nil, fmt.Errorf("unknown format %q, expected \"summary\" or \"json\"", input.Format)
	}
	deps = deps.WithDefaults()

	return func(ctx context.Context, c cart.Cart) (chain.Outcome[cart.Cart], error) {
		ctxlog.FromContext(ctx).Info("Printing cart", "runner", RunnerType, "format", input.Format)
		if err := render(deps.Output, input, c); err != nil {
			return chain.Outcome[cart.Cart]{}, fmt.Errorf("failed to print cart: %w", err)
		}
		return chain.Continue(c), nil
	}, nil
}

// Register registers the runner with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner(RunnerType, &registry.RegisteredRunner{
		Description: "Prints the cart and passes it through unchanged.",
		NewInput:    newInput,
		Build:       build,
	})
}
