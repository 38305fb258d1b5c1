// Package env_attributes provides the env_attributes runner, which copies
// environment variables carrying a prefix into the cart attributes.
//
// Unlike merge_attributes, the change is local to the chain state: the
// storefront only sees it if a later step sends the cart somewhere.
package env_attributes

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/registry"
)

// RunnerType is the name chains use to reference this runner.
const RunnerType = "env_attributes"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the env_attributes runner.
type Input struct {
	Prefix      string `cty:"prefix"`
	StripPrefix bool   `cty:"strip_prefix,optional"`
	Lowercase   bool   `cty:"lowercase,optional"`
}

func newInput() any {
	return &Input{StripPrefix: true, Lowercase: true}
}

// collect picks the variables starting with the prefix out of environ.
func collect(environ []string, input *Input) map[string]any {
	attrs := make(map[string]any)
	for _, e := range environ {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], input.Prefix) {
			continue
		}
		key := pair[0]
		if input.StripPrefix {
			key = strings.TrimPrefix(key, input.Prefix)
		}
		if input.Lowercase {
			key = strings.ToLower(key)
		}
		if key == "" {
			continue
		}
		attrs[key] = pair[1]
	}
	return attrs
}

func build(_ context.Context, deps registry.Deps, raw any) (chain.Action[cart.Cart], error) {
	input, ok := raw.(*Input)
	if !ok {
		return nil, fmt.Errorf("unexpected input type %T", raw)
	}
	if input.Prefix == "" {
		return nil, fmt.Errorf("prefix must not be empty")
	}
	deps = deps.WithDefaults()

	return func(ctx context.Context, c cart.Cart) (chain.Outcome[cart.Cart], error) {
		attrs := collect(deps.Environ(), input)
		ctxlog.FromContext(ctx).Debug("Collected environment attributes.", "runner", RunnerType, "prefix", input.Prefix, "count", len(attrs))
		if len(attrs) == 0 {
			return chain.Continue(c), nil
		}
		return chain.Continue(c.WithAttributes(attrs)), nil
	}, nil
}

// Register registers the runner with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner(RunnerType, &registry.RegisteredRunner{
		Description: "Copies prefixed environment variables into the cart attributes.",
		NewInput:    newInput,
		Build:       build,
	})
}
