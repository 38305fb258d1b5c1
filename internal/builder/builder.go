package builder

import (
	"context"
	"fmt"

	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/config"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/decode"
	"github.com/vk/cartchain/internal/registry"
)

// Build creates an executor for a single chain definition.
func Build(ctx context.Context, def *config.Chain, reg *registry.Registry, deps registry.Deps) (*chain.Executor[cart.Cart], error) {
	logger := ctxlog.FromContext(ctx).With("chain", def.Name)
	logger.Debug("Building chain.", "steps", len(def.Steps))

	e := chain.New[cart.Cart](def.Name)
	for i, s := range def.Steps {
		action, err := buildStep(ctx, s, reg, deps)
		if err != nil {
			return nil, fmt.Errorf("chain '%s': step '%s' (#%d): %w", def.Name, s.Name, i, err)
		}
		e.AddStep(chain.Step[cart.Cart]{Name: s.Name, Action: action})
		logger.Debug("Step bound.", "step", s.Name, "runner", s.Runner, "index", i)
	}
	return e, nil
}

func buildStep(ctx context.Context, s *config.Step, reg *registry.Registry, deps registry.Deps) (chain.Action[cart.Cart], error) {
	rn, ok := reg.Runner(s.Runner)
	if !ok {
		return nil, fmt.Errorf("unknown runner '%s'", s.Runner)
	}

	var input any
	if rn.NewInput != nil {
		input = rn.NewInput()
		if err := decode.Decode(ctx, s.Arguments, input); err != nil {
			return nil, fmt.Errorf("invalid arguments for runner '%s': %w", s.Runner, err)
		}
	} else if err := decode.Decode(ctx, s.Arguments, &struct{}{}); err != nil {
		return nil, fmt.Errorf("runner '%s' takes no arguments: %w", s.Runner, err)
	}

	action, err := rn.Build(ctx, deps, input)
	if err != nil {
		return nil, fmt.Errorf("runner '%s': %w", s.Runner, err)
	}
	return action, nil
}

// BuildAll creates an executor for every chain of the model, keyed by chain
// name.
func BuildAll(ctx context.Context, model *config.Model, reg *registry.Registry, deps registry.Deps) (map[string]*chain.Executor[cart.Cart], error) {
	if err := reg.Validate(ctx, model); err != nil {
		return nil, err
	}
	out := make(map[string]*chain.Executor[cart.Cart], len(model.Chains))
	for _, def := range model.Chains {
		e, err := Build(ctx, def, reg, deps)
		if err != nil {
			return nil, err
		}
		out[def.Name] = e
	}
	return out, nil
}
