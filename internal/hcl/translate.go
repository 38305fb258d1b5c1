package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/cartchain/internal/config"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translateChain converts the HCL-specific chain schema into the agnostic model.
func translateChain(ctx context.Context, cb *chainBlock, source string, evalCtx *hcl.EvalContext) (*config.Chain, error) {
	c := &config.Chain{
		Name:        cb.Name,
		Description: cb.Description,
		Source:      source,
		Steps:       make([]*config.Step, 0, len(cb.Steps)),
	}
	for _, sb := range cb.Steps {
		args, err := evalArguments(sb.Arguments, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("chain '%s', step '%s': %w", cb.Name, sb.Name, err)
		}
		c.Steps = append(c.Steps, &config.Step{
			Name:      sb.Name,
			Runner:    sb.Runner,
			Arguments: args,
		})
	}
	ctxlog.FromContext(ctx).Debug("Translated chain.", "chain", c.Name, "steps", len(c.Steps))
	return c, nil
}

// evalArguments evaluates every attribute of an arguments block into a
// single object value.
func evalArguments(block *argsBlock, evalCtx *hcl.EvalContext) (cty.Value, error) {
	if block == nil || block.Body == nil {
		return cty.EmptyObjectVal, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal, nil
	}

	vals := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("argument '%s': %w", name, diags)
		}
		vals[name] = val
	}
	return cty.ObjectVal(vals), nil
}
