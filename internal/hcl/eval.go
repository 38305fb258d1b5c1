package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions available to every expression in a chain file.
var functions = map[string]function.Function{
	"upper":      stdlib.UpperFunc,
	"lower":      stdlib.LowerFunc,
	"format":     stdlib.FormatFunc,
	"min":        stdlib.MinFunc,
	"max":        stdlib.MaxFunc,
	"concat":     stdlib.ConcatFunc,
	"merge":      stdlib.MergeFunc,
	"coalesce":   stdlib.CoalesceFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
}

func newEvalContext(locals map[string]cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"local": cty.ObjectVal(locals),
		},
		Functions: functions,
	}
}

// evalLocals evaluates locals in dependency order. Each pass evaluates the
// locals whose references are already resolved; a pass without progress
// means a reference is missing or cyclic.
func evalLocals(ctx context.Context, attrs []*hcl.Attribute) (map[string]cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	values := make(map[string]cty.Value, len(attrs))

	seen := make(map[string]hcl.Range, len(attrs))
	for _, attr := range attrs {
		if prev, ok := seen[attr.Name]; ok {
			return nil, fmt.Errorf("local '%s' is declared twice (%s and %s)", attr.Name, prev, attr.Range)
		}
		seen[attr.Name] = attr.Range
	}

	pending := append([]*hcl.Attribute(nil), attrs...)
	sortAttributes(pending)

	for len(pending) > 0 {
		var next []*hcl.Attribute
		for _, attr := range pending {
			if !localsResolved(attr.Expr, values) {
				next = append(next, attr)
				continue
			}
			val, diags := attr.Expr.Value(newEvalContext(values))
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate local '%s': %w", attr.Name, diags)
			}
			values[attr.Name] = val
			logger.Debug("Evaluated local.", "name", attr.Name, "type", val.Type().FriendlyName())
		}

		if len(next) == len(pending) {
			// Evaluating with what we have yields the diagnostic for the
			// first unresolvable reference.
			attr := next[0]
			_, diags := attr.Expr.Value(newEvalContext(values))
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate local '%s': %w", attr.Name, diags)
			}
			return nil, fmt.Errorf("failed to evaluate local '%s': cyclic reference", attr.Name)
		}
		pending = next
	}
	return values, nil
}

// localsResolved reports whether every `local.*` reference of expr has
// already been evaluated.
func localsResolved(expr hcl.Expression, values map[string]cty.Value) bool {
	for _, traversal := range expr.Variables() {
		if traversal.RootName() != "local" || len(traversal) < 2 {
			continue
		}
		step, ok := traversal[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		if _, done := values[step.Name]; !done {
			return false
		}
	}
	return true
}
