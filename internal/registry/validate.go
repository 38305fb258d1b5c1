package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/cartchain/internal/config"
	"github.com/vk/cartchain/internal/ctxlog"
)

// Validate checks that every step of every chain in model references a
// registered runner.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, c := range model.Chains {
		for i, s := range c.Steps {
			if _, ok := r.runners[s.Runner]; !ok {
				errs = append(errs, fmt.Sprintf("chain '%s': step '%s' (#%d) uses unknown runner '%s'", c.Name, s.Name, i, s.Runner))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed (known runners: %s):\n- %s",
			strings.Join(r.Names(), ", "), strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "chains", len(model.Chains), "runners", len(r.runners))
	return nil
}
