package app

import (
	"context"
	"fmt"

	"github.com/vk/cartchain/internal/builder"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/registry"
)

// Run fetches the session cart, executes the configured chain against it
// and writes the report to the app's output. A step error is returned
// after the report has been written.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.startHealthCheckServer(a.config.HealthcheckPort)
	defer a.closeHealthCheckServer(ctx)

	def, err := a.model.Chain(a.config.ChainName)
	if err != nil {
		return err
	}

	exec, err := builder.Build(ctx, def, a.registry, registry.Deps{Store: a.store, Output: a.outW})
	if err != nil {
		return fmt.Errorf("failed to build chain: %w", err)
	}
	exec.Observe(a.events)
	exec.Observe(a.metrics)
	a.logger.Info("Chain ready.", "chain", def.Name, "steps", exec.Len(), "source", def.Source)

	initial, err := a.store.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch cart: %w", err)
	}
	a.logger.Debug("Fetched initial cart.", "cart", initial.Summary())

	runErr := exec.Run(ctx, initial)

	result, committed := exec.Result()
	rep := report{
		Chain:     def.Name,
		Committed: committed,
		Events:    a.events.Records(),
	}
	if committed {
		rep.Cart = &result
	}
	if runErr != nil {
		rep.Error = runErr.Error()
	}
	if err := a.writeReport(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("chain execution failed: %w", runErr)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}
