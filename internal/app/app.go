package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/cartstore"
	"github.com/vk/cartchain/internal/config"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/eventlog"
	"github.com/vk/cartchain/internal/loader"
	"github.com/vk/cartchain/internal/metrics"
	"github.com/vk/cartchain/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	model    *config.Model
	store    cartstore.Store
	events   *eventlog.Log
	metrics  *metrics.Collector

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// cart store. Configuration errors are fatal at startup and cause a panic.
func NewApp(outW io.Writer, appConfig *Config, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	chainLoader, err := loader.ForPaths(appConfig.ChainPaths)
	if err != nil {
		panic(fmt.Errorf("failed to inspect chain paths: %w", err))
	}
	model, err := chainLoader.Load(ctx, appConfig.ChainPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.", "chains", model.Names())

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.RegisterAll(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "runners", reg.Names())

	if err := reg.Validate(ctx, model); err != nil {
		// A chain referencing a runner that is not compiled in is a
		// mismatch between code and config.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	store, err := newStore(ctx, appConfig)
	if err != nil {
		panic(err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
		model:    model,
		store:    store,
		events:   eventlog.New(),
		metrics:  metrics.New(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded chain definitions.
func (a *App) Model() *config.Model {
	return a.model
}

// Store returns the cart backend the chains run against.
func (a *App) Store() cartstore.Store {
	return a.store
}

// Close releases the cart backend.
func (a *App) Close() error {
	if closer, ok := a.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// newStore creates the cart backend selected by the configuration, seeded
// with the mock cart.
func newStore(ctx context.Context, cfg *Config) (cartstore.Store, error) {
	seed := cart.NewMockCart(cfg.InitialTotal)
	if cfg.StorePath != "" {
		store, err := cartstore.OpenSQLite(ctx, cfg.StorePath, seed)
		if err != nil {
			return nil, fmt.Errorf("failed to open cart store: %w", err)
		}
		ctxlog.FromContext(ctx).Debug("Using SQLite cart store.", "path", cfg.StorePath)
		return store, nil
	}

	var opts []cartstore.Option
	if cfg.StoreLatency > 0 {
		opts = append(opts, cartstore.WithLatency(cfg.StoreLatency))
	}
	return cartstore.NewInMemory(seed, opts...), nil
}

// Events returns the event log of the runs performed so far.
func (a *App) Events() *eventlog.Log {
	return a.events
}

// Metrics returns the prometheus collector observing every run.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}
