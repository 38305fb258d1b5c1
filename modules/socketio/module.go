// Package socketio provides the socketio_emit runner, which publishes the
// cart to a socket.io server.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// RunnerType is the name chains use to reference this runner.
const RunnerType = "socketio_emit"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the socketio_emit runner.
type Input struct {
	URL                string        `cty:"url"`
	Namespace          string        `cty:"namespace,optional"`
	Event              string        `cty:"event"`
	Timeout            time.Duration `cty:"timeout,optional"`
	WaitAck            bool          `cty:"wait_ack,optional"`
	InsecureSkipVerify bool          `cty:"insecure_skip_verify,optional"`
	BestEffort         bool          `cty:"best_effort,optional"`
}

func newInput() any {
	return &Input{Namespace: "/", Timeout: 5 * time.Second}
}

// payload converts the cart into the generic map the socket.io encoder
// expects.
func payload(c cart.Cart) (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// emit connects, sends one event and disconnects.
func emit(ctx context.Context, input *Input, data map[string]any) error {
	logger := ctxlog.FromContext(ctx).With("runner", RunnerType, "url", input.URL, "event", input.Event)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, input.Timeout)
	defer cancel()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetReconnection(false)
	opts.SetTimeout(input.Timeout)
	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	// --- Event Listeners ---
	err = io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", input.Namespace, "sid", io.Id())

		if !input.WaitAck {
			finish(io.Emit(input.Event, data))
			return
		}
		err := io.Emit(input.Event, data, func(_ []any, err error) {
			finish(err)
		})
		if err != nil {
			finish(err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register connect listener: %w", err)
	}

	err = io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				finish(fmt.Errorf("connection failed: %w", e))
				return
			}
		}
		finish(fmt.Errorf("connection failed: %v", errs))
	})
	if err != nil {
		return fmt.Errorf("failed to register connect_error listener: %w", err)
	}

	// --- Execution Block ---
	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return fmt.Errorf("timed out after connecting while waiting for acknowledgement of '%s'", input.Event)
		}
		return fmt.Errorf("timed out while waiting for initial connection")
	case err := <-done:
		return err
	}
}

func build(_ context.Context, _ registry.Deps, raw any) (chain.Action[cart.Cart], error) {
	input, ok := raw.(*Input)
	if !ok {
		return nil, fmt.Errorf("unexpected input type %T", raw)
	}
	u, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("url must use http, https, ws or wss, got %q", input.URL)
	}
	if input.Event == "" {
		return nil, fmt.Errorf("event must not be empty")
	}
	if input.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", input.Timeout)
	}

	return func(ctx context.Context, c cart.Cart) (chain.Outcome[cart.Cart], error) {
		data, err := payload(c)
		if err != nil {
			return chain.Outcome[cart.Cart]{}, fmt.Errorf("failed to encode cart: %w", err)
		}
		if err := emit(ctx, input, data); err != nil {
			if input.BestEffort {
				ctxlog.FromContext(ctx).Warn("Socket.IO emit failed, continuing.", "runner", RunnerType, "error", err)
				return chain.Continue(c), nil
			}
			return chain.Outcome[cart.Cart]{}, err
		}
		return chain.Continue(c), nil
	}, nil
}

// Register registers the runner with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner(RunnerType, &registry.RegisteredRunner{
		Description: "Emits the cart to a socket.io server and passes it through unchanged.",
		NewInput:    newInput,
		Build:       build,
	})
}
