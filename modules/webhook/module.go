// Package webhook provides the webhook runner, which posts the cart to an
// HTTP endpoint and lets the endpoint veto the rest of the chain.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/ctxlog"
	"github.com/vk/cartchain/internal/registry"
)

// RunnerType is the name chains use to reference this runner.
const RunnerType = "webhook"

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 512

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the webhook runner.
type Input struct {
	URL          string            `cty:"url"`
	Method       string            `cty:"method,optional"`
	Timeout      time.Duration     `cty:"timeout,optional"`
	Headers      map[string]string `cty:"headers,optional"`
	StopOnStatus []int             `cty:"stop_on_status,optional"`
}

func newInput() any {
	return &Input{Method: http.MethodPost, Timeout: 5 * time.Second}
}

// newClient builds the HTTP client used by a single step.
func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
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
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url must use http or https, got %q", input.URL)
	}
	if input.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", input.Timeout)
	}
	client := newClient(input.Timeout)

	return func(ctx context.Context, c cart.Cart) (chain.Outcome[cart.Cart], error) {
		logger := ctxlog.FromContext(ctx).With("runner", RunnerType, "method", input.Method, "url", input.URL)

		body, err := json.Marshal(c)
		if err != nil {
			return chain.Outcome[cart.Cart]{}, fmt.Errorf("failed to encode cart: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, input.Method, input.URL, bytes.NewReader(body))
		if err != nil {
			return chain.Outcome[cart.Cart]{}, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range input.Headers {
			req.Header.Set(k, v)
		}

		logger.Info("Sending cart to webhook")
		resp, err := client.Do(req)
		if err != nil {
			return chain.Outcome[cart.Cart]{}, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()
		logger.Info("Received HTTP response", "status", resp.Status)

		switch {
		case slices.Contains(input.StopOnStatus, resp.StatusCode):
			_, _ = io.Copy(io.Discard, resp.Body)
			logger.Info("Webhook vetoed the chain.", "status_code", resp.StatusCode)
			return chain.Stop[cart.Cart](), nil
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			_, _ = io.Copy(io.Discard, resp.Body)
			return chain.Continue(c), nil
		default:
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return chain.Outcome[cart.Cart]{}, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
		}
	}, nil
}

// Register registers the runner with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner(RunnerType, &registry.RegisteredRunner{
		Description: "Posts the cart as JSON to a URL; listed status codes stop the chain.",
		NewInput:    newInput,
		Build:       build,
	})
}
