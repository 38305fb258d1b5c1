package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/metrics"
)

func TestHealthCheckRoutes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a := &App{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics.New(),
	}
	a.metrics.Observe(context.Background(), chain.Event{Kind: chain.EventChainCommitted, Chain: "free_gift", Index: -1})
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	// --- Act ---
	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	healthBody, _ := io.ReadAll(health.Body)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	metricsBody, _ := io.ReadAll(metricsResp.Body)

	// --- Assert ---
	require.Equal(t, http.StatusOK, health.StatusCode)
	require.Equal(t, "OK\n", string(healthBody))
	require.Equal(t, http.StatusOK, metricsResp.StatusCode)
	require.Contains(t, string(metricsBody), `cartchain_runs_total{chain="free_gift",outcome="committed"} 1`)
}

func TestHealthCheckServer_DisabledAndClose(t *testing.T) {
	t.Parallel()
	a := &App{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics.New(),
	}

	a.startHealthCheckServer(0)

	require.Nil(t, a.httpServer)
	require.NoError(t, a.closeHealthCheckServer(context.Background()))
}
