package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/vk/cartchain/internal/chain"
)

func newChain(c *Collector, steps ...chain.Step[int]) *chain.Executor[int] {
	e := chain.New[int]("demo")
	e.Observe(c)
	for _, s := range steps {
		e.AddStep(s)
	}
	return e
}

func inc(name string) chain.Step[int] {
	return chain.Step[int]{Name: name, Action: func(_ context.Context, s int) (chain.Outcome[int], error) {
		return chain.Continue(s + 1), nil
	}}
}

func TestCollector_CountsOutcomes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	c := New()
	stopAtThreshold := chain.Step[int]{Name: "gate", Action: func(_ context.Context, s int) (chain.Outcome[int], error) {
		if s < 10 {
			return chain.Stop[int](), nil
		}
		return chain.Continue(s), nil
	}}
	ok := newChain(c, inc("add"), stopAtThreshold)
	failing := newChain(c, chain.Step[int]{Name: "boom", Action: func(context.Context, int) (chain.Outcome[int], error) {
		return chain.Outcome[int]{}, errors.New("boom")
	}})

	// --- Act ---
	require.NoError(t, ok.Run(context.Background(), 20))
	require.NoError(t, ok.Run(context.Background(), 1))
	require.Error(t, failing.Run(context.Background(), 0))

	// --- Assert ---
	require.InDelta(t, 1, testutil.ToFloat64(c.runs.WithLabelValues("demo", "committed")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.runs.WithLabelValues("demo", "stopped")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.runs.WithLabelValues("demo", "failed")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(c.steps.WithLabelValues("demo", "add", "continued")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.steps.WithLabelValues("demo", "gate", "continued")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.steps.WithLabelValues("demo", "gate", "stopped")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(c.steps.WithLabelValues("demo", "boom", "failed")), 0)
	require.Equal(t, 3, testutil.CollectAndCount(c.stepDuration))
}

func TestCollector_Handler(t *testing.T) {
	t.Parallel()
	c := New()
	require.NoError(t, newChain(c, inc("add")).Run(context.Background(), 0))

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `cartchain_runs_total{chain="demo",outcome="committed"} 1`)
	require.Contains(t, string(body), `cartchain_steps_total{chain="demo",status="continued",step="add"} 1`)
	require.Contains(t, string(body), "cartchain_step_duration_seconds_bucket")
}

func TestCollector_IndependentRegistries(t *testing.T) {
	t.Parallel()
	require.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
