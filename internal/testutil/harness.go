// Package testutil holds helpers shared by the application-level tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/cartchain/internal/app"
	"github.com/vk/cartchain/internal/registry"
)

// HarnessResult holds the outcomes of an application test run.
type HarnessResult struct {
	Output string
	Err    error
	App    *app.App
}

// RunApp writes files into a temporary directory, starts an App on it and
// runs the configured chain once. Files are keyed by their relative path.
// Empty ChainPaths default to the temporary directory; startup panics are
// reported through HarnessResult.Err.
func RunApp(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunAppWithContext(context.Background(), t, files, cfg, modules...)
}

// RunAppWithContext is RunApp with a caller provided context.
func RunAppWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	if len(cfg.ChainPaths) == 0 {
		cfg.ChainPaths = []string{tmpDir}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("CARTCHAIN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
		}
	})

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(out, appConfig, modules...)
	}()
	if panicErr != nil {
		return &HarnessResult{
			Output: out.String(),
			Err:    fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	t.Cleanup(func() { testApp.Close() })

	runErr := testApp.Run(ctx)
	return &HarnessResult{
		Output: out.String(),
		Err:    runErr,
		App:    testApp,
	}
}
