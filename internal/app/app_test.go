package app_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"github.com/vk/cartchain/internal/app"
	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/testutil"
	"github.com/vk/cartchain/modules/gift"
)

const freeGiftChain = `
chain "free_gift" {
  step "check_and_add_gift" {
    runner = "min_total_gift"
    arguments {
      min_total = 10000
    }
  }

  step "update_cart_attribute" {
    runner = "merge_attributes"
    arguments {
      attributes = { giftId = 42 }
    }
  }
}
`

func TestApp_FreeGiftCommitted(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{"chains/free_gift.hcl": freeGiftChain}

	// --- Act ---
	result := testutil.RunApp(t, files, app.Config{InitialTotal: 12000})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Contains(t, result.Output, "Starting chain execution...")
	require.Contains(t, result.Output, "check_and_add_gift: continued")
	require.Contains(t, result.Output, "Chain execution completed!")
	require.Contains(t, result.Output, "Result: token=mock-cart-token")

	stored, err := result.App.Store().Fetch(t.Context())
	require.NoError(t, err)
	require.True(t, stored.HasVariant(cart.GiftVariantID))
	require.EqualValues(t, 42, stored.Attributes["giftId"])
}

func TestApp_FreeGiftBelowThresholdLeavesResultUnchanged(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"free_gift.hcl": freeGiftChain}, app.Config{InitialTotal: 5000})

	require.NoError(t, result.Err)
	require.Contains(t, result.Output, "check_and_add_gift: stopped the chain")
	require.Contains(t, result.Output, "Result: unchanged")
	require.NotContains(t, result.Output, "update_cart_attribute: started")

	stored, err := result.App.Store().Fetch(t.Context())
	require.NoError(t, err)
	require.False(t, stored.HasVariant(cart.GiftVariantID))
	require.Empty(t, stored.Attributes)
}

func TestApp_YAMLChainWithScriptedRunners(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	script := &testutil.ScriptModule{}
	files := map[string]string{"chains.yaml": `
chains:
  - name: scripted
    steps:
      - name: first
        runner: test_continue
        arguments:
          label: first
          attributes:
            seen: true
      - name: second
        runner: test_fail
        arguments:
          label: second
          message: backend unavailable
      - name: third
        runner: test_continue
        arguments:
          label: third
`}

	// --- Act ---
	result := testutil.RunApp(t, files, app.Config{}, script)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "chain execution failed")
	require.Contains(t, result.Err.Error(), "backend unavailable")
	var stepErr *chain.StepError
	require.True(t, errors.As(result.Err, &stepErr))
	require.Equal(t, "second", stepErr.Step)
	require.Equal(t, 1, stepErr.Index)

	require.Equal(t, []string{"first", "second"}, script.Calls())
	require.Contains(t, result.Output, "Result: unchanged")
}

func TestApp_JSONReport(t *testing.T) {
	t.Parallel()
	files := map[string]string{"free_gift.hcl": freeGiftChain}

	result := testutil.RunApp(t, files, app.Config{
		InitialTotal: 12000,
		LogLevel:     "error",
		OutputFormat: app.OutputJSON,
	})
	require.NoError(t, result.Err)

	var rep struct {
		Chain     string     `json:"chain"`
		Committed bool       `json:"committed"`
		Cart      *cart.Cart `json:"cart"`
		Events    []struct {
			Kind string `json:"kind"`
		} `json:"events"`
	}
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(result.Output), &rep))
	require.Equal(t, "free_gift", rep.Chain)
	require.True(t, rep.Committed)
	require.NotNil(t, rep.Cart)
	require.True(t, rep.Cart.HasVariant(cart.GiftVariantID))
	require.Equal(t, "committed", rep.Events[len(rep.Events)-1].Kind)
}

func TestApp_SelectsChainByName(t *testing.T) {
	t.Parallel()
	script := &testutil.ScriptModule{}
	files := map[string]string{"chains.hcl": `
chain "a" {
  step "a" {
    runner = "test_continue"
    arguments { label = "a" }
  }
}
chain "b" {
  step "b" {
    runner = "test_stop"
    arguments { label = "b" }
  }
}
`}

	result := testutil.RunApp(t, files, app.Config{ChainName: "b"}, script)
	require.NoError(t, result.Err)
	require.Equal(t, []string{"b"}, script.Calls())

	ambiguous := testutil.RunApp(t, files, app.Config{}, &testutil.ScriptModule{})
	require.Error(t, ambiguous.Err)
	require.Contains(t, ambiguous.Err.Error(), "a chain name is required")
}

func TestApp_StartupPanics(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown runner",
			content: `chain "x" {
  step "s" { runner = "nope" }
}`,
			wantErr: "uses unknown runner 'nope'",
		},
		{
			name:    "syntax error",
			content: `chain "x" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "no chains",
			content: `locals { a = 1 }`,
			wantErr: "no chains",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunApp(t, map[string]string{"main.hcl": tc.content}, app.Config{})

			require.Error(t, result.Err)
			require.Nil(t, result.App)
			require.True(t, strings.HasPrefix(result.Err.Error(), "application startup panicked"))
			require.Contains(t, result.Err.Error(), tc.wantErr)
		})
	}
}

func TestApp_ShippedChains(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, nil, app.Config{
		ChainPaths:   []string{"../../chains"},
		ChainName:    "free_gift",
		InitialTotal: 15000,
	})

	require.NoError(t, result.Err)
	require.ElementsMatch(t, []string{"free_gift", "env_tagging"}, result.App.Model().Names())
	require.Contains(t, result.Output, "show: continued")
	require.Contains(t, result.Output, "Chain execution completed!")
}

func TestApp_SQLiteStoreKeepsSideEffectsAcrossRuns(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{"free_gift.hcl": freeGiftChain}
	cfg := app.Config{
		InitialTotal: 12000,
		StorePath:    filepath.Join(t.TempDir(), "carts.db"),
	}

	// --- Act ---
	first := testutil.RunApp(t, files, cfg)
	require.NoError(t, first.Err)
	require.NoError(t, first.App.Close())
	second := testutil.RunApp(t, files, cfg)

	// --- Assert ---
	require.NoError(t, second.Err)
	stored, err := second.App.Store().Fetch(t.Context())
	require.NoError(t, err)
	require.Len(t, stored.Items, 2, "the gift is added only once")
	require.Equal(t, float64(42), stored.Attributes["giftId"])
}

func TestApp_FailedChainKeepsStoreSideEffects(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{"chain.hcl": `
chain "gift_then_fail" {
  step "check_and_add_gift" {
    runner = "min_total_gift"
    arguments {
      min_total = 100
    }
  }
  step "fail" {
    runner = "test_fail"
  }
}
`}

	// --- Act ---
	result := testutil.RunApp(t, files, app.Config{InitialTotal: 12000},
		&testutil.ScriptModule{}, &gift.Module{})

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "scripted failure")
	require.Contains(t, result.Output, "Result: unchanged")

	stored, err := result.App.Store().Fetch(t.Context())
	require.NoError(t, err)
	require.True(t, stored.HasVariant(cart.GiftVariantID), "store writes are not rolled back")
}
