package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/cartstore"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/config"
	"github.com/vk/cartchain/internal/hcl"
	"github.com/vk/cartchain/internal/registry"
	"github.com/vk/cartchain/modules/attributes"
	"github.com/vk/cartchain/modules/gift"
	"github.com/zclconf/go-cty/cty"
)

const freeGiftChain = `
locals {
  gift_variant_id = 123456789
}

chain "free_gift" {
  step "CHECK_AND_ADD_GIFT" {
    runner = "min_total_gift"
    arguments {
      min_total  = 10000
      variant_id = local.gift_variant_id
    }
  }

  step "UPDATE_CART_ATTRIBUTE" {
    runner = "merge_attributes"
    arguments {
      attributes = { giftId = 42 }
    }
  }
}
`

func newRegistry() *registry.Registry {
	r := registry.New()
	r.RegisterAll(&gift.Module{}, &attributes.Module{})
	return r
}

func loadModel(t *testing.T, content string) *config.Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	model, err := hcl.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	return model
}

func TestBuild_FreeGiftScenario(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		total      int64
		wantResult bool
	}{
		{name: "qualifying cart gets gift and attribute", total: 12000, wantResult: true},
		{name: "small cart leaves result untouched", total: 5000, wantResult: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			store := cartstore.NewInMemory(cart.NewMockCart(tc.total))
			model := loadModel(t, freeGiftChain)
			executors, err := BuildAll(context.Background(), model, newRegistry(), registry.Deps{Store: store})
			require.NoError(t, err)
			e := executors["free_gift"]
			require.NotNil(t, e)
			require.Equal(t, 2, e.Len())
			initial, err := store.Fetch(context.Background())
			require.NoError(t, err)

			// --- Act ---
			err = e.Run(context.Background(), initial)

			// --- Assert ---
			require.NoError(t, err)
			result, ok := e.Result()
			require.Equal(t, tc.wantResult, ok)
			if !tc.wantResult {
				return
			}
			require.True(t, result.HasVariant(cart.GiftVariantID))
			require.Equal(t, int64(42), result.Attributes["giftId"])
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()
	deps := registry.Deps{Store: cartstore.NewInMemory(cart.NewMockCart(1))}

	testCases := []struct {
		name    string
		step    *config.Step
		wantErr string
	}{
		{
			name:    "unknown runner",
			step:    &config.Step{Name: "s", Runner: "nope", Arguments: cty.EmptyObjectVal},
			wantErr: "chain 'c': step 's' (#0): unknown runner 'nope'",
		},
		{
			name:    "missing argument",
			step:    &config.Step{Name: "s", Runner: gift.RunnerType, Arguments: cty.EmptyObjectVal},
			wantErr: `invalid arguments for runner 'min_total_gift': missing required argument "min_total"`,
		},
		{
			name: "runner rejects input",
			step: &config.Step{Name: "s", Runner: gift.RunnerType, Arguments: cty.ObjectVal(map[string]cty.Value{
				"min_total": cty.NumberIntVal(-5),
			})},
			wantErr: "runner 'min_total_gift': min_total must not be negative",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			def := &config.Chain{Name: "c", Steps: []*config.Step{tc.step}}

			e, err := Build(context.Background(), def, newRegistry(), deps)

			require.Nil(t, e)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestBuild_RunnerWithoutInputRejectsArguments(t *testing.T) {
	t.Parallel()
	r := newRegistry()
	r.RegisterRunner("noop", &registry.RegisteredRunner{
		Build: func(context.Context, registry.Deps, any) (chain.Action[cart.Cart], error) {
			return func(_ context.Context, c cart.Cart) (chain.Outcome[cart.Cart], error) {
				return chain.Continue(c), nil
			}, nil
		},
	})
	def := &config.Chain{Name: "c", Steps: []*config.Step{{
		Name: "s", Runner: "noop",
		Arguments: cty.ObjectVal(map[string]cty.Value{"x": cty.True}),
	}}}

	_, err := Build(context.Background(), def, r, registry.Deps{})
	require.ErrorContains(t, err, "runner 'noop' takes no arguments")

	def.Steps[0].Arguments = cty.EmptyObjectVal
	e, err := Build(context.Background(), def, r, registry.Deps{})
	require.NoError(t, err)
	require.Equal(t, 1, e.Len())
}

func TestBuildAll_ValidatesRunners(t *testing.T) {
	t.Parallel()
	model := &config.Model{Chains: []*config.Chain{{Name: "c", Steps: []*config.Step{{Name: "s", Runner: "nope"}}}}}

	_, err := BuildAll(context.Background(), model, newRegistry(), registry.Deps{})

	require.ErrorContains(t, err, "uses unknown runner 'nope'")
}
