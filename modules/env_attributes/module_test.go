package env_attributes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/registry"
)

func TestEnvAttributes(t *testing.T) {
	t.Parallel()

	environ := func() []string {
		return []string{"CART_ATTR_CHANNEL=web", "CART_ATTR_Campaign=spring", "CART_ATTR_=x", "HOME=/root", "BROKEN"}
	}

	testCases := []struct {
		name   string
		mutate func(*Input)
		want   map[string]any
	}{
		{
			name: "defaults strip and lowercase",
			want: map[string]any{"channel": "web", "campaign": "spring"},
		},
		{
			name:   "keep prefix and case",
			mutate: func(in *Input) { in.StripPrefix = false; in.Lowercase = false },
			want:   map[string]any{"CART_ATTR_CHANNEL": "web", "CART_ATTR_Campaign": "spring", "CART_ATTR_": "x"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			in := newInput().(*Input)
			in.Prefix = "CART_ATTR_"
			if tc.mutate != nil {
				tc.mutate(in)
			}
			action, err := build(context.Background(), registry.Deps{Environ: environ}, in)
			require.NoError(t, err)
			original := cart.NewMockCart(100)

			// --- Act ---
			out, err := action(context.Background(), original)

			// --- Assert ---
			require.NoError(t, err)
			updated, ok := out.State()
			require.True(t, ok)
			require.Equal(t, tc.want, updated.Attributes)
			require.Empty(t, original.Attributes, "the incoming state must not be modified")
		})
	}
}

func TestEnvAttributes_NoMatchesPassesThrough(t *testing.T) {
	t.Parallel()
	action, err := build(context.Background(), registry.Deps{Environ: func() []string { return nil }}, &Input{Prefix: "X_"})
	require.NoError(t, err)
	original := cart.NewMockCart(100)

	out, err := action(context.Background(), original)

	require.NoError(t, err)
	updated, _ := out.State()
	require.Equal(t, original, updated)
}

func TestEnvAttributes_RequiresPrefix(t *testing.T) {
	t.Parallel()
	_, err := build(context.Background(), registry.Deps{}, newInput())
	require.ErrorContains(t, err, "prefix must not be empty")
}
