package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/config"
)

func passThrough(context.Context, Deps, any) (chain.Action[cart.Cart], error) {
	return func(_ context.Context, c cart.Cart) (chain.Outcome[cart.Cart], error) {
		return chain.Continue(c), nil
	}, nil
}

type testModule struct{ name string }

func (m testModule) Register(r *Registry) {
	r.RegisterRunner(m.name, &RegisteredRunner{Build: passThrough})
}

func TestRegisterRunner(t *testing.T) {
	t.Parallel()
	r := New()

	r.RegisterAll(testModule{"b"}, testModule{"a"})

	_, ok := r.Runner("a")
	require.True(t, ok)
	_, ok = r.Runner("c")
	require.False(t, ok)
	require.Equal(t, []string{"a", "b"}, r.Names())
}

func TestRegisterRunner_PanicsOnDuplicate(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterAll(testModule{"a"})

	require.PanicsWithValue(t, "runner with name 'a' already registered", func() {
		r.RegisterAll(testModule{"a"})
	})
}

func TestRegisterRunner_PanicsWithoutBuild(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { New().RegisterRunner("x", &RegisteredRunner{}) })
}

func TestValidate(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterAll(testModule{"print"})
	model := &config.Model{Chains: []*config.Chain{
		{Name: "ok", Steps: []*config.Step{{Name: "p", Runner: "print"}}},
		{Name: "bad", Steps: []*config.Step{{Name: "g", Runner: "gift"}}},
	}}

	err := r.Validate(context.Background(), model)

	require.ErrorContains(t, err, "chain 'bad': step 'g' (#0) uses unknown runner 'gift'")
	require.ErrorContains(t, err, "known runners: print")

	model.Chains = model.Chains[:1]
	require.NoError(t, r.Validate(context.Background(), model))
}

func TestDeps_WithDefaults(t *testing.T) {
	t.Parallel()

	d := Deps{}.WithDefaults()

	require.NotNil(t, d.Output)
	require.NotNil(t, d.Environ)
}
