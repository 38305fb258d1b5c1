package config

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func validModel() *Model {
	return &Model{Chains: []*Chain{
		{Name: "free_gift", Source: "a.hcl", Steps: []*Step{{Name: "gift", Runner: "min_total_gift"}}},
		{Name: "notify", Source: "b.hcl", Steps: []*Step{{Name: "print", Runner: "print", Arguments: cty.EmptyObjectVal}}},
	}}
}

func TestModel_Chain(t *testing.T) {
	t.Parallel()
	m := validModel()

	c, err := m.Chain("notify")
	require.NoError(t, err)
	require.Equal(t, "notify", c.Name)

	_, err = m.Chain("absent")
	require.ErrorIs(t, err, ErrChainNotFound)

	_, err = m.Chain("")
	require.ErrorIs(t, err, ErrChainNotFound)
	require.Contains(t, err.Error(), "free_gift, notify")
}

func TestModel_Chain_SingleChainNeedsNoName(t *testing.T) {
	t.Parallel()
	m := &Model{Chains: []*Chain{{Name: "only"}}}

	c, err := m.Chain("")

	require.NoError(t, err)
	require.Equal(t, "only", c.Name)
}

func TestModel_Merge(t *testing.T) {
	t.Parallel()
	m := &Model{}

	m.Merge(validModel())
	m.Merge(nil)

	require.Equal(t, []string{"free_gift", "notify"}, m.Names())
}

func TestModel_Validate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(m *Model)
		wantErr string
	}{
		{name: "valid", mutate: func(*Model) {}},
		{
			name:    "duplicate chain",
			mutate:  func(m *Model) { m.Chains[1].Name = "free_gift" },
			wantErr: "chain 'free_gift' is defined twice (a.hcl and b.hcl)",
		},
		{
			name:    "empty chain",
			mutate:  func(m *Model) { m.Chains[0].Steps = nil },
			wantErr: "chain 'free_gift' has no steps",
		},
		{
			name:    "missing runner",
			mutate:  func(m *Model) { m.Chains[0].Steps[0].Runner = "" },
			wantErr: "step 'gift' (#0) has no runner",
		},
		{
			name:    "non-object arguments",
			mutate:  func(m *Model) { m.Chains[1].Steps[0].Arguments = cty.StringVal("x") },
			wantErr: "arguments must be an object, got string",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := validModel()
			tc.mutate(m)

			err := m.Validate()

			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
