package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const hclChain = `
chain "from_hcl" {
  step "print" {
    runner = "print"
  }
}
`

const yamlChain = `
chains:
  - name: from_yaml
    steps:
      - name: print
        runner: print
`

func TestForPaths_MergesFormats(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(hclChain), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(yamlChain), 0o644))

	// --- Act ---
	l, err := ForPaths([]string{dir})
	require.NoError(t, err)
	model, err := l.Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, l.loaders, 2)
	require.ElementsMatch(t, []string{"from_hcl", "from_yaml"}, model.Names())
}

func TestForPaths_OnlyPresentFormats(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(yamlChain), 0o644))

	l, err := ForPaths([]string{dir})

	require.NoError(t, err)
	require.Len(t, l.loaders, 1)
}

func TestLoad_NoChains(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	l, err := ForPaths([]string{dir})
	require.NoError(t, err)
	_, err = l.Load(context.Background(), dir)

	require.ErrorIs(t, err, ErrNoChains)
}

func TestLoad_ValidatesMergedModel(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dup := "chains:\n  - name: from_hcl\n    steps:\n      - name: p\n        runner: print\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(hclChain), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(dup), 0o644))

	_, err := New().Load(context.Background(), dir)

	require.ErrorContains(t, err, "chain 'from_hcl' is defined twice")
}
