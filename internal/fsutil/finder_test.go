package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(root, n)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, "a.hcl", "nested/b.hcl", "c.yaml", "d.txt")

	found, err := FindFilesByExtension(root, ".hcl", ".yaml")

	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "nested", "b.hcl"),
		filepath.Join(root, "c.yaml"),
	}, found)
}

func TestFindFilesByExtension_PanicsWithoutExtensions(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir()) })
}

func TestCollectFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	writeFiles(t, root, "dir/one.hcl", "dir/two.hcl", "single.hcl", "skip.yaml")
	single := filepath.Join(root, "single.hcl")

	// --- Act ---
	files, err := CollectFiles([]string{
		filepath.Join(root, "dir"),
		single,
		single,
		filepath.Join(root, "skip.yaml"),
		filepath.Join(root, "missing"),
	}, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "dir", "one.hcl"),
		filepath.Join(root, "dir", "two.hcl"),
		single,
	}, files)
}
