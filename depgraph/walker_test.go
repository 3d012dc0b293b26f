package depgraph

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestWalk_OrderAndFilters(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"b.py":                        "x = 1\n",
		"a.py":                        "x = 1\n",
		"pkg/__init__.py":             "x = 1\n",
		"pkg/z.py":                    "x = 1\n",
		"pkg/sub/m.py":                "x = 1\n",
		"README.md":                   "# readme\n",
		"empty.py":                    "",
		"venv/lib/site.py":            "x = 1\n",
		"node_modules/x/y.py":         "x = 1\n",
		".git/hooks/h.py":             "x = 1\n",
		"pkg/__pycache__/z.py":        "x = 1\n",
		"mylib.egg-info/setup.py":     "x = 1\n",
		"tests/test_app.py":           "x = 1\n",
		"pkg/test_z.py":               "x = 1\n",
		"conftest.py":                 "x = 1\n",
		"build/lib/generated.py":      "x = 1\n",
		"third_party/vendored/lib.py": "x = 1\n",
	})

	files, err := Walk(root, WalkOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.py", "pkg/__init__.py", "pkg/sub/m.py", "pkg/z.py"}, files)
}

func TestWalk_IncludeTests(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"app.py":            "x = 1\n",
		"conftest.py":       "x = 1\n",
		"tests/test_app.py": "x = 1\n",
	})

	files, err := Walk(root, WalkOptions{IncludeTests: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"app.py", "conftest.py", "tests/test_app.py"}, files)
}

func TestWalk_TruncationIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"d.py":     "x = 1\n",
		"a/b.py":   "x = 1\n",
		"a/a.py":   "x = 1\n",
		"c.py":     "x = 1\n",
		"b/z/y.py": "x = 1\n",
	})

	first, err := Walk(root, WalkOptions{MaxFiles: 3})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Walk(root, WalkOptions{MaxFiles: 3})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"a/a.py", "a/b.py", "b/z/y.py"}, first)
}

func TestWalk_SymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"pkg/mod.py": "x = 1\n"})
	require.NoError(t, os.Symlink(root, filepath.Join(root, "pkg", "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")))

	files, err := Walk(root, WalkOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/mod.py"}, files)
}

func TestWalk_MissingRoot(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "missing"), WalkOptions{})

	assert.Error(t, err)
}
