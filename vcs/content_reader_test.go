package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemContentReader(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "mod.py"), []byte("x = 'é'\n"), 0o644))

	read := FilesystemContentReader(root)

	content, err := read("pkg/mod.py")
	require.NoError(t, err)
	assert.Equal(t, "x = 'é'\n", string(content))

	content, err = read(filepath.Join(root, "pkg", "mod.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 'é'\n", string(content))

	_, err = read("missing.py")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilesystemContentReader_DecodesLatin1(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "legacy.py"), []byte{'#', ' ', 0xe9, '\n'}, 0o644))

	content, err := FilesystemContentReader(root)("legacy.py")
	require.NoError(t, err)
	assert.Equal(t, "# é\n", string(content))
}

func TestMapContentReader(t *testing.T) {
	read := MapContentReader(map[string]string{"pkg/a.py": "import b\n"})

	content, err := read("pkg/a.py")
	require.NoError(t, err)
	assert.Equal(t, "import b\n", string(content))

	_, err = read("pkg/b.py")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
