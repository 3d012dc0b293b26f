package analyze

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathResolver_Relative(t *testing.T) {
	resolver, err := NewPathResolver(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		in   string
		want NodeID
	}{
		{in: "pkg/mod.py", want: "pkg/mod.py"},
		{in: "./pkg/mod.py", want: "pkg/mod.py"},
		{in: "pkg/../mod.py", want: "mod.py"},
		{in: filepath.Join("pkg", "sub", "mod.py"), want: "pkg/sub/mod.py"},
	}
	for _, tt := range tests {
		got, err := resolver.Resolve(RawPath(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPathResolver_AbsoluteWithinBase(t *testing.T) {
	repoDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, "pkg"), 0o755))
	resolver, err := NewPathResolver(repoDir)
	require.NoError(t, err)

	got, err := resolver.Resolve(RawPath(filepath.Join(repoDir, "pkg", "mod.py")))
	require.NoError(t, err)
	assert.Equal(t, NodeID("pkg/mod.py"), got)

	_, err = resolver.Resolve(RawPath(filepath.Join(t.TempDir(), "other.py")))
	assert.ErrorContains(t, err, "path must be within repository")
}

func TestPathResolver_WithoutLocalCheckout(t *testing.T) {
	resolver, err := NewPathResolver("")
	require.NoError(t, err)

	got, err := resolver.Resolve("src/app.py")
	require.NoError(t, err)
	assert.Equal(t, NodeID("src/app.py"), got)

	_, err = resolver.Resolve(RawPath(filepath.Join(t.TempDir(), "app.py")))
	assert.ErrorContains(t, err, "needs a local repository")
}

func TestPathResolver_Rejects(t *testing.T) {
	resolver, err := NewPathResolver(t.TempDir())
	require.NoError(t, err)

	for _, in := range []string{"", "  ", ".", "..", "../x.py"} {
		_, err := resolver.Resolve(RawPath(in))
		assert.Error(t, err, in)
	}
}
