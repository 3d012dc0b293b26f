package why

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	repoDir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(repoDir, name), []byte(content), 0o644))
	}
	return repoDir
}

func runWhyCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	cmd := NewCommand()
	cmd.SetArgs(args)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return stdout.String(), err
}

func chainRepo(t *testing.T) string {
	return writeRepo(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import c\n",
		"c.py": "x = 1\n",
	})
}

func cycleRepo(t *testing.T) string {
	return writeRepo(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import a\n",
	})
}

func TestWhyCommand_TextDirectDependency(t *testing.T) {
	repoDir := chainRepo(t)

	output, err := runWhyCommand(t, "-r", repoDir, "b.py", "a.py")
	require.NoError(t, err)

	assert.Equal(t, "Direct connection(s) between b.py and a.py:\n- a.py depends on b.py (1 import)\n", output)
}

func TestWhyCommand_TextNoDirectDependency(t *testing.T) {
	repoDir := chainRepo(t)

	output, err := runWhyCommand(t, "-r", repoDir, "a.py", "c.py")
	require.NoError(t, err)

	assert.Equal(t, "No immediate dependency between a.py and c.py.\n", output)
}

func TestWhyCommand_TextMarksCircularDependency(t *testing.T) {
	repoDir := cycleRepo(t)

	output, err := runWhyCommand(t, "-r", repoDir, "a.py", "b.py")
	require.NoError(t, err)

	assert.Contains(t, output, "- a.py depends on b.py (1 import) [circular]")
	assert.Contains(t, output, "- b.py depends on a.py (1 import) [circular]")
}

func TestWhyCommand_AbsolutePaths(t *testing.T) {
	repoDir := chainRepo(t)

	output, err := runWhyCommand(t, "-r", repoDir, filepath.Join(repoDir, "a.py"), filepath.Join(repoDir, "b.py"))
	require.NoError(t, err)

	assert.Contains(t, output, "a.py depends on b.py")
}

func TestWhyCommand_Errors(t *testing.T) {
	repoDir := chainRepo(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown format", args: []string{"-r", repoDir, "-f", "json", "a.py", "b.py"}, wantErr: "unknown format: json"},
		{name: "missing from", args: []string{"-r", repoDir, "nope.py", "b.py"}, wantErr: "from file not found in dependency graph: nope.py"},
		{name: "missing to", args: []string{"-r", repoDir, "a.py", "nope.py"}, wantErr: "to file not found in dependency graph: nope.py"},
		{name: "outside repository", args: []string{"-r", repoDir, "../a.py", "b.py"}, wantErr: "path must be within repository"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runWhyCommand(t, tt.args...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestWhyCommand_DOTFormat_Golden(t *testing.T) {
	repoDir := cycleRepo(t)

	output, err := runWhyCommand(t, "-r", repoDir, "-f", "dot", "a.py", "b.py")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithNameSuffix(".gold.dot"))
	g.Assert(t, t.Name(), []byte(output))
}

func TestWhyCommand_MermaidFormat_Golden(t *testing.T) {
	repoDir := chainRepo(t)

	output, err := runWhyCommand(t, "-r", repoDir, "-f", "mermaid", "b.py", "a.py")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithNameSuffix(".gold.mmd"))
	g.Assert(t, t.Name(), []byte(output))
}
