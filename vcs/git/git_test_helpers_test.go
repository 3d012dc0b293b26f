package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupGitRepo initializes a git repository in dir
func setupGitRepo(t *testing.T, dir string) {
	cmd := exec.Command("git", "init", "--quiet")
	cmd.Dir = dir
	require.NoError(t, cmd.Run(), "failed to initialize git repository")

	gitConfig(t, dir, "user.name", "Test User")
	gitConfig(t, dir, "user.email", "test@example.com")
	gitConfig(t, dir, "commit.gpgsign", "false")
}

func gitConfig(t *testing.T, repoDir, key, value string) {
	cmd := exec.Command("git", "config", key, value)
	cmd.Dir = repoDir
	require.NoError(t, cmd.Run(), "failed to set git config %s", key)
}

// createFile writes content to dir/name, creating parent directories.
func createFile(t *testing.T, dir, name, content string) string {
	filePath := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644), "failed to create file %s", name)
	return filePath
}

func gitAdd(t *testing.T, repoDir, file string) {
	cmd := exec.Command("git", "add", file)
	cmd.Dir = repoDir
	require.NoError(t, cmd.Run(), "failed to git add %s", file)
}

func gitCommit(t *testing.T, repoDir, message string) {
	cmd := exec.Command("git", "commit", "--quiet", "-m", message)
	cmd.Dir = repoDir
	require.NoError(t, cmd.Run(), "failed to git commit")
}

// newCommittedRepo creates a repository with files committed in a single commit.
func newCommittedRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	setupGitRepo(t, dir)
	for name, content := range files {
		createFile(t, dir, name, content)
	}
	gitAdd(t, dir, ".")
	gitCommit(t, dir, "initial")
	return dir
}
