package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/codegraph/vcs/git"
)

type recordingHandler struct {
	level    slog.Leveler
	messages *[]string
}

func (h recordingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level.Level() }
func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.messages = append(*h.messages, r.Message)
	return nil
}
func (h recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestLoad_InstallsLoggerWithExtraSinks(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "info", "")
	require.NoError(t, fs.Parse([]string{"--log-level", "warn"}))

	var out bytes.Buffer
	var messages []string
	rt, err := Load(fs, "", &out, func(level slog.Leveler) slog.Handler {
		return recordingHandler{level: level, messages: &messages}
	})
	require.NoError(t, err)

	rt.Logger.Info("quiet")
	rt.Logger.Warn("loud")

	assert.Equal(t, []string{"loud"}, messages)
	assert.Contains(t, out.String(), "[WARN]")
	assert.NotContains(t, out.String(), "quiet")
	assert.Same(t, rt.Logger, slog.Default())
}

func TestLoad_RejectsUnknownLogFormat(t *testing.T) {
	t.Setenv("CODEGRAPH_LOG_FORMAT", "xml")

	_, err := Load(nil, "", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown log format")
}

func TestFromCommand_UsesInheritedConfigFlag(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[analysis]\nmax_files = 7\n"), 0o644))

	var got *Runtime
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().String(ConfigFlag, "", "")
	child := &cobra.Command{
		Use: "child",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := FromCommand(cmd)
			got = rt
			return err
		},
	}
	root.AddCommand(child)
	root.SetArgs([]string{"child", "--config", path})
	root.SetErr(&bytes.Buffer{})

	require.NoError(t, root.Execute())
	require.NotNil(t, got)
	assert.Equal(t, 7, got.Config.Analysis.MaxFiles)
	assert.Equal(t, 7, got.Request("repo").MaxFiles)
}

func TestServiceFor(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	rt, err := Load(nil, "", &bytes.Buffer{})
	require.NoError(t, err)

	local := rt.ServiceFor(t.TempDir())
	assert.IsType(t, git.LocalAcquirer{}, local.Acquirer)
	assert.Nil(t, local.Cache)
	assert.Nil(t, local.Policy)

	remote := rt.ServiceFor("https://github.com/acme/widgets")
	clone, ok := remote.Acquirer.(*git.CloneAcquirer)
	require.True(t, ok)
	assert.Equal(t, []string{"github.com"}, clone.Policy.AllowedHosts)
	assert.Equal(t, int64(200)<<20, clone.Limits.MaxBytes)
	assert.Equal(t, 20000, clone.Limits.MaxFiles)
	require.NotNil(t, remote.Cache)
	assert.Equal(t, 2*time.Minute, remote.Cache.Timeout)
	require.NotNil(t, remote.Policy)
	assert.Equal(t, []string{"github.com"}, remote.Policy.AllowedHosts)
}
