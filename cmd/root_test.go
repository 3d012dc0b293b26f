package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	t.Parallel()

	root := newRootCommand()

	for _, name := range []string{"analyze", "serve", "watch", "why", "mcp", "languages"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			found, _, err := root.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, found.Name())
		})
	}
}

func TestRootCommand_VersionTemplateIncludesBuildInfo(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())

	assert.Equal(t, "codegraph version dev\nBuild date: unknown\nCommit: unknown\n", out.String())
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	t.Parallel()

	root := newRootCommand()
	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}
