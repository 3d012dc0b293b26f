package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/codegraph/cmd/analyze"
	"github.com/LegacyCodeHQ/codegraph/cmd/languages"
	"github.com/LegacyCodeHQ/codegraph/cmd/mcp"
	"github.com/LegacyCodeHQ/codegraph/cmd/serve"
	"github.com/LegacyCodeHQ/codegraph/cmd/watch"
	"github.com/LegacyCodeHQ/codegraph/cmd/why"
	"github.com/LegacyCodeHQ/codegraph/internal/bootstrap"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "codegraph",
		Short: "Analyze and visualize Python dependency graphs",
		Long: `codegraph maps the file-level import graph of a Python repository,
scores each file's complexity, and serves the result to an interactive
force-directed visualization.

Use 'codegraph --help' to see all available commands, or 'codegraph <command> --help'
for detailed information about a specific command.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.AddCommand(analyze.NewCommand())
	root.AddCommand(serve.NewCommand(version))
	root.AddCommand(watch.NewCommand())
	root.AddCommand(why.NewCommand())
	root.AddCommand(mcp.NewCommand(version))
	root.AddCommand(languages.NewCommand())

	// Initialize annotations for version template
	root.Annotations = map[string]string{
		"buildDate": buildDate,
		"commit":    commit,
	}

	// Customize version template to show additional build info
	root.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	root.PersistentFlags().String(bootstrap.ConfigFlag, "", "Path to a TOML config file (default: ./codegraph.toml when present)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "compact", "Log format: compact or json")

	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
