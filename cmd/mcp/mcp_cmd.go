package mcp

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/codegraph/internal/bootstrap"
	"github.com/LegacyCodeHQ/codegraph/internal/mcplogdlog"
)

// NewCommand returns a new mcp command instance.
func NewCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve dependency analysis as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing:

  analyze_repository        dependency graph of a repository or directory
  dependency_paths          files on import paths between the given files
  list_supported_languages  languages the analyzer understands

Logs are written to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap.FromCommand(cmd, mcplogdlog.NewHandler)
			if err != nil {
				return err
			}

			tools := &GraphTools{
				RunnerFor:       func(target string) Runner { return rt.ServiceFor(target) },
				DefaultMaxFiles: rt.Config.Analysis.MaxFiles,
			}
			rt.Logger.Info("MCP server starting", "transport", "stdio", "version", version)
			if err := NewServer(tools, version).Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("allowed-host", nil, "Hosts repositories may be cloned from (default: github.com)")
	cmd.Flags().Int("workers", 0, "Files parsed in parallel (default: number of CPUs)")

	return cmd
}

// NewServer creates an MCP server with every tool registered.
func NewServer(tools *GraphTools, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "codegraph",
		Version: version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_repository",
		Description: "Build the file-level import graph of a Python repository with per-file complexity and repository metrics",
	}, tools.AnalyzeRepository)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "dependency_paths",
		Description: "Return the part of a repository's import graph lying on dependency paths between the given files",
	}, tools.DependencyPaths)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_supported_languages",
		Description: "List the languages and file extensions the analyzer supports",
	}, tools.ListLanguages)

	return srv
}
