package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/codegraph/internal/analysis"
	"github.com/LegacyCodeHQ/codegraph/internal/bootstrap"
)

type watchOptions struct {
	port int
}

// Cmd represents the watch command.
var Cmd = NewCommand()

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{
		port: 4900,
	}

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and serve a live dependency graph",
		Long: `Watch a Python project for file changes, rebuild the dependency graph, and
stream each new graph to a live page at localhost.

Examples:
  codegraph watch
  codegraph watch ./service --listen-port 5000 --include-tests`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, dir, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "listen-port", "P", opts.port, "HTTP server port")
	cmd.Flags().Int("max-files", analysis.DefaultMaxFiles, "Maximum number of files to analyze (0 for no limit)")
	cmd.Flags().Bool("include-tests", false, "Include test files")
	cmd.Flags().StringSlice("source-root", nil, "Directories absolute imports are resolved against (default: .,src)")

	return cmd
}

func runWatch(cmd *cobra.Command, dir string, opts *watchOptions) error {
	repoPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve repo path: %w", err)
	}
	if !bootstrap.IsLocalDir(repoPath) {
		return fmt.Errorf("%s is not a directory", dir)
	}

	rt, err := bootstrap.FromCommand(cmd)
	if err != nil {
		return err
	}
	logger := rt.Logger.With("component", "watch")

	ctx := cmd.Context()
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", opts.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", opts.port, err)
	}

	b := newBroker()
	builder := newSnapshotBuilder(rt.LocalService(), rt.Request(repoPath))
	publish := func(ctx context.Context) { publishCurrentGraph(ctx, builder, b, logger) }

	srv := &http.Server{Handler: newRouter(b), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Watch server stopped", "error", err)
		}
	}()
	defer srv.Close()

	publish(ctx)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s\n", repoPath)
	fmt.Fprintf(out, "Serving at http://localhost:%d\n", opts.port)
	fmt.Fprintf(out, "Press Ctrl+C to stop\n")

	return watchAndRebuild(ctx, repoPath, publish, logger)
}

// publishCurrentGraph rebuilds the graph and broadcasts it. Failures keep the
// previous snapshot on screen.
func publishCurrentGraph(ctx context.Context, builder *snapshotBuilder, b *broker, logger *slog.Logger) {
	snapshot, err := builder.build(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("Graph rebuild failed", "error", err)
		}
		return
	}
	b.publish(snapshot)
}
