package serve

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/codegraph/internal/bootstrap"
	"github.com/LegacyCodeHQ/codegraph/internal/server"
)

// NewCommand returns a new serve command reporting version from /api/status.
func NewCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API and layout stream over HTTP",
		Long: `Serve the HTTP API used by the visualization frontend.

Endpoints:
  POST /api/analyze    analyze a repository URL
  GET  /api/layout/ws  interactive force layout over a websocket
  GET  /api/status     service status
  GET  /health         liveness

Examples:
  codegraph serve
  codegraph serve --port 9000 --allowed-host github.com,gitlab.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap.FromCommand(cmd)
			if err != nil {
				return err
			}
			srv := newServer(rt, version)
			addr := net.JoinHostPort(host(cmd), strconv.Itoa(rt.Config.Server.Port))
			if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("host", "", "Interface to listen on (default: all)")
	cmd.Flags().IntP("port", "p", 8000, "Port to listen on")
	cmd.Flags().Int("max-files", 100, "Default file limit when a request names none")
	cmd.Flags().Int("workers", 0, "Files parsed in parallel (default: number of CPUs)")
	cmd.Flags().StringSlice("allowed-host", nil, "Hosts repositories may be cloned from (default: github.com)")
	cmd.Flags().Duration("clone-timeout", 0, "Clone timeout (default: 2m)")

	return cmd
}

func newServer(rt *bootstrap.Runtime, version string) *server.Server {
	return server.New(server.Options{
		Analyzer:        rt.RemoteService(),
		AllowedOrigins:  rt.Config.Server.AllowedOrigins,
		Version:         version,
		DefaultMaxFiles: rt.Config.Analysis.MaxFiles,
		Logger:          rt.Logger,
	})
}

func host(cmd *cobra.Command) string {
	h, _ := cmd.Flags().GetString("host")
	return h
}
