package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/LegacyCodeHQ/codegraph/formatters"
	"github.com/LegacyCodeHQ/codegraph/internal/analysis"
	"github.com/LegacyCodeHQ/codegraph/internal/logging"
	"github.com/LegacyCodeHQ/codegraph/viz"
)

const (
	routeIndex    = "/"
	routeHealth   = "/health"
	routeStatus   = "/api/status"
	routeAnalyze  = "/api/analyze"
	routeLayoutWS = "/api/layout/ws"
	routeViewer   = "/viewer"
)

const shutdownTimeout = 10 * time.Second

// Analyzer produces the wire response for an analysis request.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (formatters.AnalyzeResponse, error)
}

// Options configures a Server.
type Options struct {
	Analyzer        Analyzer
	AllowedOrigins  []string
	Version         string
	DefaultMaxFiles int
	// Layout configures engines created for layout websocket sessions.
	Layout viz.EngineOptions
	Logger *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	router          *mux.Router
	handler         http.Handler
	analyzer        Analyzer
	version         string
	defaultMaxFiles int
	layout          viz.EngineOptions
	logger          *slog.Logger
}

// New creates a server with all routes registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxFiles := opts.DefaultMaxFiles
	if maxFiles <= 0 {
		maxFiles = analysis.DefaultMaxFiles
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		router:          mux.NewRouter(),
		analyzer:        opts.Analyzer,
		version:         version,
		defaultMaxFiles: maxFiles,
		layout:          opts.Layout,
		logger:          logger,
	}
	s.setupRoutes()

	// CORS sits outside the router so preflight requests never hit method matching.
	s.handler = corsMiddleware(opts.AllowedOrigins)(logging.RequestIDMiddleware(recoverMiddleware(logger)(s.router)))
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc(routeIndex, s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc(routeHealth, s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc(routeStatus, s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc(routeAnalyze, s.handleAnalyze).Methods(http.MethodPost)
	s.router.HandleFunc(routeLayoutWS, s.handleLayoutWS).Methods(http.MethodGet)
	s.router.HandleFunc(routeViewer, s.handleViewer).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("Server listening", "addr", ln.Addr().String(), "viewer", "http://"+ln.Addr().String()+routeViewer)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
