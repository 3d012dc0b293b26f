package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LegacyCodeHQ/codegraph/depgraph"
	"github.com/LegacyCodeHQ/codegraph/formatters"
	"github.com/LegacyCodeHQ/codegraph/internal/cache"
	"github.com/LegacyCodeHQ/codegraph/internal/logging"
	"github.com/LegacyCodeHQ/codegraph/vcs/git"
)

// DefaultMaxFiles caps a request that does not name a limit.
const DefaultMaxFiles = 100

// ClientInputError is a request the caller must fix; nothing was acquired.
type ClientInputError struct {
	Message string
}

func (e *ClientInputError) Error() string { return e.Message }

// Request is one analysis request.
type Request struct {
	RepoURL      string
	MaxFiles     int
	IncludeTests bool
}

// Result is an analyzed repository.
type Result struct {
	Graph    *depgraph.Graph
	RepoName string
	RepoURL  string
}

// Service acquires a repository and runs the dependency analysis over it.
type Service struct {
	Acquirer git.Acquirer
	// Policy, when set, validates RepoURL before acquisition and normalizes cache keys.
	Policy        *git.URLPolicy
	Cache         *cache.AnalysisCache
	Workers       int
	SourceRoots   []string
	MostConnected int
	Logger        *slog.Logger
}

// Validate checks req without doing any work and returns the cache key.
func (s *Service) Validate(req Request) (cache.Key, error) {
	repoURL := strings.TrimSpace(req.RepoURL)
	if repoURL == "" {
		return cache.Key{}, &ClientInputError{Message: "repo_url is required"}
	}
	if req.MaxFiles < 0 {
		return cache.Key{}, &ClientInputError{Message: "max_files must be >= 0"}
	}

	key := cache.Key{RepoURL: repoURL, MaxFiles: req.MaxFiles, IncludeTests: req.IncludeTests}
	if s.Policy != nil {
		ref, err := git.NormalizeRepoURL(repoURL, *s.Policy)
		if err != nil {
			return cache.Key{}, &ClientInputError{Message: err.Error()}
		}
		key.RepoURL = ref.CloneURL
	}
	return key, nil
}

// Run acquires and analyzes the repository. The working copy is released
// before Run returns.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if _, err := s.Validate(req); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx, s.Logger)
	repoURL := strings.TrimSpace(req.RepoURL)

	start := time.Now()
	checkout, err := s.Acquirer.Acquire(ctx, repoURL)
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", repoURL, err)
	}
	defer func() {
		if err := checkout.Close(); err != nil {
			logger.Warn("Failed to remove working copy", "path", checkout.Path, "error", err)
		}
	}()
	logger.Debug("Repository acquired", "repo", checkout.Name, "path", checkout.Path, "durationMs", time.Since(start).Milliseconds())

	graph, err := depgraph.AnalyzeDirectory(ctx, checkout.Path, depgraph.Options{
		MaxFiles:      req.MaxFiles,
		IncludeTests:  req.IncludeTests,
		Workers:       s.Workers,
		SourceRoots:   s.SourceRoots,
		MostConnected: s.MostConnected,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Analysis complete",
		"repo", checkout.Name,
		"files", graph.Metrics.TotalFiles,
		"edges", len(graph.Edges),
		"cycles", len(graph.Cycles),
		"durationMs", time.Since(start).Milliseconds(),
	)
	return &Result{Graph: graph, RepoName: checkout.Name, RepoURL: repoURL}, nil
}

// Analyze returns the wire response for req, served from the cache when possible.
func (s *Service) Analyze(ctx context.Context, req Request) (formatters.AnalyzeResponse, error) {
	key, err := s.Validate(req)
	if err != nil {
		return formatters.AnalyzeResponse{}, err
	}

	run := func(ctx context.Context) (formatters.AnalyzeResponse, error) {
		result, err := s.Run(ctx, req)
		if err != nil {
			return formatters.AnalyzeResponse{}, err
		}
		return formatters.ToResponse(result.Graph, result.RepoName, result.RepoURL), nil
	}

	if s.Cache == nil {
		return run(ctx)
	}
	resp, cached, err := s.Cache.Do(ctx, key, run)
	if cached {
		logging.FromContext(ctx, s.Logger).Debug("Serving cached analysis", "repo", key.RepoURL)
	}
	return resp, err
}

// IsClientError reports whether err should be reported as the caller's fault:
// bad input, an invalid URL, or a repository without analyzable files.
func IsClientError(err error) bool {
	var inputErr *ClientInputError
	return errors.As(err, &inputErr) || git.IsInvalidURL(err) || errors.Is(err, depgraph.ErrNoSourceFiles)
}
