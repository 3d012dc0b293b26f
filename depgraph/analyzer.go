package depgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/LegacyCodeHQ/codegraph/depgraph/langsupport"
	"github.com/LegacyCodeHQ/codegraph/depgraph/registry"
	"github.com/LegacyCodeHQ/codegraph/vcs"
	"golang.org/x/sync/errgroup"
)

// ErrNoSourceFiles is returned when a repository has nothing to analyze.
var ErrNoSourceFiles = errors.New("no Python files found in repository")

// Options configures a full directory analysis.
type Options struct {
	MaxFiles      int
	IncludeTests  bool
	Workers       int
	SourceRoots   []string
	MostConnected int
	Logger        *slog.Logger
}

// AnalyzeDirectory walks root, parses and scores every file, and builds the graph.
func AnalyzeDirectory(ctx context.Context, root string, opts Options) (*Graph, error) {
	files, err := Walk(root, WalkOptions{MaxFiles: opts.MaxFiles, IncludeTests: opts.IncludeTests})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSourceFiles
	}

	analyzer := &Analyzer{Workers: opts.Workers, SourceRoots: opts.SourceRoots, Logger: opts.Logger}
	results, err := analyzer.AnalyzeFiles(ctx, files, vcs.FilesystemContentReader(root))
	if err != nil {
		return nil, err
	}

	return BuildGraph(results, BuildOptions{MostConnected: opts.MostConnected}), nil
}

// Analyzer parses and scores files concurrently.
type Analyzer struct {
	// Workers bounds concurrent files; zero uses runtime.NumCPU.
	Workers     int
	SourceRoots []string
	Logger      *slog.Logger
}

// AnalyzeFiles returns one result per file, in the order of files. Imports are
// resolved against files itself. Files that fail to read or parse become
// degraded results rather than errors; only cancellation aborts the batch.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, files []string, contentReader vcs.ContentReader) ([]FileResult, error) {
	workers := a.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	index := langsupport.NewFileSet(files)
	parsers := make(map[string]langsupport.SourceParser)
	for _, module := range registry.Modules() {
		parser := module.NewSourceParser(langsupport.ParserOptions{SourceRoots: a.SourceRoots})
		for _, ext := range module.Extensions() {
			parsers[ext] = parser
		}
	}

	results := make([]FileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = analyzeFile(ctx, logger, file, parsers[filepath.Ext(file)], contentReader, index)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	return results, nil
}

func analyzeFile(
	ctx context.Context,
	logger *slog.Logger,
	file string,
	parser langsupport.SourceParser,
	contentReader vcs.ContentReader,
	index langsupport.Index,
) FileResult {
	result := FileResult{Path: file, Language: LanguageForPath(file)}
	if parser == nil {
		return result
	}

	content, err := contentReader(file)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read file", "file", file, "error", err)
		result.ParseError = true
		return result
	}

	imports, err := parser.ParseImports(content)
	if err != nil {
		logger.WarnContext(ctx, "Failed to parse file", "file", file, "error", err)
		result.ParseError = true
		result.LinesOfCode = parser.Score(content).LinesOfCode
		return result
	}

	score := parser.Score(content)
	result.LinesOfCode = score.LinesOfCode
	result.Complexity = score.Complexity
	result.Imports = make([]string, 0, len(imports))
	for _, imp := range imports {
		result.Imports = append(result.Imports, imp.Token)
		result.Dependencies = append(result.Dependencies, parser.ResolveImport(file, imp, index)...)
	}
	return result
}
