package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LegacyCodeHQ/codegraph/depgraph/langsupport"
	"github.com/LegacyCodeHQ/codegraph/depgraph/registry"
	"github.com/LegacyCodeHQ/codegraph/formatters"
	"github.com/LegacyCodeHQ/codegraph/internal/analysis"
)

// Runner analyzes one repository.
type Runner interface {
	Run(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

// GraphTools holds what the tool handlers need.
type GraphTools struct {
	// RunnerFor picks how a target (directory or URL) is acquired.
	RunnerFor       func(target string) Runner
	DefaultMaxFiles int
}

// --- Input types ---

type AnalyzeRepositoryInput struct {
	RepoURL      string `json:"repo_url" jsonschema:"Repository URL or local directory to analyze"`
	MaxFiles     int    `json:"max_files,omitempty" jsonschema:"Maximum number of files to analyze (default 100)"`
	IncludeTests bool   `json:"include_tests,omitempty" jsonschema:"Include test files"`
	Format       string `json:"format,omitempty" jsonschema:"Output format: json, text, dot or mermaid (default json)"`
}

type DependencyPathsInput struct {
	RepoURL      string   `json:"repo_url" jsonschema:"Repository URL or local directory to analyze"`
	Files        []string `json:"files" jsonschema:"Two or more repository-relative file paths"`
	MaxFiles     int      `json:"max_files,omitempty" jsonschema:"Maximum number of files to analyze (default 100)"`
	IncludeTests bool     `json:"include_tests,omitempty" jsonschema:"Include test files"`
}

type ListLanguagesInput struct{}

// --- Handlers ---

func (t *GraphTools) AnalyzeRepository(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeRepositoryInput) (*mcp.CallToolResult, any, error) {
	format := input.Format
	if format == "" {
		format = formatters.OutputFormatJSON.String()
	}
	formatter, err := formatters.NewFormatter(format)
	if err != nil {
		return toolError("%v", err), nil, nil
	}

	result, errResult := t.run(ctx, input.RepoURL, input.MaxFiles, input.IncludeTests)
	if errResult != nil {
		return errResult, nil, nil
	}

	output, err := formatter.Format(result.Graph, formatters.FormatOptions{RepoName: result.RepoName, RepoURL: result.RepoURL})
	if err != nil {
		return toolError("Failed to format graph: %v", err), nil, nil
	}
	return toolText(output), nil, nil
}

func (t *GraphTools) DependencyPaths(ctx context.Context, _ *mcp.CallToolRequest, input DependencyPathsInput) (*mcp.CallToolResult, any, error) {
	if len(input.Files) < 2 {
		return toolError("At least 2 files are required"), nil, nil
	}

	result, errResult := t.run(ctx, input.RepoURL, input.MaxFiles, input.IncludeTests)
	if errResult != nil {
		return errResult, nil, nil
	}

	var missing []string
	for _, file := range input.Files {
		if _, ok := result.Graph.Node(file); !ok {
			missing = append(missing, file)
		}
	}
	if len(missing) > 0 {
		return toolError("Files not found in graph: %s", strings.Join(missing, ", ")), nil, nil
	}

	sub := result.Graph.PathSubgraph(input.Files)
	return toolJSON(formatters.ToResponse(sub, result.RepoName, result.RepoURL))
}

func (t *GraphTools) ListLanguages(_ context.Context, _ *mcp.CallToolRequest, _ ListLanguagesInput) (*mcp.CallToolResult, any, error) {
	type language struct {
		Name       string                    `json:"name"`
		Extensions []string                  `json:"extensions"`
		Maturity   langsupport.MaturityLevel `json:"maturity"`
	}
	var languages []language
	for _, l := range registry.SupportedLanguages() {
		languages = append(languages, language{Name: l.Name, Extensions: l.Extensions, Maturity: l.Maturity})
	}
	return toolJSON(languages)
}

func (t *GraphTools) run(ctx context.Context, target string, maxFiles int, includeTests bool) (*analysis.Result, *mcp.CallToolResult) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, toolError("repo_url is required")
	}
	if maxFiles == 0 {
		maxFiles = t.DefaultMaxFiles
	}

	result, err := t.RunnerFor(target).Run(ctx, analysis.Request{RepoURL: target, MaxFiles: maxFiles, IncludeTests: includeTests})
	if err != nil {
		if analysis.IsClientError(err) {
			return nil, toolError("%v", err)
		}
		return nil, toolError("Analysis failed: %v", err)
	}
	return result, nil
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return toolText(string(data)), nil, nil
}
