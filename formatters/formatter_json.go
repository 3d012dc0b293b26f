package formatters

import (
	"encoding/json"

	"github.com/LegacyCodeHQ/codegraph/depgraph"
)

func init() {
	Register(OutputFormatJSON, func() Formatter { return &JSONFormatter{} })
}

// JSONFormatter writes the same document the HTTP API returns.
type JSONFormatter struct{}

// Format converts the dependency graph to an indented AnalyzeResponse.
func (f *JSONFormatter) Format(g *depgraph.Graph, opts FormatOptions) (string, error) {
	data, err := json.MarshalIndent(ToResponse(g, opts.RepoName, opts.RepoURL), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GenerateURL returns false as JSON format does not support URL generation.
func (f *JSONFormatter) GenerateURL(output string) (string, bool) {
	return "", false
}
