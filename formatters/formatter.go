package formatters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/codegraph/depgraph"
)

// FormatOptions contains optional parameters for formatting dependency graphs.
type FormatOptions struct {
	// Label is an optional title for the graph
	Label    string
	RepoName string
	RepoURL  string
}

// Formatter is the interface that all graph formatters must implement.
type Formatter interface {
	// Format converts a dependency graph to a formatted string representation.
	Format(g *depgraph.Graph, opts FormatOptions) (string, error)
	// GenerateURL returns a link that renders output online, when the format has one.
	GenerateURL(output string) (string, bool)
}

var registry = map[OutputFormat]func() Formatter{}

// Register makes a formatter constructor available to NewFormatter.
func Register(format OutputFormat, constructor func() Formatter) {
	registry[format] = constructor
}

// NewFormatter creates a Formatter for the specified format type.
func NewFormatter(format string) (Formatter, error) {
	f, ok := ParseOutputFormat(format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (valid options: %s)", format, SupportedFormats())
	}
	constructor, ok := registry[f]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (valid options: %s)", format, SupportedFormats())
	}
	return constructor(), nil
}

// SupportedFormats lists registered formats for help and error messages.
func SupportedFormats() string {
	formats := make([]string, 0, len(registry))
	for f := range registry {
		formats = append(formats, f.String())
	}
	sort.Strings(formats)
	return strings.Join(formats, ", ")
}
