package formatters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/codegraph/depgraph"
)

func init() {
	Register(OutputFormatText, func() Formatter { return &TextFormatter{} })
}

// TextFormatter prints a terminal summary: metrics, hubs, cycles and every node's dependencies.
type TextFormatter struct{}

func (f *TextFormatter) Format(g *depgraph.Graph, opts FormatOptions) (string, error) {
	var sb strings.Builder

	title := opts.Label
	if title == "" {
		title = opts.RepoName
	}
	if title != "" {
		sb.WriteString(title + "\n")
		sb.WriteString(strings.Repeat("=", len(title)) + "\n\n")
	}

	m := g.Metrics
	sb.WriteString(fmt.Sprintf("Files:          %d\n", m.TotalFiles))
	sb.WriteString(fmt.Sprintf("Lines of code:  %d\n", m.TotalLinesOfCode))
	sb.WriteString(fmt.Sprintf("Dependencies:   %d\n", len(g.Edges)))
	sb.WriteString(fmt.Sprintf("Avg complexity: %.2f\n", m.AvgComplexity))
	sb.WriteString(fmt.Sprintf("Max complexity: %s\n", formatFloat(m.MaxComplexity)))

	languages := make([]string, 0, len(m.LanguageDistribution))
	for language := range m.LanguageDistribution {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	parts := make([]string, 0, len(languages))
	for _, language := range languages {
		parts = append(parts, fmt.Sprintf("%s=%d", language, m.LanguageDistribution[language]))
	}
	sb.WriteString(fmt.Sprintf("Languages:      %s\n", strings.Join(parts, ", ")))

	if len(m.MostConnected) > 0 {
		sb.WriteString("\nMost connected:\n")
		for i, id := range m.MostConnected {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, id))
		}
	}

	if len(g.Cycles) > 0 {
		sb.WriteString(fmt.Sprintf("\nCircular dependencies (%d):\n", len(g.Cycles)))
		for _, cycle := range g.Cycles {
			sb.WriteString("  " + strings.Join(cycle, " <-> ") + "\n")
		}
	}

	var broken []string
	for _, node := range g.Nodes {
		if node.ParseError {
			broken = append(broken, node.ID)
		}
	}
	if len(broken) > 0 {
		sb.WriteString(fmt.Sprintf("\nParse errors (%d):\n", len(broken)))
		for _, id := range broken {
			sb.WriteString("  " + id + "\n")
		}
	}

	outgoing := make(map[string][]depgraph.DependencyEdge)
	for _, edge := range g.Edges {
		outgoing[edge.Source] = append(outgoing[edge.Source], edge)
	}

	sb.WriteString("\nFiles:\n")
	for _, node := range g.Nodes {
		sb.WriteString(fmt.Sprintf("  %s (loc %d, complexity %s)\n", node.ID, node.LinesOfCode, formatFloat(node.Complexity)))
		for _, edge := range outgoing[node.ID] {
			if edge.Weight > 1 {
				sb.WriteString(fmt.Sprintf("    -> %s (x%d)\n", edge.Target, edge.Weight))
			} else {
				sb.WriteString(fmt.Sprintf("    -> %s\n", edge.Target))
			}
		}
	}

	return sb.String(), nil
}

// GenerateURL returns false as text format does not support URL generation.
func (f *TextFormatter) GenerateURL(output string) (string, bool) {
	return "", false
}
