package formatters

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/LegacyCodeHQ/codegraph/depgraph"
)

func init() {
	Register(OutputFormatDOT, func() Formatter { return &DOTFormatter{} })
}

// DOTFormatter formats dependency graphs as Graphviz DOT.
type DOTFormatter struct{}

// Format converts the dependency graph to Graphviz DOT format. Nodes are filled
// by complexity bucket; edges inside an import cycle are drawn red.
func (f *DOTFormatter) Format(g *depgraph.Graph, opts FormatOptions) (string, error) {
	var sb strings.Builder
	sb.WriteString("digraph dependencies {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=filled, fontname=Helvetica];\n")

	label := opts.Label
	if label == "" {
		label = opts.RepoName
	}
	if label != "" {
		sb.WriteString(fmt.Sprintf("  label=%q;\n", label))
		sb.WriteString("  labelloc=t;\n")
		sb.WriteString("  labeljust=l;\n")
		sb.WriteString("  fontsize=10;\n")
		sb.WriteString("  fontname=Courier;\n")
	}
	sb.WriteString("\n")

	ids := make([]string, len(g.Nodes))
	for i, node := range g.Nodes {
		ids[i] = node.ID
	}
	names := BuildNodeNames(ids)

	for _, node := range g.Nodes {
		nodeLabel := fmt.Sprintf("%s\n%d loc, cc %s", names[node.ID], node.LinesOfCode, formatFloat(node.Complexity))
		if node.ParseError {
			nodeLabel += "\n(parse error)"
		}
		sb.WriteString(fmt.Sprintf("  %q [label=%q, fillcolor=%q];\n", node.ID, nodeLabel, ComplexityColor(node.Complexity)))
	}
	if len(g.Nodes) > 0 {
		sb.WriteString("\n")
	}

	for _, edge := range g.Edges {
		var attrs []string
		if edge.Weight > 1 {
			attrs = append(attrs, fmt.Sprintf("penwidth=%d", min(edge.Weight, 5)), fmt.Sprintf("label=%q", fmt.Sprint(edge.Weight)))
		}
		if g.InCycle(edge.Source, edge.Target) {
			attrs = append(attrs, "color=red")
		}
		if len(attrs) > 0 {
			sb.WriteString(fmt.Sprintf("  %q -> %q [%s];\n", edge.Source, edge.Target, strings.Join(attrs, ", ")))
		} else {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", edge.Source, edge.Target))
		}
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

// GenerateURL creates a GraphvizOnline URL with the DOT graph embedded.
func (f *DOTFormatter) GenerateURL(output string) (string, bool) {
	encoded := url.PathEscape(output)
	return fmt.Sprintf("https://dreampuf.github.io/GraphvizOnline/?engine=dot#%s", encoded), true
}

func formatFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
