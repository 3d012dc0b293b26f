package formatters

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/LegacyCodeHQ/codegraph/depgraph"
)

func init() {
	Register(OutputFormatMermaid, func() Formatter { return &MermaidFormatter{} })
}

// MermaidFormatter formats dependency graphs as Mermaid.js flowcharts.
type MermaidFormatter struct{}

// Format converts the dependency graph to Mermaid.js flowchart format.
func (f *MermaidFormatter) Format(g *depgraph.Graph, opts FormatOptions) (string, error) {
	var sb strings.Builder

	label := opts.Label
	if label == "" {
		label = opts.RepoName
	}
	if label != "" {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", label))
		sb.WriteString("---\n")
	}

	sb.WriteString("flowchart LR\n")

	// Mermaid node ids can't contain dots or slashes
	ids := make([]string, len(g.Nodes))
	nodeIDs := make(map[string]string, len(g.Nodes))
	for i, node := range g.Nodes {
		ids[i] = node.ID
		nodeIDs[node.ID] = fmt.Sprintf("n%d", i)
	}
	names := BuildNodeNames(ids)

	buckets := make(map[string][]string)
	for _, node := range g.Nodes {
		nodeLabel := strings.ReplaceAll(names[node.ID], "\"", "#quot;")
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeIDs[node.ID], nodeLabel))
		class := complexityClass(node.Complexity)
		buckets[class] = append(buckets[class], nodeIDs[node.ID])
	}

	sb.WriteString("\n")

	var cycleLinks []string
	for i, edge := range g.Edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", nodeIDs[edge.Source], nodeIDs[edge.Target]))
		if g.InCycle(edge.Source, edge.Target) {
			cycleLinks = append(cycleLinks, fmt.Sprint(i))
		}
	}

	sb.WriteString("\n")

	for _, class := range complexityClasses {
		sb.WriteString(fmt.Sprintf("    classDef %s fill:%s,color:#000000\n", class.name, class.color))
	}
	for _, class := range complexityClasses {
		if members := buckets[class.name]; len(members) > 0 {
			sb.WriteString(fmt.Sprintf("    class %s %s\n", strings.Join(members, ","), class.name))
		}
	}
	if len(cycleLinks) > 0 {
		sb.WriteString(fmt.Sprintf("    linkStyle %s stroke:#ef4444\n", strings.Join(cycleLinks, ",")))
	}
	return sb.String(), nil
}

var complexityClasses = []struct {
	name  string
	color string
}{
	{"cc1", ComplexityColor(5)},
	{"cc2", ComplexityColor(10)},
	{"cc3", ComplexityColor(15)},
	{"cc4", ComplexityColor(20)},
	{"cc5", ComplexityColor(21)},
}

func complexityClass(complexity float64) string {
	color := ComplexityColor(complexity)
	for _, class := range complexityClasses {
		if class.color == color {
			return class.name
		}
	}
	return complexityClasses[len(complexityClasses)-1].name
}

// GenerateURL creates a mermaid.live URL with the diagram embedded.
func (f *MermaidFormatter) GenerateURL(output string) (string, bool) {
	payload := map[string]interface{}{
		"code": output,
		"mermaid": map[string]interface{}{
			"theme": "default",
		},
		"autoSync":      true,
		"updateDiagram": true,
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("https://mermaid.live/edit#%s", url.PathEscape(output)), true
	}

	encoded := base64.URLEncoding.EncodeToString(jsonBytes)
	return fmt.Sprintf("https://mermaid.live/edit#base64:%s", encoded), true
}
