package formatters_test

import (
	"encoding/json"
	"testing"

	"github.com/LegacyCodeHQ/codegraph/depgraph"
	"github.com/LegacyCodeHQ/codegraph/formatters"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formatterGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithNameSuffix(".gold.txt"))
}

func scenarioGraph() *depgraph.Graph {
	return depgraph.BuildGraph([]depgraph.FileResult{
		{Path: "a.py", Language: "python", Imports: []string{"b"}, Dependencies: []string{"b.py"}, LinesOfCode: 1, Complexity: 1},
		{Path: "b.py", Language: "python", LinesOfCode: 4, Complexity: 2},
		{Path: "c.py", Language: "python", Imports: []string{"a", "b"}, Dependencies: []string{"a.py", "b.py"}, LinesOfCode: 9, Complexity: 3},
	}, depgraph.BuildOptions{})
}

var scenarioOptions = formatters.FormatOptions{RepoName: "sample", RepoURL: "https://github.com/acme/sample"}

func TestJSONFormatter_ScenarioABC(t *testing.T) {
	output, err := (&formatters.JSONFormatter{}).Format(scenarioGraph(), scenarioOptions)
	require.NoError(t, err)

	formatterGoldie(t).Assert(t, "json_scenario_abc", []byte(output))
}

func TestDOTFormatter_ScenarioABC(t *testing.T) {
	output, err := (&formatters.DOTFormatter{}).Format(scenarioGraph(), scenarioOptions)
	require.NoError(t, err)

	formatterGoldie(t).Assert(t, "dot_scenario_abc", []byte(output))
}

func TestTextFormatter_ScenarioABC(t *testing.T) {
	output, err := (&formatters.TextFormatter{}).Format(scenarioGraph(), scenarioOptions)
	require.NoError(t, err)

	formatterGoldie(t).Assert(t, "text_scenario_abc", []byte(output))
}

func TestToResponse_EmptyCollectionsEncodeAsArrays(t *testing.T) {
	graph := depgraph.BuildGraph([]depgraph.FileResult{{Path: "solo.py", Language: "python"}}, depgraph.BuildOptions{})

	data, err := json.Marshal(formatters.ToResponse(graph, "solo", "https://github.com/acme/solo"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{}, decoded["edges"])
	node := decoded["nodes"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{}, node["imports"])
	metrics := decoded["metrics"].(map[string]any)
	assert.Equal(t, []any{}, metrics["most_connected"])
}

func TestToResponse_IsDeterministic(t *testing.T) {
	first, err := json.Marshal(formatters.ToResponse(scenarioGraph(), "sample", "u"))
	require.NoError(t, err)
	second, err := json.Marshal(formatters.ToResponse(scenarioGraph(), "sample", "u"))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestToResponse_OmitsParseErrorFlag(t *testing.T) {
	graph := depgraph.BuildGraph([]depgraph.FileResult{{Path: "bad.py", Language: "python", ParseError: true, LinesOfCode: 3}}, depgraph.BuildOptions{})

	data, err := json.Marshal(formatters.ToResponse(graph, "r", "u"))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "parse")
	assert.Contains(t, string(data), `"complexity":0`)
}

func TestDOTFormatter_CyclesAndWeights(t *testing.T) {
	graph := depgraph.BuildGraph([]depgraph.FileResult{
		{Path: "pkg/__init__.py", Dependencies: []string{"pkg/models.py", "pkg/models.py"}},
		{Path: "pkg/models.py", Dependencies: []string{"pkg/__init__.py"}},
		{Path: "sub/__init__.py", Complexity: 25},
	}, depgraph.BuildOptions{})

	output, err := (&formatters.DOTFormatter{}).Format(graph, formatters.FormatOptions{})
	require.NoError(t, err)

	assert.Contains(t, output, `"pkg/__init__.py" -> "pkg/models.py" [penwidth=2, label="2", color=red];`)
	assert.Contains(t, output, `"pkg/models.py" -> "pkg/__init__.py" [color=red];`)
	assert.Contains(t, output, `[label="pkg/__init__.py\n0 loc, cc 0"`)
	assert.Contains(t, output, `fillcolor="#ef4444"`)
	assert.NotContains(t, output, "label=\"\";")
}

func TestMermaidFormatter(t *testing.T) {
	output, err := (&formatters.MermaidFormatter{}).Format(scenarioGraph(), scenarioOptions)
	require.NoError(t, err)

	assert.Contains(t, output, "title: sample")
	assert.Contains(t, output, "flowchart LR")
	assert.Contains(t, output, `n0["a.py"]`)
	assert.Contains(t, output, "n0 --> n1")
	assert.Contains(t, output, "n2 --> n0")
	assert.Contains(t, output, "class n0,n1,n2 cc1")
	assert.NotContains(t, output, "linkStyle")
}

func TestNewFormatter(t *testing.T) {
	for _, format := range []string{"json", "dot", "mermaid", "text", " JSON "} {
		formatter, err := formatters.NewFormatter(format)
		require.NoError(t, err, format)
		assert.NotNil(t, formatter)
	}

	_, err := formatters.NewFormatter("svg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dot, json, mermaid, text")
}

func TestGenerateURL(t *testing.T) {
	url, ok := (&formatters.DOTFormatter{}).GenerateURL("digraph {}")
	assert.True(t, ok)
	assert.Contains(t, url, "GraphvizOnline")

	_, ok = (&formatters.JSONFormatter{}).GenerateURL("{}")
	assert.False(t, ok)
}

func TestComplexityColor(t *testing.T) {
	assert.Equal(t, "#22c55e", formatters.ComplexityColor(0))
	assert.Equal(t, "#22c55e", formatters.ComplexityColor(5))
	assert.Equal(t, "#84cc16", formatters.ComplexityColor(5.5))
	assert.Equal(t, "#eab308", formatters.ComplexityColor(15))
	assert.Equal(t, "#f97316", formatters.ComplexityColor(20))
	assert.Equal(t, "#ef4444", formatters.ComplexityColor(20.1))
}

func TestBuildNodeNames(t *testing.T) {
	names := formatters.BuildNodeNames([]string{"pkg/__init__.py", "pkg/sub/__init__.py", "app.py", "__init__.py"})

	assert.Equal(t, map[string]string{
		"pkg/__init__.py":     "pkg/__init__.py",
		"pkg/sub/__init__.py": "sub/__init__.py",
		"app.py":              "app.py",
		"__init__.py":         "__init__.py",
	}, names)
}
