package formatters

import "github.com/LegacyCodeHQ/codegraph/depgraph"

// AnalyzeResponse is the wire form of an analysis result.
type AnalyzeResponse struct {
	Nodes    []NodeData        `json:"nodes"`
	Edges    []EdgeData        `json:"edges"`
	Metrics  RepositoryMetrics `json:"metrics"`
	RepoName string            `json:"repo_name"`
	RepoURL  string            `json:"repo_url"`
}

// NodeData is one file node on the wire.
type NodeData struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	LOC        int      `json:"loc"`
	Complexity float64  `json:"complexity"`
	Language   string   `json:"language"`
	Imports    []string `json:"imports"`
	Size       float64  `json:"size"`
}

// EdgeData is one dependency on the wire.
type EdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// RepositoryMetrics is the aggregate block on the wire.
type RepositoryMetrics struct {
	TotalFiles    int            `json:"total_files"`
	TotalLOC      int            `json:"total_loc"`
	AvgComplexity float64        `json:"avg_complexity"`
	MaxComplexity float64        `json:"max_complexity"`
	Languages     map[string]int `json:"languages"`
	MostConnected []string       `json:"most_connected"`
}

// ToResponse converts g into its wire form. Slices and maps are never nil so
// they encode as [] and {}.
func ToResponse(g *depgraph.Graph, repoName, repoURL string) AnalyzeResponse {
	resp := AnalyzeResponse{
		Nodes:    make([]NodeData, 0, len(g.Nodes)),
		Edges:    make([]EdgeData, 0, len(g.Edges)),
		RepoName: repoName,
		RepoURL:  repoURL,
	}

	for _, node := range g.Nodes {
		imports := append([]string{}, node.Imports...)
		resp.Nodes = append(resp.Nodes, NodeData{
			ID:         node.ID,
			Name:       node.Name,
			Path:       node.Path,
			LOC:        node.LinesOfCode,
			Complexity: node.Complexity,
			Language:   node.Language,
			Imports:    imports,
			Size:       node.Size,
		})
	}

	for _, edge := range g.Edges {
		resp.Edges = append(resp.Edges, EdgeData{Source: edge.Source, Target: edge.Target, Weight: edge.Weight})
	}

	languages := make(map[string]int, len(g.Metrics.LanguageDistribution))
	for language, count := range g.Metrics.LanguageDistribution {
		languages[language] = count
	}
	resp.Metrics = RepositoryMetrics{
		TotalFiles:    g.Metrics.TotalFiles,
		TotalLOC:      g.Metrics.TotalLinesOfCode,
		AvgComplexity: g.Metrics.AvgComplexity,
		MaxComplexity: g.Metrics.MaxComplexity,
		Languages:     languages,
		MostConnected: append([]string{}, g.Metrics.MostConnected...),
	}

	return resp
}
