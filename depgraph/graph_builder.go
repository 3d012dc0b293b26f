package depgraph

import (
	"errors"
	"fmt"
	"math"
	"path"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

const (
	minNodeSize = 8.0
	maxNodeSize = 40.0

	// DefaultMostConnected is how many ids RepositoryMetrics.MostConnected keeps by default.
	DefaultMostConnected = 5
)

// FileResult is the per-file output of parsing and scoring.
type FileResult struct {
	Path     string
	Language string
	// Imports are raw tokens in source order.
	Imports []string
	// Dependencies are resolved target paths, one entry per import statement and target.
	Dependencies []string
	LinesOfCode  int
	Complexity   float64
	ParseError   bool
}

// BuildOptions tunes metric aggregation.
type BuildOptions struct {
	// MostConnected caps RepositoryMetrics.MostConnected; zero uses DefaultMostConnected
	// and a negative value keeps every connected node.
	MostConnected int
}

// BuildGraph aggregates per-file results into a Graph. It performs no I/O.
// A dependency naming a path missing from results panics with a ContractViolation.
func BuildGraph(results []FileResult, opts BuildOptions) *Graph {
	sorted := append([]FileResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	store := graphlib.New(graphlib.StringHash, graphlib.Directed())

	nodes := make([]FileNode, 0, len(sorted))
	for _, result := range sorted {
		if err := store.AddVertex(result.Path); err != nil {
			panic(ContractViolation{Message: fmt.Sprintf("duplicate file %q: %v", result.Path, err)})
		}
		nodes = append(nodes, newFileNode(result))
	}

	for _, result := range sorted {
		for _, target := range result.Dependencies {
			if target == result.Path {
				continue
			}
			addWeightedEdge(store, result.Path, target)
		}
	}

	edges := collectEdges(store)
	ids := make([]string, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
	}

	return &Graph{
		Nodes:   nodes,
		Edges:   edges,
		Metrics: computeMetrics(nodes, edges, opts),
		Cycles:  findCycles(ids, edges),
	}
}

func newFileNode(result FileResult) FileNode {
	imports := []string{}
	if !result.ParseError {
		imports = append(imports, result.Imports...)
	}

	complexity := result.Complexity
	if result.ParseError {
		complexity = 0
	}

	return FileNode{
		ID:          result.Path,
		Name:        path.Base(result.Path),
		Path:        result.Path,
		LinesOfCode: result.LinesOfCode,
		Complexity:  complexity,
		Language:    result.Language,
		Imports:     imports,
		Size:        NodeSize(result.LinesOfCode),
		ParseError:  result.ParseError,
	}
}

// NodeSize maps a line count to a visual radius in [8, 40].
func NodeSize(linesOfCode int) float64 {
	if linesOfCode < 0 {
		linesOfCode = 0
	}
	return math.Min(maxNodeSize, math.Max(minNodeSize, minNodeSize+math.Sqrt(float64(linesOfCode))))
}

// addWeightedEdge inserts source→target or increments the weight of the existing edge.
func addWeightedEdge(store graphlib.Graph[string, string], source, target string) {
	err := store.AddEdge(source, target, graphlib.EdgeWeight(1))
	switch {
	case err == nil:
		return
	case errors.Is(err, graphlib.ErrEdgeAlreadyExists):
		edge, err := store.Edge(source, target)
		if err != nil {
			panic(ContractViolation{Message: fmt.Sprintf("edge %s -> %s: %v", source, target, err)})
		}
		if err := store.UpdateEdge(source, target, graphlib.EdgeWeight(edge.Properties.Weight+1)); err != nil {
			panic(ContractViolation{Message: fmt.Sprintf("edge %s -> %s: %v", source, target, err)})
		}
	case errors.Is(err, graphlib.ErrVertexNotFound):
		panic(ContractViolation{Message: fmt.Sprintf("edge %s -> %s references an unknown node", source, target)})
	default:
		panic(ContractViolation{Message: fmt.Sprintf("edge %s -> %s: %v", source, target, err)})
	}
}

func collectEdges(store graphlib.Graph[string, string]) []DependencyEdge {
	raw, err := store.Edges()
	if err != nil {
		panic(ContractViolation{Message: fmt.Sprintf("list edges: %v", err)})
	}

	edges := make([]DependencyEdge, 0, len(raw))
	for _, edge := range raw {
		edges = append(edges, DependencyEdge{
			Source: edge.Source,
			Target: edge.Target,
			Weight: edge.Properties.Weight,
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

func computeMetrics(nodes []FileNode, edges []DependencyEdge, opts BuildOptions) RepositoryMetrics {
	metrics := RepositoryMetrics{
		TotalFiles:           len(nodes),
		LanguageDistribution: make(map[string]int),
		MostConnected:        []string{},
	}

	var complexitySum float64
	for i, node := range nodes {
		metrics.TotalLinesOfCode += node.LinesOfCode
		complexitySum += node.Complexity
		if i == 0 || node.Complexity > metrics.MaxComplexity {
			metrics.MaxComplexity = node.Complexity
		}
		metrics.LanguageDistribution[node.Language]++
	}
	if len(nodes) > 0 {
		metrics.AvgComplexity = complexitySum / float64(len(nodes))
	}

	degree := make(map[string]int)
	for _, edge := range edges {
		degree[edge.Source]++
		degree[edge.Target]++
	}
	for _, node := range nodes {
		if degree[node.ID] > 0 {
			metrics.MostConnected = append(metrics.MostConnected, node.ID)
		}
	}
	// nodes are already id-ordered, so a stable sort keeps ties ascending
	sort.SliceStable(metrics.MostConnected, func(i, j int) bool {
		return degree[metrics.MostConnected[i]] > degree[metrics.MostConnected[j]]
	})

	limit := opts.MostConnected
	if limit == 0 {
		limit = DefaultMostConnected
	}
	if limit > 0 && len(metrics.MostConnected) > limit {
		metrics.MostConnected = metrics.MostConnected[:limit]
	}

	return metrics
}
