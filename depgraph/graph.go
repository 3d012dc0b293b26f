package depgraph

import "fmt"

// FileNode is one analyzed source file. It is not modified after BuildGraph returns.
type FileNode struct {
	ID          string
	Name        string
	Path        string
	LinesOfCode int
	Complexity  float64
	Language    string
	// Imports holds raw import tokens in source order, duplicates included.
	Imports []string
	Size    float64
	// ParseError is set when the file did not parse; such nodes have no imports.
	ParseError bool
}

// DependencyEdge is a resolved import between two nodes.
type DependencyEdge struct {
	Source string
	Target string
	// Weight counts the import statements in Source that resolve to Target.
	Weight int
}

// RepositoryMetrics aggregates node statistics.
type RepositoryMetrics struct {
	TotalFiles           int
	TotalLinesOfCode     int
	AvgComplexity        float64
	MaxComplexity        float64
	LanguageDistribution map[string]int
	MostConnected        []string
}

// Graph is the result of one analysis. Nodes are sorted by ID and edges by (Source, Target).
type Graph struct {
	Nodes   []FileNode
	Edges   []DependencyEdge
	Metrics RepositoryMetrics
	// Cycles lists strongly connected components with more than one node.
	Cycles [][]string
}

// Node returns the node with id.
func (g *Graph) Node(id string) (FileNode, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return FileNode{}, false
}

// InCycle reports whether edge source→target lies inside one of the graph's cycles.
func (g *Graph) InCycle(source, target string) bool {
	for _, cycle := range g.Cycles {
		hasSource, hasTarget := false, false
		for _, id := range cycle {
			hasSource = hasSource || id == source
			hasTarget = hasTarget || id == target
		}
		if hasSource && hasTarget {
			return true
		}
	}
	return false
}

// ContractViolation is the panic value raised when BuildGraph receives inconsistent input.
type ContractViolation struct {
	Message string
}

func (c ContractViolation) Error() string {
	return fmt.Sprintf("contract violation: %s", c.Message)
}
