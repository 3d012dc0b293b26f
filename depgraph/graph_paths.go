package depgraph

// PathSubgraph returns the part of g lying on any directed path between the target files,
// in either direction. Targets missing from g are skipped. With fewer than two known
// targets the result holds only those targets.
func (g *Graph) PathSubgraph(targets []string) *Graph {
	known := make(map[string]bool, len(g.Nodes))
	for _, node := range g.Nodes {
		known[node.ID] = true
	}

	var validTargets []string
	for _, target := range targets {
		if known[target] {
			validTargets = append(validTargets, target)
		}
	}

	keep := make(map[string]bool)
	for _, target := range validTargets {
		keep[target] = true
	}

	forward, reverse := buildAdjacencyLists(g.Edges)
	for i := 0; i < len(validTargets); i++ {
		for j := i + 1; j < len(validTargets); j++ {
			for node := range findDirectedPathNodes(forward, reverse, validTargets[i], validTargets[j]) {
				keep[node] = true
			}
			for node := range findDirectedPathNodes(forward, reverse, validTargets[j], validTargets[i]) {
				keep[node] = true
			}
		}
	}

	return g.subgraph(keep)
}

// buildAdjacencyLists returns successors (forward) and predecessors (reverse) per node.
func buildAdjacencyLists(edges []DependencyEdge) (forward, reverse map[string][]string) {
	forward = make(map[string][]string)
	reverse = make(map[string][]string)
	for _, edge := range edges {
		forward[edge.Source] = append(forward[edge.Source], edge.Target)
		reverse[edge.Target] = append(reverse[edge.Target], edge.Source)
	}
	return forward, reverse
}

// findDirectedPathNodes intersects what source reaches with what reaches target.
func findDirectedPathNodes(forward, reverse map[string][]string, source, target string) map[string]bool {
	reachableFromSource := bfsReachable(forward, source)
	if !reachableFromSource[target] {
		return nil
	}
	canReachTarget := bfsReachable(reverse, target)

	result := make(map[string]bool)
	for node := range reachableFromSource {
		if canReachTarget[node] {
			result[node] = true
		}
	}
	return result
}

func bfsReachable(adjacency map[string][]string, source string) map[string]bool {
	reachable := map[string]bool{source: true}
	queue := []string{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range adjacency[current] {
			if !reachable[neighbor] {
				reachable[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}
	return reachable
}

func (g *Graph) subgraph(keep map[string]bool) *Graph {
	var nodes []FileNode
	var ids []string
	for _, node := range g.Nodes {
		if keep[node.ID] {
			nodes = append(nodes, node)
			ids = append(ids, node.ID)
		}
	}

	var edges []DependencyEdge
	for _, edge := range g.Edges {
		if keep[edge.Source] && keep[edge.Target] {
			edges = append(edges, edge)
		}
	}

	return &Graph{
		Nodes:   nodes,
		Edges:   edges,
		Metrics: computeMetrics(nodes, edges, BuildOptions{MostConnected: len(g.Metrics.MostConnected)}),
		Cycles:  findCycles(ids, edges),
	}
}
