package depgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// findCycles returns the strongly connected components of more than one node.
// Each component is sorted and the list is sorted by first element.
func findCycles(nodeIDs []string, edges []DependencyEdge) [][]string {
	g := simple.NewDirectedGraph()
	ids := make(map[string]int64, len(nodeIDs))
	for i, id := range nodeIDs {
		ids[id] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, edge := range edges {
		from, okFrom := ids[edge.Source]
		to, okTo := ids[edge.Target]
		if !okFrom || !okTo || from == to {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
	}

	var cycles [][]string
	for _, component := range topo.TarjanSCC(g) {
		if len(component) < 2 {
			continue
		}
		members := make([]string, 0, len(component))
		for _, n := range component {
			members = append(members, nodeIDs[n.ID()])
		}
		sort.Strings(members)
		cycles = append(cycles, members)
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}
