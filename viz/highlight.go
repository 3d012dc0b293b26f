package viz

// Emphasis is the highlight level of a node or edge.
type Emphasis int

const (
	Neutral Emphasis = iota
	Emphasized
	Dimmed
)

func (e Emphasis) String() string {
	switch e {
	case Emphasized:
		return "emphasized"
	case Dimmed:
		return "dimmed"
	default:
		return "neutral"
	}
}

func (e Emphasis) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Edge is a directed link between two node ids.
type Edge struct {
	Source string
	Target string
}

// Projection holds the emphasis of every node and edge for one focus.
// Edges is parallel to the edges passed to Project.
type Projection struct {
	Nodes map[string]Emphasis
	Edges []Emphasis
}

// Project emphasizes focus and its one-hop neighbours in either direction and
// dims everything else. An empty or unknown focus leaves everything neutral.
func Project(nodeIDs []string, edges []Edge, focus string) Projection {
	p := Projection{
		Nodes: make(map[string]Emphasis, len(nodeIDs)),
		Edges: make([]Emphasis, len(edges)),
	}

	known := false
	for _, id := range nodeIDs {
		p.Nodes[id] = Neutral
		if id == focus {
			known = true
		}
	}
	if focus == "" || !known {
		return p
	}

	for _, id := range nodeIDs {
		p.Nodes[id] = Dimmed
	}
	p.Nodes[focus] = Emphasized

	for i, e := range edges {
		switch focus {
		case e.Source:
			p.Edges[i] = Emphasized
			if _, ok := p.Nodes[e.Target]; ok {
				p.Nodes[e.Target] = Emphasized
			}
		case e.Target:
			p.Edges[i] = Emphasized
			if _, ok := p.Nodes[e.Source]; ok {
				p.Nodes[e.Source] = Emphasized
			}
		default:
			p.Edges[i] = Dimmed
		}
	}
	return p
}
