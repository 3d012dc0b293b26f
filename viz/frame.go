package viz

// Frame is one rendered snapshot of the layout.
type Frame struct {
	Type       string      `json:"type"`
	Generation uint64      `json:"generation"`
	Alpha      float64     `json:"alpha"`
	State      string      `json:"state"`
	StateNode  string      `json:"state_node,omitempty"`
	Search     string      `json:"search,omitempty"`
	Focus      string      `json:"focus,omitempty"`
	Nodes      []FrameNode `json:"nodes"`
	Edges      []FrameEdge `json:"edges"`
	Overlays   []Overlay   `json:"overlays"`
}

// FrameNode is the display state of one node.
type FrameNode struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Radius   float64  `json:"radius"`
	Color    string   `json:"color"`
	Emphasis Emphasis `json:"emphasis"`
	Match    bool     `json:"match,omitempty"`
	Pinned   bool     `json:"pinned,omitempty"`
}

// FrameEdge is the display state of one edge.
type FrameEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Weight   int      `json:"weight"`
	Emphasis Emphasis `json:"emphasis"`
}
