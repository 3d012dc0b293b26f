package viz

import (
	"fmt"
	"sort"

	"github.com/LegacyCodeHQ/codegraph/formatters"
)

const tooltipPrefix = "tooltip:"

// engineState is everything the engine loop owns. Its methods are called from
// the loop goroutine only and report whether a frame should be emitted.
type engineState struct {
	generation uint64
	params     Params
	width      float64
	height     float64

	nodes    []formatters.NodeData
	byID     map[string]formatters.NodeData
	ids      []string
	edges    []Edge
	weights  []int
	sim      *Simulation
	ui       *Interaction
	host     OverlayHost
	overlays map[string]Overlay
}

func newEngineState(width, height float64, params Params, host OverlayHost) *engineState {
	if host == nil {
		host = nopOverlayHost{}
	}
	st := &engineState{
		params:   params,
		width:    width,
		height:   height,
		host:     host,
		byID:     map[string]formatters.NodeData{},
		overlays: map[string]Overlay{},
		ui:       NewInteraction(nil),
	}
	st.sim = NewSimulation(nil, nil, width, height, params)
	return st
}

// load replaces the dataset and starts a fresh simulation under generation gen.
func (st *engineState) load(resp formatters.AnalyzeResponse, gen uint64) bool {
	st.releaseOverlays()
	st.generation = gen

	st.nodes = append([]formatters.NodeData(nil), resp.Nodes...)
	sort.Slice(st.nodes, func(i, j int) bool { return st.nodes[i].ID < st.nodes[j].ID })

	st.byID = make(map[string]formatters.NodeData, len(st.nodes))
	st.ids = make([]string, 0, len(st.nodes))
	specs := make([]NodeSpec, 0, len(st.nodes))
	for _, n := range st.nodes {
		st.byID[n.ID] = n
		st.ids = append(st.ids, n.ID)
		specs = append(specs, NodeSpec{ID: n.ID, Size: n.Size})
	}

	st.edges = st.edges[:0]
	st.weights = st.weights[:0]
	links := make([]LinkSpec, 0, len(resp.Edges))
	for _, e := range resp.Edges {
		if _, ok := st.byID[e.Source]; !ok {
			continue
		}
		if _, ok := st.byID[e.Target]; !ok {
			continue
		}
		st.edges = append(st.edges, Edge{Source: e.Source, Target: e.Target})
		st.weights = append(st.weights, e.Weight)
		links = append(links, LinkSpec{Source: e.Source, Target: e.Target})
	}

	st.sim = NewSimulation(specs, links, st.width, st.height, st.params)
	st.ui.Reset(st.ids)
	return true
}

// tick advances the simulation unless the tick was scheduled for an older dataset.
func (st *engineState) tick(gen uint64) bool {
	if gen != st.generation {
		return false
	}
	moved := st.sim.Step()
	if moved {
		st.moveTooltips()
	}
	return moved
}

func (st *engineState) pointerMove(x, y float64) bool {
	if id := st.ui.Dragged(); id != "" {
		st.sim.Pin(id, x, y)
		st.ui.DragMove()
		st.moveTooltips()
		return true
	}
	id, _ := st.sim.NodeAt(x, y)
	if !st.ui.Hover(id) {
		return false
	}
	st.syncTooltip()
	return true
}

func (st *engineState) pointerDown(x, y float64) bool {
	id, ok := st.sim.NodeAt(x, y)
	if !ok {
		return false
	}
	st.ui.StartDrag(id)
	pos, _ := st.sim.Position(id)
	st.sim.Pin(id, pos.X, pos.Y)
	st.sim.SetAlphaTarget(dragAlpha)
	st.syncTooltip()
	return true
}

func (st *engineState) pointerUp() bool {
	id := st.ui.EndDrag()
	if id == "" {
		return false
	}
	st.sim.Unpin(id)
	st.sim.SetAlphaTarget(0)
	st.syncTooltip()
	return true
}

func (st *engineState) click(x, y float64) bool {
	id, _ := st.sim.NodeAt(x, y)
	return st.ui.Click(id)
}

func (st *engineState) search(term string) bool {
	return st.ui.SetSearch(term)
}

func (st *engineState) resize(width, height float64) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	st.width, st.height = width, height
	st.sim.Resize(width, height)
	return true
}

// syncTooltip shows a tooltip for the hovered node and hides any other.
// No tooltip is shown while dragging.
func (st *engineState) syncTooltip() {
	want := ""
	if st.ui.Dragged() == "" {
		want = st.ui.Hovered()
	}
	for id, o := range st.overlays {
		if o.NodeID != want {
			st.host.HideOverlay(id)
			delete(st.overlays, id)
		}
	}
	if want == "" {
		return
	}
	if _, ok := st.overlays[tooltipPrefix+want]; ok {
		return
	}
	pos, ok := st.sim.Position(want)
	if !ok {
		return
	}
	o := Overlay{
		ID:     tooltipPrefix + want,
		NodeID: want,
		X:      pos.X,
		Y:      pos.Y - pos.Radius,
		Text:   tooltipText(st.byID[want]),
	}
	st.overlays[o.ID] = o
	st.host.ShowOverlay(o)
}

func (st *engineState) moveTooltips() {
	for id, o := range st.overlays {
		if pos, ok := st.sim.Position(o.NodeID); ok {
			o.X, o.Y = pos.X, pos.Y-pos.Radius
			st.overlays[id] = o
		}
	}
}

// releaseOverlays hides every overlay this engine created.
func (st *engineState) releaseOverlays() {
	for id := range st.overlays {
		st.host.HideOverlay(id)
		delete(st.overlays, id)
	}
}

func (st *engineState) frame() Frame {
	state := st.ui.State()
	focus := st.ui.Focus()
	proj := Project(st.ids, st.edges, focus)

	matches := make(map[string]bool, len(st.ui.Matches()))
	for _, id := range st.ui.Matches() {
		matches[id] = true
	}

	f := Frame{
		Type:       "frame",
		Generation: st.generation,
		Alpha:      st.sim.Alpha(),
		State:      state.Kind.String(),
		StateNode:  state.NodeID,
		Search:     state.Term,
		Focus:      focus,
		Nodes:      make([]FrameNode, 0, len(st.nodes)),
		Edges:      make([]FrameEdge, 0, len(st.edges)),
		Overlays:   make([]Overlay, 0, len(st.overlays)),
	}

	for _, pos := range st.sim.Positions() {
		n := st.byID[pos.ID]
		f.Nodes = append(f.Nodes, FrameNode{
			ID:       pos.ID,
			Name:     n.Name,
			X:        pos.X,
			Y:        pos.Y,
			Radius:   pos.Radius,
			Color:    formatters.ComplexityColor(n.Complexity),
			Emphasis: proj.Nodes[pos.ID],
			Match:    matches[pos.ID],
			Pinned:   pos.Pinned,
		})
	}
	for i, e := range st.edges {
		f.Edges = append(f.Edges, FrameEdge{
			Source:   e.Source,
			Target:   e.Target,
			Weight:   st.weights[i],
			Emphasis: proj.Edges[i],
		})
	}
	for _, o := range st.overlays {
		f.Overlays = append(f.Overlays, o)
	}
	sort.Slice(f.Overlays, func(i, j int) bool { return f.Overlays[i].ID < f.Overlays[j].ID })

	return f
}

func tooltipText(n formatters.NodeData) string {
	return fmt.Sprintf("%s\nLines of code: %d\nComplexity: %.1f\nImports: %d", n.Path, n.LOC, n.Complexity, len(n.Imports))
}
