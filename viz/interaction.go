package viz

import (
	"sort"
	"strings"
)

// StateKind names the interaction state reported to clients.
type StateKind int

const (
	Idle StateKind = iota
	Hovering
	Dragging
	Selected
	Searching
)

func (k StateKind) String() string {
	switch k {
	case Hovering:
		return "hovering"
	case Dragging:
		return "dragging"
	case Selected:
		return "selected"
	case Searching:
		return "searching"
	default:
		return "idle"
	}
}

// State is the reported interaction state. NodeID is set for Hovering,
// Dragging and Selected; Term is set for Searching.
type State struct {
	Kind   StateKind
	NodeID string
	Term   string
}

// Interaction tracks pointer, selection and search state for one visualization.
// Hover, drag, selection and search are tracked independently; State reports
// the highest-priority one.
type Interaction struct {
	ids []string

	hovered  string
	dragged  string
	selected string
	term     string
	matches  []string

	// dragMoved swallows the click that browsers deliver after a drag release.
	dragMoved bool
	swallow   bool
}

// NewInteraction returns an idle interaction over the given node ids.
func NewInteraction(ids []string) *Interaction {
	in := &Interaction{}
	in.Reset(ids)
	return in
}

// Reset replaces the node set. Pointer and selection state are cleared; the
// search term survives and is re-evaluated against the new ids.
func (in *Interaction) Reset(ids []string) {
	in.ids = append([]string(nil), ids...)
	sort.Strings(in.ids)
	in.hovered, in.dragged, in.selected = "", "", ""
	in.dragMoved, in.swallow = false, false
	in.matches = Search(in.ids, in.term)
}

// Hover records the node under the pointer ("" for background) and reports whether it changed.
func (in *Interaction) Hover(id string) bool {
	if in.hovered == id {
		return false
	}
	in.hovered = id
	return true
}

// StartDrag begins dragging id from any state.
func (in *Interaction) StartDrag(id string) bool {
	if id == "" {
		return false
	}
	in.dragged = id
	in.dragMoved = false
	return true
}

// DragMove records pointer movement during a drag.
func (in *Interaction) DragMove() {
	if in.dragged != "" {
		in.dragMoved = true
	}
}

// EndDrag releases the dragged node and returns its id ("" when nothing was dragged).
func (in *Interaction) EndDrag() string {
	id := in.dragged
	if id == "" {
		return ""
	}
	in.swallow = in.dragMoved
	in.dragged, in.dragMoved = "", false
	return id
}

// Click applies a click on id ("" for background) and reports whether selection changed.
func (in *Interaction) Click(id string) bool {
	if in.swallow {
		in.swallow = false
		return false
	}
	switch {
	case id == "" && in.selected == "":
		return false
	case id == "" || id == in.selected:
		in.selected = ""
	default:
		in.selected = id
	}
	return true
}

// SetSearch sets the search term; blank terms clear the search.
func (in *Interaction) SetSearch(term string) bool {
	term = strings.TrimSpace(term)
	if term == in.term {
		return false
	}
	in.term = term
	in.matches = Search(in.ids, term)
	return true
}

// Matches returns the ids matching the current search term, ascending.
func (in *Interaction) Matches() []string { return in.matches }

// Hovered returns the node under the pointer.
func (in *Interaction) Hovered() string { return in.hovered }

// Dragged returns the node being dragged.
func (in *Interaction) Dragged() string { return in.dragged }

// Selected returns the selected node.
func (in *Interaction) Selected() string { return in.selected }

// State reports Dragging > Searching > Selected > Hovering > Idle.
func (in *Interaction) State() State {
	switch {
	case in.dragged != "":
		return State{Kind: Dragging, NodeID: in.dragged}
	case in.term != "":
		return State{Kind: Searching, Term: in.term}
	case in.selected != "":
		return State{Kind: Selected, NodeID: in.selected}
	case in.hovered != "":
		return State{Kind: Hovering, NodeID: in.hovered}
	default:
		return State{Kind: Idle}
	}
}

// Focus returns the node whose neighbourhood is highlighted: the dragged node,
// else the selection, else the hovered node, else the first search match.
func (in *Interaction) Focus() string {
	switch {
	case in.dragged != "":
		return in.dragged
	case in.selected != "":
		return in.selected
	case in.hovered != "":
		return in.hovered
	case len(in.matches) > 0:
		return in.matches[0]
	default:
		return ""
	}
}
