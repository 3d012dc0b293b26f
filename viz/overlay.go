package viz

// Overlay is a tooltip anchored to a node.
type Overlay struct {
	ID     string  `json:"id"`
	NodeID string  `json:"node_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Text   string  `json:"text"`
}

// OverlayHost displays overlays outside the frame stream, e.g. as DOM tooltips.
type OverlayHost interface {
	ShowOverlay(o Overlay)
	HideOverlay(id string)
}

type nopOverlayHost struct{}

func (nopOverlayHost) ShowOverlay(Overlay) {}
func (nopOverlayHost) HideOverlay(string)  {}
