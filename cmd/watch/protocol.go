package watch

import (
	"time"

	"github.com/LegacyCodeHQ/codegraph/formatters"
)

const (
	routeIndex  = "/"
	routeEvents = "/events"
	routeGraph  = "/graph"
)

const sseEventGraph = "graph"

// graphSnapshot is the payload of one SSE "graph" event. Colors maps node
// ids to their complexity fill color.
type graphSnapshot struct {
	ID        int64                      `json:"id"`
	Timestamp time.Time                  `json:"timestamp"`
	Graph     formatters.AnalyzeResponse `json:"graph"`
	Colors    map[string]string          `json:"colors"`
}
