package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/LegacyCodeHQ/codegraph/formatters"
	"github.com/LegacyCodeHQ/codegraph/internal/analysis"
)

// snapshotBuilder analyzes the watched directory and encodes numbered snapshots.
type snapshotBuilder struct {
	service *analysis.Service
	request analysis.Request
	nextID  atomic.Int64
	now     func() time.Time
}

func newSnapshotBuilder(service *analysis.Service, request analysis.Request) *snapshotBuilder {
	return &snapshotBuilder{service: service, request: request, now: time.Now}
}

// build returns the JSON encoding of a fresh snapshot.
func (s *snapshotBuilder) build(ctx context.Context) (string, error) {
	result, err := s.service.Run(ctx, s.request)
	if err != nil {
		return "", fmt.Errorf("failed to build dependency graph: %w", err)
	}

	resp := formatters.ToResponse(result.Graph, result.RepoName, result.RepoURL)
	colors := make(map[string]string, len(resp.Nodes))
	for _, n := range resp.Nodes {
		colors[n.ID] = formatters.ComplexityColor(n.Complexity)
	}
	snapshot := graphSnapshot{
		ID:        s.nextID.Add(1),
		Timestamp: s.now().UTC(),
		Graph:     resp,
		Colors:    colors,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(data), nil
}
