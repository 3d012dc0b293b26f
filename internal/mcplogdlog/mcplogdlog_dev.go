//go:build dev

package mcplogdlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

const defaultSocket = "/tmp/mcplogd.sock"
const appName = "codegraph"

type entry struct {
	App       string         `json:"app"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewHandler ships records to the local mcplogd socket. Records are dropped
// silently when no daemon is listening.
func NewHandler(level slog.Leveler) slog.Handler {
	return &socketHandler{level: level, socket: defaultSocket}
}

type socketHandler struct {
	level  slog.Leveler
	socket string
	attrs  []slog.Attr
}

func (h *socketHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *socketHandler) Handle(_ context.Context, r slog.Record) error {
	conn, err := net.Dial("unix", h.socket)
	if err != nil {
		return nil
	}
	defer conn.Close()

	metadata := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		metadata[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		metadata[a.Key] = a.Value.Resolve().Any()
		return true
	})
	if len(metadata) == 0 {
		metadata = nil
	}

	e := entry{
		App:       appName,
		Level:     strings.ToLower(r.Level.String()),
		Message:   r.Message,
		Timestamp: r.Time.UTC().Format(time.RFC3339Nano),
		Metadata:  metadata,
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(conn, "%s\n", data)
	return err
}

func (h *socketHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *socketHandler) WithGroup(string) slog.Handler {
	return h
}
