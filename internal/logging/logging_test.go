package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	r := slog.NewRecord(time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC), slog.LevelWarn, "Failed to parse file", 0)
	r.AddAttrs(
		slog.String("file", "pkg/broken.py"),
		slog.String(RequestIDKey, "0123456789abcdef"),
		slog.Int64("durationMs", 12),
		slog.String("reason", "syntax error"),
	)
	require.NoError(t, h.Handle(context.Background(), r))

	assert.Equal(t,
		"[WARN]  13:04:05 Failed to parse file | file=pkg/broken.py req=01234567 duration=12ms reason=\"syntax error\"\n",
		buf.String())
}

func TestCompactHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, nil)).With("component", "walker").WithGroup("walk")

	logger.Info("Walk complete", "files", 3)
	logger.Debug("hidden")

	line := buf.String()
	assert.Contains(t, line, "[INFO]  ")
	assert.Contains(t, line, "Walk complete | component=walker walk.files=3\n")
	assert.NotContains(t, line, "hidden")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, FormatJSON, slog.LevelInfo)
	require.NoError(t, err)

	logger.Info("Analysis complete", "files", 2)
	assert.Contains(t, buf.String(), `"msg":"Analysis complete"`)
	assert.Contains(t, buf.String(), `"files":2`)

	_, err = New(&buf, Format("xml"), slog.LevelInfo)
	assert.Error(t, err)
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(NewCompactHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Contains(t, buf.String(), "Request rejected")
		assert.Contains(t, buf.String(), "status=418")
	})

	t.Run("keeps an incoming id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "abc")
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "abc", seen)
		assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
	})
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewCompactHandler(&buf, nil))

	FromContext(WithRequestID(context.Background(), "req-1"), base).Info("hello")
	FromContext(context.Background(), base).Info("bare")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "hello | requestID=req-1"))
	assert.True(t, strings.HasSuffix(lines[1], "bare"))
}

func TestTee(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	logger := slog.New(Tee(
		NewCompactHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		NewCompactHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)).With("cmd", "mcp")

	logger.Debug("resolving")
	logger.Info("served")

	assert.NotContains(t, infoBuf.String(), "resolving")
	assert.Contains(t, infoBuf.String(), "served | cmd=mcp")
	assert.Contains(t, debugBuf.String(), "resolving | cmd=mcp")
	assert.Contains(t, debugBuf.String(), "served | cmd=mcp")
}
