package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/codegraph/depgraph"
	"github.com/LegacyCodeHQ/codegraph/formatters"
	"github.com/LegacyCodeHQ/codegraph/internal/analysis"
	"github.com/LegacyCodeHQ/codegraph/vcs/git"
	"github.com/LegacyCodeHQ/codegraph/viz"
)

type fakeAnalyzer struct {
	resp  formatters.AnalyzeResponse
	err   error
	panic any
	last  analysis.Request
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req analysis.Request) (formatters.AnalyzeResponse, error) {
	f.last = req
	if f.panic != nil {
		panic(f.panic)
	}
	return f.resp, f.err
}

func sampleResponse() formatters.AnalyzeResponse {
	return formatters.AnalyzeResponse{
		Nodes: []formatters.NodeData{
			{ID: "a.py", Name: "a.py", Path: "a.py", LOC: 1, Complexity: 1, Language: "python", Imports: []string{"b"}, Size: 9},
			{ID: "b.py", Name: "b.py", Path: "b.py", LOC: 4, Complexity: 2, Language: "python", Imports: []string{}, Size: 10},
		},
		Edges:    []formatters.EdgeData{{Source: "a.py", Target: "b.py", Weight: 1}},
		Metrics:  formatters.RepositoryMetrics{TotalFiles: 2, TotalLOC: 5, Languages: map[string]int{"python": 2}, MostConnected: []string{"a.py", "b.py"}},
		RepoName: "sample",
		RepoURL:  "https://github.com/acme/sample",
	}
}

func newTestServer(a Analyzer) *Server {
	return New(Options{
		Analyzer:       a,
		AllowedOrigins: []string{"http://localhost:5173"},
		Version:        "1.2.3",
		Layout:         viz.EngineOptions{Ticks: make(chan time.Time)},
	})
}

func doRequest(s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestHealthAndStatus(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})

	rec := doRequest(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doRequest(s, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "operational",
		"version": "1.2.3",
		"endpoints": {"analyze": "/api/analyze", "status": "/api/status", "layout": "/api/layout/ws", "viewer": "/viewer"}
	}`, rec.Body.String())

	rec = doRequest(s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CodeGraph API is running")
}

func TestViewerPage(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})

	rec := doRequest(s, http.MethodGet, "/viewer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"/api/layout/ws"`)
	assert.Contains(t, rec.Body.String(), "<canvas")
}

func TestAnalyze_Success(t *testing.T) {
	fake := &fakeAnalyzer{resp: sampleResponse()}
	s := newTestServer(fake)

	rec := doRequest(s, http.MethodPost, "/api/analyze", `{"repo_url": " https://github.com/acme/sample "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body formatters.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, sampleResponse(), body)

	assert.Equal(t, analysis.Request{RepoURL: "https://github.com/acme/sample", MaxFiles: 100}, fake.last)
}

func TestAnalyze_PassesOptions(t *testing.T) {
	fake := &fakeAnalyzer{resp: sampleResponse()}
	s := newTestServer(fake)

	rec := doRequest(s, http.MethodPost, "/api/analyze", `{"repo_url":"https://github.com/acme/sample","max_files":7,"include_tests":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analysis.Request{RepoURL: "https://github.com/acme/sample", MaxFiles: 7, IncludeTests: true}, fake.last)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{name: "not json", body: `{"repo_url":`, wantStatus: http.StatusBadRequest, wantDetail: "invalid request body"},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest, wantDetail: "request body is required"},
		{name: "client input", body: `{}`, err: &analysis.ClientInputError{Message: "repo_url is required"}, wantStatus: http.StatusBadRequest, wantDetail: "repo_url is required"},
		{name: "invalid url", body: `{"repo_url":"ftp://x"}`, err: &git.AcquisitionError{Kind: git.KindInvalidURL, URL: "ftp://x", Err: errors.New("unsupported scheme")}, wantStatus: http.StatusBadRequest, wantDetail: "invalid repository URL"},
		{name: "no python files", body: `{"repo_url":"https://github.com/a/b"}`, err: depgraph.ErrNoSourceFiles, wantStatus: http.StatusBadRequest, wantDetail: "no Python files found in repository"},
		{name: "clone failed", body: `{"repo_url":"https://github.com/a/b"}`, err: &git.AcquisitionError{Kind: git.KindNotFound, URL: "https://github.com/a/b"}, wantStatus: http.StatusInternalServerError, wantDetail: "Analysis failed: repository not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeAnalyzer{err: tt.err})

			rec := doRequest(s, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, decodeDetail(t, rec), tt.wantDetail)
		})
	}
}

func TestAnalyze_ContractViolationBecomes500(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{panic: depgraph.ContractViolation{Message: "edge references an unknown node"}})

	rec := doRequest(s, http.MethodPost, "/api/analyze", `{"repo_url":"https://github.com/a/b"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeDetail(t, rec))
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})
	rec := doRequest(s, http.MethodGet, "/api/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyze_EndToEndWithLocalRepository(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"a.py": "import b\n",
		"b.py": "x = 1\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	s := newTestServer(&analysis.Service{Acquirer: git.LocalAcquirer{}})

	rec := doRequest(s, http.MethodPost, "/api/analyze", `{"repo_url":"`+filepath.ToSlash(root)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body formatters.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Nodes, 2)
	assert.Equal(t, []formatters.EdgeData{{Source: "a.py", Target: "b.py", Weight: 1}}, body.Edges)
	assert.Equal(t, filepath.Base(root), body.RepoName)

	rec = doRequest(s, http.MethodPost, "/api/analyze", `{"repo_url":"`+filepath.ToSlash(root)+`","max_files":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "max_files must be >= 0", decodeDetail(t, rec))
}

func TestCORS(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})

	preflight := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	preflight.Header.Set("Origin", "http://localhost:5173")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, preflight)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	other := httptest.NewRequest(http.MethodGet, "/health", nil)
	other.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, other)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func readMessage(t *testing.T, conn *websocket.Conn, wantType string) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for i := 0; i < 50; i++ {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if msg["type"] == wantType {
			return msg
		}
	}
	t.Fatalf("no %q message received", wantType)
	return nil
}

func TestLayoutWebSocket(t *testing.T) {
	ts := httptest.NewServer(newTestServer(&fakeAnalyzer{resp: sampleResponse()}))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/layout/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	readMessage(t, conn, "ready")

	graph := sampleResponse()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "graph", "graph": graph}))
	frame := readMessage(t, conn, "frame")
	assert.Equal(t, float64(1), frame["generation"])
	assert.Equal(t, "idle", frame["state"])
	assert.Len(t, frame["nodes"], 2)
	assert.Len(t, frame["edges"], 1)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "search", "term": "b.py"}))
	frame = readMessage(t, conn, "frame")
	assert.Equal(t, "searching", frame["state"])
	assert.Equal(t, "b.py", frame["focus"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "analyze", "repo_url": "https://github.com/acme/sample"}))
	analyzed := readMessage(t, conn, "analyzed")
	assert.Equal(t, "sample", analyzed["repo_name"])
	frame = readMessage(t, conn, "frame")
	assert.Equal(t, float64(2), frame["generation"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "bogus"}))
	errMsg := readMessage(t, conn, "error")
	assert.Equal(t, "invalid_argument", errMsg["code"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	readMessage(t, conn, "pong")
}

// gatedAnalyzer holds each repository's analysis until its gate is closed,
// ignoring cancellation so late results still arrive.
type gatedAnalyzer struct {
	gates    map[string]chan struct{}
	returned map[string]chan struct{}
	nodes    map[string]int
}

func newGatedAnalyzer(nodes map[string]int) *gatedAnalyzer {
	g := &gatedAnalyzer{
		gates:    make(map[string]chan struct{}),
		returned: make(map[string]chan struct{}),
		nodes:    nodes,
	}
	for name := range nodes {
		g.gates[name] = make(chan struct{})
		g.returned[name] = make(chan struct{})
	}
	return g
}

func (g *gatedAnalyzer) Analyze(_ context.Context, req analysis.Request) (formatters.AnalyzeResponse, error) {
	name := req.RepoURL
	defer close(g.returned[name])
	<-g.gates[name]

	resp := formatters.AnalyzeResponse{RepoName: name, RepoURL: name}
	for i := 0; i < g.nodes[name]; i++ {
		id := fmt.Sprintf("m%d.py", i)
		resp.Nodes = append(resp.Nodes, formatters.NodeData{ID: id, Name: id, Path: id, LOC: 1, Complexity: 1, Language: "python", Imports: []string{}, Size: 9})
	}
	return resp, nil
}

func TestLayoutWebSocket_NewerAnalyzeSupersedesOlder(t *testing.T) {
	analyzer := newGatedAnalyzer(map[string]int{"slow": 1, "fast": 2})
	ts := httptest.NewServer(newTestServer(analyzer))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/layout/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn, "ready")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "analyze", "repo_url": "slow"}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "analyze", "repo_url": "fast"}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	readMessage(t, conn, "pong")

	close(analyzer.gates["fast"])
	analyzed := readMessage(t, conn, "analyzed")
	assert.Equal(t, "fast", analyzed["repo_name"])
	frame := readMessage(t, conn, "frame")
	assert.Equal(t, float64(1), frame["generation"])
	assert.Len(t, frame["nodes"], 2)

	close(analyzer.gates["slow"])
	<-analyzer.returned["slow"]

	// Anything the stale result produced would arrive within this window.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		assert.NotEqual(t, "analyzed", msg["type"], "superseded analysis was delivered")
		assert.NotEqual(t, "error", msg["type"])
		if msg["type"] == "frame" {
			assert.Equal(t, float64(1), msg["generation"])
			assert.Len(t, msg["nodes"], 2)
		}
	}
}
