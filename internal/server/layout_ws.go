package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LegacyCodeHQ/codegraph/formatters"
	"github.com/LegacyCodeHQ/codegraph/internal/analysis"
	"github.com/LegacyCodeHQ/codegraph/internal/logging"
	"github.com/LegacyCodeHQ/codegraph/viz"
)

const (
	layoutWSWriteWait = 10 * time.Second
	layoutWSPongWait  = 60 * time.Second
	layoutWSPingEvery = (layoutWSPongWait * 9) / 10
)

var layoutWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 16384,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type layoutWSInbound struct {
	Type         string                      `json:"type"`
	Graph        *formatters.AnalyzeResponse `json:"graph,omitempty"`
	RepoURL      string                      `json:"repo_url,omitempty"`
	MaxFiles     int                         `json:"max_files,omitempty"`
	IncludeTests bool                        `json:"include_tests,omitempty"`
	X            float64                     `json:"x"`
	Y            float64                     `json:"y"`
	Term         string                      `json:"term"`
	Width        float64                     `json:"width"`
	Height       float64                     `json:"height"`
}

type layoutWSOutbound struct {
	Type     string `json:"type"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
	RepoName string `json:"repo_name,omitempty"`
}

// handleLayoutWS runs one layout engine per connection. Client input is
// forwarded to the engine; frames are written by a dedicated writer goroutine.
func (s *Server) handleLayoutWS(w http.ResponseWriter, r *http.Request) {
	conn, err := layoutWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	logger := logging.FromContext(ctx, s.logger)

	if err := conn.SetReadDeadline(time.Now().Add(layoutWSPongWait)); err != nil {
		logger.Warn("Layout socket set read deadline failed", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(layoutWSPongWait))
	})

	engineOpts := s.layout
	engineOpts.Logger = logger
	engine := viz.NewEngine(engineOpts)
	defer engine.Close()
	go func() {
		if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Layout engine stopped", "error", err)
		}
	}()

	writeCh := make(chan any, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(layoutWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(layoutWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					cancel()
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(layoutWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case frame := <-engine.Frames():
				pushLayoutWS(writeCh, frame)
			}
		}
	}()

	pushLayoutWS(writeCh, layoutWSOutbound{Type: "ready"})

	analyses := &analysisTracker{}

	for {
		var in layoutWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "":
			pushLayoutWS(writeCh, layoutWSOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
		case "ping":
			pushLayoutWS(writeCh, layoutWSOutbound{Type: "pong"})
		case "graph":
			if in.Graph == nil {
				pushLayoutWS(writeCh, layoutWSOutbound{Type: "error", Code: "invalid_argument", Message: "graph is required"})
				continue
			}
			engine.Load(*in.Graph)
		case "analyze":
			actx, seq := analyses.start(ctx)
			go s.analyzeIntoEngine(actx, seq, analyses, engine, writeCh, in)
		case "pointermove":
			engine.PointerMove(in.X, in.Y)
		case "pointerdown":
			engine.PointerDown(in.X, in.Y)
		case "pointerup":
			engine.PointerUp(in.X, in.Y)
		case "click":
			engine.Click(in.X, in.Y)
		case "search":
			engine.Search(in.Term)
		case "resize":
			engine.Resize(in.Width, in.Height)
		default:
			pushLayoutWS(writeCh, layoutWSOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + in.Type})
		}
	}
}

// analysisTracker keeps at most one analysis per connection current. Starting
// a new one cancels the previous, and results of superseded requests are
// dropped.
type analysisTracker struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func (t *analysisTracker) start(parent context.Context) (context.Context, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.seq++
	t.cancel = cancel
	return ctx, t.seq
}

// deliver runs fn only while seq is the newest request. Holding the lock
// across fn keeps an older result from landing after a newer one.
func (t *analysisTracker) deliver(seq uint64, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.seq {
		return false
	}
	fn()
	return true
}

func (s *Server) analyzeIntoEngine(ctx context.Context, seq uint64, tracker *analysisTracker, engine *viz.Engine, writeCh chan any, in layoutWSInbound) {
	maxFiles := in.MaxFiles
	if maxFiles == 0 {
		maxFiles = s.defaultMaxFiles
	}
	resp, err := s.analyzer.Analyze(ctx, analysis.Request{
		RepoURL:      strings.TrimSpace(in.RepoURL),
		MaxFiles:     maxFiles,
		IncludeTests: in.IncludeTests,
	})
	delivered := tracker.deliver(seq, func() {
		if err != nil {
			code := "internal"
			if analysis.IsClientError(err) {
				code = "invalid_argument"
			}
			pushLayoutWS(writeCh, layoutWSOutbound{Type: "error", Code: code, Message: err.Error()})
			return
		}
		pushLayoutWS(writeCh, layoutWSOutbound{Type: "analyzed", RepoName: resp.RepoName})
		engine.Load(resp)
	})
	if !delivered {
		logging.FromContext(ctx, s.logger).Debug("Dropped superseded analysis", "repo", in.RepoURL)
	}
}

// pushLayoutWS queues out without blocking, dropping the oldest queued message when full.
func pushLayoutWS(writeCh chan any, out any) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
