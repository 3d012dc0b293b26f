package viz

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LegacyCodeHQ/codegraph/formatters"
)

const (
	defaultTickInterval = 16 * time.Millisecond
	defaultWidth        = 960
	defaultHeight       = 600
	eventBuffer         = 64
	frameBuffer         = 8
)

// ErrEngineClosed is returned by Run after Close.
var ErrEngineClosed = errors.New("layout engine closed")

// EngineOptions configures an Engine.
type EngineOptions struct {
	Width  float64
	Height float64
	Params *Params
	// Ticks drives the simulation; nil uses a ticker at TickInterval.
	Ticks        <-chan time.Time
	TickInterval time.Duration
	Host         OverlayHost
	Logger       *slog.Logger
}

type eventKind int

const (
	eventLoad eventKind = iota
	eventPointerMove
	eventPointerDown
	eventPointerUp
	eventClick
	eventSearch
	eventResize
)

type event struct {
	kind  eventKind
	x, y  float64
	term  string
	gen   uint64
	graph formatters.AnalyzeResponse
}

type tick struct {
	gen uint64
}

// Engine runs one visualization: a single goroutine owns the simulation,
// the interaction state and the overlays. Input methods may be called from
// any goroutine; they queue events for the loop.
type Engine struct {
	state        *engineState
	ticks        <-chan time.Time
	tickInterval time.Duration
	logger       *slog.Logger

	generation atomic.Uint64
	events     chan event
	frames     chan Frame
	quit       chan struct{}
	stopped    chan struct{}

	mu        sync.Mutex
	running   bool
	closed    bool
	closeOnce sync.Once
}

// NewEngine creates an engine with an empty dataset. Call Run to start it.
func NewEngine(opts EngineOptions) *Engine {
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}
	params := DefaultParams()
	if opts.Params != nil {
		params = *opts.Params
	}
	interval := opts.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		state:        newEngineState(width, height, params, opts.Host),
		ticks:        opts.Ticks,
		tickInterval: interval,
		logger:       logger,
		events:       make(chan event, eventBuffer),
		frames:       make(chan Frame, frameBuffer),
		quit:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// Frames delivers rendered frames. When the consumer falls behind the oldest
// queued frame is dropped.
func (e *Engine) Frames() <-chan Frame { return e.frames }

// Load replaces the dataset. Ticks scheduled before the call are discarded.
func (e *Engine) Load(resp formatters.AnalyzeResponse) {
	gen := e.generation.Add(1)
	e.send(event{kind: eventLoad, gen: gen, graph: resp})
}

func (e *Engine) PointerMove(x, y float64) { e.send(event{kind: eventPointerMove, x: x, y: y}) }
func (e *Engine) PointerDown(x, y float64) { e.send(event{kind: eventPointerDown, x: x, y: y}) }
func (e *Engine) PointerUp(x, y float64)   { e.send(event{kind: eventPointerUp, x: x, y: y}) }
func (e *Engine) Click(x, y float64)       { e.send(event{kind: eventClick, x: x, y: y}) }
func (e *Engine) Search(term string)       { e.send(event{kind: eventSearch, term: term}) }
func (e *Engine) Resize(width, height float64) {
	e.send(event{kind: eventResize, x: width, y: height})
}

func (e *Engine) send(ev event) {
	select {
	case e.events <- ev:
	case <-e.quit:
	}
}

// Run processes ticks and events until ctx is done or Close is called.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	if e.running {
		e.mu.Unlock()
		return errors.New("layout engine already running")
	}
	e.running = true
	e.mu.Unlock()
	defer close(e.stopped)

	source := e.ticks
	if source == nil {
		ticker := time.NewTicker(e.tickInterval)
		defer ticker.Stop()
		source = ticker.C
	}

	loopDone := make(chan struct{})
	defer close(loopDone)
	tickCh := make(chan tick)
	go e.stampTicks(source, tickCh, loopDone)

	for {
		select {
		case <-ctx.Done():
			e.state.releaseOverlays()
			return ctx.Err()
		case <-e.quit:
			e.state.releaseOverlays()
			return nil
		case ev := <-e.events:
			if e.handle(ev) {
				e.emit()
			}
		case t := <-tickCh:
			if t.gen != e.state.generation {
				e.logger.Debug("Dropping stale layout tick", "tick_generation", t.gen, "generation", e.state.generation)
				continue
			}
			if e.state.tick(t.gen) {
				e.emit()
			}
		}
	}
}

// stampTicks tags each tick with the generation current when it fired.
func (e *Engine) stampTicks(source <-chan time.Time, out chan<- tick, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case _, ok := <-source:
			if !ok {
				return
			}
			t := tick{gen: e.generation.Load()}
			select {
			case out <- t:
			case <-done:
				return
			}
		}
	}
}

func (e *Engine) handle(ev event) bool {
	st := e.state
	switch ev.kind {
	case eventLoad:
		return st.load(ev.graph, ev.gen)
	case eventPointerMove:
		return st.pointerMove(ev.x, ev.y)
	case eventPointerDown:
		return st.pointerDown(ev.x, ev.y)
	case eventPointerUp:
		return st.pointerUp()
	case eventClick:
		return st.click(ev.x, ev.y)
	case eventSearch:
		return st.search(ev.term)
	case eventResize:
		return st.resize(ev.x, ev.y)
	default:
		return false
	}
}

func (e *Engine) emit() {
	f := e.state.frame()
	select {
	case e.frames <- f:
		return
	default:
	}
	select {
	case <-e.frames:
	default:
	}
	select {
	case e.frames <- f:
	default:
	}
}

// Close stops the loop, waits for it to exit and releases every overlay the
// engine created. It is safe to call more than once and before Run.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		wasRunning := e.running
		close(e.quit)
		e.mu.Unlock()

		if wasRunning {
			<-e.stopped
			return
		}
		e.state.releaseOverlays()
	})
	return nil
}
