package platform

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/horizonengine/harness/internal/core/event"
)

var ErrBackendNotInitialized = errors.New("windowing backend not initialized")

// Headless is a windowing backend without a display. Windows it creates
// change state only through their event bus, fed by an EventScript or by
// the Inject helpers.
type Headless struct {
	mu      sync.Mutex
	running bool
	script  *EventScript
	input   Window
	nextID  atomic.Uint64
	windows []*HeadlessWindow
	log     *zap.Logger
}

// NewHeadless creates a backend. Every window it creates replays script
// (which may be nil).
func NewHeadless(script *EventScript, log *zap.Logger) *Headless {
	return &Headless{script: script, log: log}
}

func (h *Headless) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = true
	h.log.Debug("headless windowing initialized")
	return nil
}

func (h *Headless) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.windows {
		w.Close()
	}
	h.windows = nil
	h.input = nil
	h.running = false
}

func (h *Headless) CreateWindow(cfg WindowConfig) (Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return nil, ErrBackendNotInitialized
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("create window %q: zero extent %dx%d", cfg.Title, cfg.Width, cfg.Height)
	}
	w := newHeadlessWindow(h.nextID.Add(1), cfg, h.script)
	h.windows = append(h.windows, w)
	h.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Uint32("width", cfg.Width),
		zap.Uint32("height", cfg.Height))
	return w, nil
}

func (h *Headless) SetInputContext(w Window) {
	h.mu.Lock()
	h.input = w
	h.mu.Unlock()
}

// InputContext returns the window input is routed to.
func (h *Headless) InputContext() Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.input
}

// HeadlessWindow is a Window whose state is driven by events.
type HeadlessWindow struct {
	handle    uint64
	title     string
	resizable bool
	bus       *event.Bus
	cursor    cursor
	closeDone bool

	width       uint32
	height      uint32
	state       WindowState
	shouldClose bool
	closed      bool
	polls       int
}

func newHeadlessWindow(handle uint64, cfg WindowConfig, script *EventScript) *HeadlessWindow {
	w := &HeadlessWindow{
		handle:    handle,
		title:     cfg.Title,
		resizable: cfg.Flags&FlagResizable != 0,
		bus:       event.NewBus(),
		cursor:    cursor{script: script},
		width:     cfg.Width,
		height:    cfg.Height,
	}
	if script != nil {
		w.closeDone = script.CloseWhenDone
	}
	event.Subscribe(w.bus, func(ev event.WindowResized) {
		if w.resizable {
			w.width, w.height = ev.Width, ev.Height
		}
	})
	event.Subscribe(w.bus, func(event.WindowMinimized) { w.state = StateMinimized })
	event.Subscribe(w.bus, func(event.WindowRestored) { w.state = StateActive })
	event.Subscribe(w.bus, func(event.WindowCloseRequested) { w.shouldClose = true })
	return w
}

// Events exposes the window's bus so callers can observe window events.
func (w *HeadlessWindow) Events() *event.Bus { return w.bus }

func (w *HeadlessWindow) ProcessEvents() {
	if w.closed {
		return
	}
	w.polls++
	if !w.cursor.next(w.bus) && w.closeDone {
		event.Emit(w.bus, event.WindowCloseRequested{})
	}
	w.bus.Pump()
}

func (w *HeadlessWindow) ShouldClose() bool    { return w.shouldClose || w.closed }
func (w *HeadlessWindow) State() WindowState   { return w.state }
func (w *HeadlessWindow) Width() uint32        { return w.width }
func (w *HeadlessWindow) Height() uint32       { return w.height }
func (w *HeadlessWindow) NativeHandle() uint64 { return w.handle }
func (w *HeadlessWindow) Title() string        { return w.title }

// Polls returns how many times ProcessEvents ran.
func (w *HeadlessWindow) Polls() int { return w.polls }

func (w *HeadlessWindow) Close() { w.closed = true }

// Inject helpers queue events for the next ProcessEvents. They are safe to
// call from any goroutine.

func (w *HeadlessWindow) InjectResize(width, height uint32) {
	event.Emit(w.bus, event.WindowResized{Width: width, Height: height})
}

func (w *HeadlessWindow) InjectMinimize() { event.Emit(w.bus, event.WindowMinimized{}) }
func (w *HeadlessWindow) InjectRestore()  { event.Emit(w.bus, event.WindowRestored{}) }
func (w *HeadlessWindow) InjectClose()    { event.Emit(w.bus, event.WindowCloseRequested{}) }
