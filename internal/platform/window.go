// Package platform defines the windowing contract consumed by the engine and
// a headless backend that drives it from a scripted event stream.
package platform

// WindowState is the presentation state reported by a window.
type WindowState int

const (
	StateActive WindowState = iota
	StateMinimized
)

func (s WindowState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateMinimized:
		return "minimized"
	}
	return "unknown"
}

// WindowFlags are creation flags.
type WindowFlags uint32

const (
	FlagResizable WindowFlags = 1 << iota
)

type WindowConfig struct {
	Width  uint32
	Height uint32
	Title  string
	Flags  WindowFlags
}

// Window is a platform window. All methods are called from the main loop
// goroutine.
type Window interface {
	ProcessEvents()
	ShouldClose() bool
	State() WindowState
	Width() uint32
	Height() uint32
	NativeHandle() uint64
	Close()
}

// Backend is the windowing system.
type Backend interface {
	Init() error
	Shutdown()
	CreateWindow(cfg WindowConfig) (Window, error)
	// SetInputContext routes input polling to w.
	SetInputContext(w Window)
}
