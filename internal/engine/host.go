package engine

import (
	"errors"
	"sync"
)

var (
	ErrInstanceExists = errors.New("engine instance already exists")
	ErrNoInstance     = errors.New("no live engine instance")
)

// Host is the single owner of the engine instance. It hands out at most one
// live Engine at a time.
type Host struct {
	mu   sync.Mutex
	live *Engine
}

// NewEngine constructs the instance. It fails while another one is live.
func (h *Host) NewEngine(cfg Config, deps Deps, app Application) (*Engine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.live != nil {
		return nil, ErrInstanceExists
	}
	e, err := newEngine(cfg, deps, app)
	if err != nil {
		return nil, err
	}
	h.live = e
	return e, nil
}

// Release destroys the live instance. e must be the instance NewEngine
// returned; Exit is called if it has not run yet.
func (h *Host) Release(e *Engine) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.live == nil || h.live != e {
		return ErrNoInstance
	}
	e.Exit()
	h.live = nil
	return nil
}

// Live returns the live instance, or nil.
func (h *Host) Live() *Engine {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}
