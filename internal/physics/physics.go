// Package physics holds the physics backend contract and a headless
// implementation that integrates point bodies.
package physics

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrNotInitialized = errors.New("physics backend not initialized")

// Backend is the physics engine lifecycle consumed at startup.
type Backend interface {
	Init() error
	Shutdown()
}

// Body is a point mass with constant velocity.
type Body struct {
	X, Y   float32
	VX, VY float32
}

// Headless integrates bodies with explicit Euler steps.
type Headless struct {
	mu      sync.Mutex
	running bool
	bodies  []Body
	steps   uint64
	log     *zap.Logger
}

func NewHeadless(log *zap.Logger) *Headless {
	return &Headless{log: log}
}

func (h *Headless) Init() error {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()
	h.log.Debug("physics initialized")
	return nil
}

func (h *Headless) Shutdown() {
	h.mu.Lock()
	h.running = false
	h.bodies = nil
	h.mu.Unlock()
	h.log.Debug("physics shut down")
}

// Add inserts a body and returns its index.
func (h *Headless) Add(b Body) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return 0, ErrNotInitialized
	}
	h.bodies = append(h.bodies, b)
	return len(h.bodies) - 1, nil
}

// Step advances every body by dt seconds.
func (h *Headless) Step(dt float32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return ErrNotInitialized
	}
	for i := range h.bodies {
		b := &h.bodies[i]
		b.X += b.VX * dt
		b.Y += b.VY * dt
	}
	h.steps++
	return nil
}

// Body returns a copy of body i.
func (h *Headless) Body(i int) (Body, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.bodies) {
		return Body{}, false
	}
	return h.bodies[i], true
}

func (h *Headless) Steps() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.steps
}
