// Package surface binds a platform window to a render swap chain and keeps
// the swap chain extent in step with the window's client area.
package surface

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/horizonengine/harness/internal/platform"
	"github.com/horizonengine/harness/internal/render"
)

var ErrDestroyed = errors.New("presentation surface destroyed")

// Surface owns a window and the swap chain presenting into it. The cached
// extent always equals the swap chain's last negotiated size; the requested
// size is the live window size that negotiation started from.
type Surface struct {
	window    platform.Window
	backend   render.Backend
	swapChain render.SwapChain
	width     uint32
	height    uint32
	reqWidth  uint32
	reqHeight uint32
	destroyed bool
	log       *zap.Logger
}

// Create opens a window, routes input to it and creates a swap chain on the
// device mask.
func Create(ws platform.Backend, rb render.Backend, mask render.DeviceMask, cfg platform.WindowConfig, log *zap.Logger) (*Surface, error) {
	win, err := ws.CreateWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	ws.SetInputContext(win)

	sc, err := rb.CreateSwapChain(mask, win.NativeHandle())
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("create swap chain: %w", err)
	}
	s := &Surface{
		window:    win,
		backend:   rb,
		swapChain: sc,
		width:     win.Width(),
		height:    win.Height(),
		reqWidth:  win.Width(),
		reqHeight: win.Height(),
		log:       log,
	}
	log.Info("presentation surface created",
		zap.Uint32("width", s.width),
		zap.Uint32("height", s.height),
		zap.Uint32("device_mask", uint32(mask)))
	return s, nil
}

func (s *Surface) Window() platform.Window     { return s.window }
func (s *Surface) SwapChain() render.SwapChain { return s.swapChain }

// Size returns the cached swap chain extent.
func (s *Surface) Size() (width, height uint32) { return s.width, s.height }

// Minimized reports whether the window currently has no drawable area.
func (s *Surface) Minimized() bool { return s.window.State() == platform.StateMinimized }

// Reconcile resizes the swap chain when the window's live size differs from
// the cached extent. It reports whether a resize was issued.
func (s *Surface) Reconcile() (bool, error) {
	return s.ReconcileTo(s.window.Width(), s.window.Height())
}

// ReconcileTo is Reconcile against an explicit live size. A zero extent is
// never applied since it cannot back a swap chain. A size already requested
// is not requested again, even when the backend negotiated it down.
func (s *Surface) ReconcileTo(width, height uint32) (bool, error) {
	if s.destroyed {
		return false, ErrDestroyed
	}
	if width == s.reqWidth && height == s.reqHeight {
		return false, nil
	}
	if width == 0 || height == 0 {
		return false, nil
	}
	w, h := width, height
	if err := s.backend.ResizeSwapChain(s.swapChain, &w, &h); err != nil {
		return false, fmt.Errorf("resize swap chain to %dx%d: %w", width, height, err)
	}
	s.log.Debug("swap chain reconciled",
		zap.Uint32("from_width", s.width),
		zap.Uint32("from_height", s.height),
		zap.Uint32("width", w),
		zap.Uint32("height", h))
	s.width, s.height = w, h
	s.reqWidth, s.reqHeight = width, height
	return true, nil
}

// Present submits the swap chain for presentation.
func (s *Surface) Present() error {
	if s.destroyed {
		return ErrDestroyed
	}
	return s.backend.PresentSwapChain(s.swapChain)
}

// Destroy releases the swap chain, then the window. Safe to call twice.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.backend.DestroySwapChain(s.swapChain)
	s.window.Close()
}
