package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RequestExit asks the loop to stop at the top of its next iteration. Safe to
// call from any goroutine.
func (e *Engine) RequestExit() { e.exitRequest.Store(true) }

// ExitRequested reports whether the exit flag is set.
func (e *Engine) ExitRequested() bool { return e.exitRequest.Load() }

// FrameCount is the number of frames that reached present.
func (e *Engine) FrameCount() uint64 { return e.frames.Load() }

// SkippedFrames counts iterations skipped while minimized.
func (e *Engine) SkippedFrames() uint64 { return e.skipped.Load() }

// Run drives the frame loop until the exit flag is observed at the top of an
// iteration. Cancelling ctx sets the flag. It returns 0 on normal exit and 1
// when the render backend fails mid-frame.
func (e *Engine) Run(ctx context.Context) int {
	if !e.initialized {
		e.log.Error("run before init", zap.Error(ErrNotInitialized))
		return 1
	}
	stop := context.AfterFunc(ctx, e.RequestExit)
	defer stop()

	e.log.Info("main loop started",
		zap.Uint32("width", e.cfg.InitialWidth),
		zap.Uint32("height", e.cfg.InitialHeight),
		zap.Bool("overlay", e.cfg.ShowOverlay))

	for !e.ExitRequested() {
		if err := e.iterate(); err != nil {
			e.log.Error("frame failed", zap.Uint64("frame", e.frames.Load()), zap.Error(err))
			return 1
		}
	}
	e.log.Info("main loop finished", zap.Uint64("frames", e.frames.Load()))
	return 0
}

// iterate runs one loop iteration. A minimized window skips everything after
// the event pump.
func (e *Engine) iterate() error {
	win := e.surface.Window()

	win.ProcessEvents()
	if win.ShouldClose() {
		e.RequestExit()
	}

	if e.surface.Minimized() {
		e.skipped.Add(1)
		if m := e.deps.Metrics; m != nil {
			m.FrameSkipped()
		}
		return nil
	}

	resized, err := e.surface.Reconcile()
	if err != nil {
		return err
	}
	if resized {
		e.resizes.Add(1)
		if m := e.deps.Metrics; m != nil {
			m.SwapChainResized()
		}
	}

	dt := e.clock.Tick()
	e.tick(dt)
	if err := e.renderFrame(); err != nil {
		return err
	}

	if err := e.surface.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	n := e.frames.Add(1)
	if m := e.deps.Metrics; m != nil {
		m.FramePresented(dt)
	}
	if e.cfg.MaxFrames > 0 && n >= e.cfg.MaxFrames {
		e.RequestExit()
	}
	return nil
}

func (e *Engine) tick(dt float32) {
	e.overlay.Observe(dt)
	e.app.OnUpdate(dt)
}

func (e *Engine) renderFrame() error {
	if err := e.backend.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	w, h := e.surface.Size()
	e.deps.UI.NewFrame(float32(w), float32(h))

	e.app.OnDrawUI(e.deps.UI)
	if e.cfg.ShowOverlay {
		e.overlay.Draw(e.deps.UI)
	}
	e.app.OnRender()

	if err := e.backend.EndFrame(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	return nil
}
