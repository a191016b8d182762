package engine

import "github.com/horizonengine/harness/internal/ui"

// Application is implemented by each example. The engine calls Setup once
// after Init, the per-frame hooks from the main loop, and Clear before Exit.
type Application interface {
	Setup() error
	Clear()
	OnUpdate(dt float32)
	OnDrawUI(c ui.Canvas)
	OnRender()
}

// BaseApp provides no-op hooks for embedding.
type BaseApp struct{}

func (BaseApp) Setup() error       { return nil }
func (BaseApp) Clear()             {}
func (BaseApp) OnUpdate(float32)   {}
func (BaseApp) OnDrawUI(ui.Canvas) {}
func (BaseApp) OnRender()          {}
