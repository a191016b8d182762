// Package engine boots the engine subsystems in a fixed order, runs the
// frame loop and tears everything down in reverse.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/horizonengine/harness/internal/audio"
	"github.com/horizonengine/harness/internal/clock"
	coresys "github.com/horizonengine/harness/internal/core/system"
	"github.com/horizonengine/harness/internal/jobs"
	"github.com/horizonengine/harness/internal/physics"
	"github.com/horizonengine/harness/internal/platform"
	"github.com/horizonengine/harness/internal/render"
	"github.com/horizonengine/harness/internal/surface"
	"github.com/horizonengine/harness/internal/telemetry"
	"github.com/horizonengine/harness/internal/ui"
)

var ErrNotInitialized = errors.New("engine not initialized")

// Config is the example's engine configuration.
type Config struct {
	Name          string
	InitialWidth  uint32
	InitialHeight uint32
	ShowOverlay   bool
	OverlayCorner int
	MaxFrames     uint64 // 0 = run until the window closes

	NumFibers int
	Workers   int // 0 = host processor count

	ValidationLayers bool
	DeviceIndex      uint32
	Resizable        bool
}

// JobScheduler is the fiber job system lifecycle.
type JobScheduler interface {
	Init(workers, fibers, fiberStackBytes int) error
	Shutdown()
}

// RenderFactory creates the render backend with the given flags.
type RenderFactory func(flags render.CreateFlags) (render.Backend, error)

// Deps are the collaborators the engine drives.
type Deps struct {
	Log       *zap.Logger
	Jobs      JobScheduler
	Windowing platform.Backend
	Physics   physics.Backend
	Render    RenderFactory
	Audio     audio.Engine
	UI        ui.Layer

	Metrics *telemetry.Collector // optional
	Now     func() time.Time     // optional, frame clock source
}

// Engine is one running example. Create it through Host.NewEngine.
type Engine struct {
	cfg  Config
	deps Deps
	app  Application
	log  *zap.Logger

	registry *coresys.Registry
	backend  render.Backend
	devices  render.DeviceSet
	surface  *surface.Surface
	clock    *clock.Frame
	overlay  *ui.Overlay

	initialized bool
	exitRequest atomic.Bool
	frames      atomic.Uint64
	skipped     atomic.Uint64
	resizes     atomic.Uint64
}

func newEngine(cfg Config, deps Deps, app Application) (*Engine, error) {
	switch {
	case app == nil:
		return nil, errors.New("nil application")
	case deps.Log == nil:
		return nil, errors.New("nil logger")
	case deps.Jobs == nil, deps.Windowing == nil, deps.Physics == nil,
		deps.Render == nil, deps.Audio == nil, deps.UI == nil:
		return nil, errors.New("missing engine collaborator")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	e := &Engine{
		cfg:      cfg,
		deps:     deps,
		app:      app,
		log:      deps.Log,
		registry: coresys.NewRegistry(deps.Log),
		overlay:  ui.NewOverlay(cfg.OverlayCorner),
	}
	if deps.Metrics != nil {
		e.registry.OnStarted = deps.Metrics.SubsystemStarted
	}
	e.registerSubsystems()
	return e, nil
}

// registerSubsystems declares the startup order. The registry stops them in
// exact reverse.
func (e *Engine) registerSubsystems() {
	d := e.deps
	sizing := jobs.Size(e.cfg.NumFibers, e.cfg.Workers)

	e.registry.Register(&coresys.Func{
		ID: "log", At: coresys.StageLog,
		OnInit: func(context.Context) error {
			e.log.Info("log system initialized", zap.String("example", e.cfg.Name))
			return nil
		},
		OnStop: func() { _ = e.log.Sync() },
	})
	e.registry.Register(&coresys.Func{
		ID: "jobs", At: coresys.StageJobs,
		OnInit: func(context.Context) error {
			return d.Jobs.Init(sizing.Workers, sizing.Fibers, sizing.FiberStackBytes)
		},
		OnStop: d.Jobs.Shutdown,
	})
	e.registry.Register(&coresys.Func{
		ID: "windowing", At: coresys.StageWindowing,
		OnInit: func(context.Context) error { return d.Windowing.Init() },
		OnStop: d.Windowing.Shutdown,
	})
	e.registry.Register(&coresys.Func{
		ID: "physics", At: coresys.StagePhysics,
		OnInit: func(context.Context) error { return d.Physics.Init() },
		OnStop: d.Physics.Shutdown,
	})
	e.registry.Register(&coresys.Func{
		ID: "render", At: coresys.StageRender,
		OnInit: func(context.Context) error {
			flags := render.FlagSurface
			if e.cfg.ValidationLayers {
				flags |= render.FlagValidationLayers
			}
			b, err := d.Render(flags)
			if err != nil {
				return err
			}
			e.backend = b
			return nil
		},
		OnStop: func() {
			e.backend.Destroy()
			e.backend = nil
		},
	})
	e.registry.Register(&coresys.Func{
		ID: "render-devices", At: coresys.StageRenderDevices,
		OnInit: func(context.Context) error {
			set, err := render.SelectPrimaryDevice(e.backend, e.cfg.DeviceIndex)
			if err != nil {
				return err
			}
			e.devices = set
			e.log.Info("render device selected",
				zap.Uint32("device", set.PrimaryID),
				zap.Int("available", len(set.Devices)),
				zap.Uint32("mask", uint32(set.PrimaryMask)))
			return nil
		},
		OnStop: func() { e.devices = render.DeviceSet{} },
	})
	e.registry.Register(&coresys.Func{
		ID: "audio", At: coresys.StageAudio,
		OnInit: func(context.Context) error { return d.Audio.Init() },
		OnStop: d.Audio.Shutdown,
	})
}

// Init starts every subsystem, opens the presentation surface and calls the
// application's Setup. Any failure unwinds what was started and is fatal to
// the caller; the main loop must not be entered.
func (e *Engine) Init(ctx context.Context) error {
	if e.initialized {
		return errors.New("engine already initialized")
	}
	if err := e.registry.StartAll(ctx); err != nil {
		return fmt.Errorf("start subsystems: %w", err)
	}

	var flags platform.WindowFlags
	if e.cfg.Resizable {
		flags |= platform.FlagResizable
	}
	s, err := surface.Create(e.deps.Windowing, e.backend, e.devices.PrimaryMask, platform.WindowConfig{
		Width:  e.cfg.InitialWidth,
		Height: e.cfg.InitialHeight,
		Title:  e.cfg.Name,
		Flags:  flags,
	}, e.log)
	if err != nil {
		e.registry.StopAll()
		return fmt.Errorf("presentation surface: %w", err)
	}
	e.surface = s
	e.clock = clock.NewWithSource(e.deps.Now)

	if err := e.app.Setup(); err != nil {
		e.surface.Destroy()
		e.surface = nil
		e.registry.StopAll()
		return fmt.Errorf("application setup: %w", err)
	}
	e.initialized = true
	return nil
}

// Exit clears the application, destroys the surface and stops subsystems in
// reverse start order. Safe to call more than once.
func (e *Engine) Exit() {
	if !e.initialized {
		return
	}
	e.initialized = false
	e.app.Clear()
	e.surface.Destroy()
	e.surface = nil
	e.registry.StopAll()
	e.log.Info("engine exited",
		zap.Uint64("frames", e.frames.Load()),
		zap.Uint64("skipped", e.skipped.Load()),
		zap.Uint64("resizes", e.resizes.Load()))
}

// Surface returns the presentation surface; nil outside Init..Exit.
func (e *Engine) Surface() *surface.Surface { return e.surface }

// Devices returns the selected render device set.
func (e *Engine) Devices() render.DeviceSet { return e.devices }

// Subsystems returns the names of live subsystems in start order.
func (e *Engine) Subsystems() []string { return e.registry.Live() }
