package system

import "context"

// Stage defines startup ordering. Shutdown runs in exact reverse.
type Stage int

const (
	StageLog           Stage = iota // 0: log system
	StageJobs                       // 1: fiber job scheduler
	StageWindowing                  // 2: windowing backend
	StagePhysics                    // 3: physics backend
	StageRender                     // 4: render backend
	StageRenderDevices              // 5: physical device enumeration + primary device
	StageAudio                      // 6: audio engine
)

var stageNames = [...]string{"log", "jobs", "windowing", "physics", "render", "render-devices", "audio"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Subsystem is the lifecycle interface every engine service implements.
type Subsystem interface {
	Name() string
	Stage() Stage
	Init(ctx context.Context) error
	Shutdown()
}

// Func adapts a pair of closures into a Subsystem.
type Func struct {
	ID     string
	At     Stage
	OnInit func(ctx context.Context) error
	OnStop func()
}

func (f *Func) Name() string { return f.ID }
func (f *Func) Stage() Stage { return f.At }

func (f *Func) Init(ctx context.Context) error {
	if f.OnInit == nil {
		return nil
	}
	return f.OnInit(ctx)
}

func (f *Func) Shutdown() {
	if f.OnStop != nil {
		f.OnStop()
	}
}
