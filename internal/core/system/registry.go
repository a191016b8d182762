package system

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Registry starts subsystems in stage order and stops them in exact reverse.
// Only subsystems whose Init succeeded are ever shut down.
type Registry struct {
	systems []Subsystem
	sorted  bool
	live    []Subsystem
	log     *zap.Logger

	// OnStarted is called after each successful Init with its latency.
	OnStarted func(name string, took time.Duration)
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		systems: make([]Subsystem, 0, 8),
		log:     log,
	}
}

// Register adds a subsystem. Registration order breaks ties within a stage.
// Registering after StartAll has no effect on the running set.
func (r *Registry) Register(s Subsystem) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// StartAll initializes every registered subsystem in stage order. The first
// failure stops the already-started subsystems in reverse and is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	if len(r.live) > 0 {
		return fmt.Errorf("subsystems already started")
	}
	r.ensureSorted()
	for _, s := range r.systems {
		if err := ctx.Err(); err != nil {
			r.StopAll()
			return fmt.Errorf("start %s: %w", s.Name(), err)
		}
		start := time.Now()
		if err := s.Init(ctx); err != nil {
			r.log.Error("subsystem init failed",
				zap.String("subsystem", s.Name()),
				zap.Stringer("stage", s.Stage()),
				zap.Error(err))
			r.StopAll()
			return fmt.Errorf("start %s: %w", s.Name(), err)
		}
		took := time.Since(start)
		r.live = append(r.live, s)
		r.log.Debug("subsystem started",
			zap.String("subsystem", s.Name()),
			zap.Stringer("stage", s.Stage()),
			zap.Duration("took", took))
		if r.OnStarted != nil {
			r.OnStarted(s.Name(), took)
		}
	}
	return nil
}

// StopAll shuts down live subsystems, last started first. Safe to call twice.
func (r *Registry) StopAll() {
	for i := len(r.live) - 1; i >= 0; i-- {
		s := r.live[i]
		s.Shutdown()
		r.log.Debug("subsystem stopped", zap.String("subsystem", s.Name()))
	}
	r.live = r.live[:0]
}

// Live returns the names of started subsystems in init order.
func (r *Registry) Live() []string {
	names := make([]string, len(r.live))
	for i, s := range r.live {
		names[i] = s.Name()
	}
	return names
}

func (r *Registry) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Stage() < r.systems[j].Stage()
		})
		r.sorted = true
	}
}
