// Package demo is the built-in example: a particle field integrated on the
// job system each frame.
package demo

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/horizonengine/harness/internal/jobs"
	"github.com/horizonengine/harness/internal/physics"
	"github.com/horizonengine/harness/internal/ui"
)

const (
	gravity   = -9.8
	batchSize = 256
	emitters  = 4
)

type particle struct {
	x, y   float32
	vx, vy float32
}

// Particles bounces particles inside the unit square.
type Particles struct {
	jobs    *jobs.Scheduler
	physics *physics.Headless
	log     *zap.Logger
	p       *message.Printer

	count     int
	seed      int64
	particles []particle
	emitters  []int
	simTime   float32
	rendered  uint64
	failed    bool
}

func New(s *jobs.Scheduler, p *physics.Headless, count int, log *zap.Logger) *Particles {
	return &Particles{
		jobs:    s,
		physics: p,
		count:   count,
		seed:    1,
		log:     log,
		p:       message.NewPrinter(language.English),
	}
}

func (d *Particles) Setup() error {
	rng := rand.New(rand.NewSource(d.seed))
	d.particles = make([]particle, d.count)
	for i := range d.particles {
		d.particles[i] = particle{
			x:  rng.Float32(),
			y:  rng.Float32(),
			vx: rng.Float32() - 0.5,
			vy: rng.Float32() - 0.5,
		}
	}
	d.emitters = d.emitters[:0]
	for i := 0; i < emitters; i++ {
		id, err := d.physics.Add(physics.Body{X: float32(i) / emitters, VX: 0.1})
		if err != nil {
			return fmt.Errorf("add emitter: %w", err)
		}
		d.emitters = append(d.emitters, id)
	}
	d.log.Info("particle demo ready", zap.Int("particles", d.count))
	return nil
}

func (d *Particles) Clear() {
	d.particles = nil
	d.emitters = nil
}

func (d *Particles) OnUpdate(dt float32) {
	d.simTime += dt
	err := d.jobs.ParallelFor(context.Background(), len(d.particles), batchSize, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			integrate(&d.particles[i], dt)
		}
	})
	if err == nil {
		err = d.physics.Step(dt)
	}
	if err != nil && !d.failed {
		d.failed = true
		d.log.Error("particle update failed", zap.Error(err))
	}
}

func (d *Particles) OnDrawUI(c ui.Canvas) {
	if c.Begin("Particles", ui.PanelOptions{BgAlpha: 1}) {
		c.Text(d.p.Sprintf("particles: %d", len(d.particles)))
		c.Text(d.p.Sprintf("sim time: %.2fs", d.simTime))
	}
	c.End()
}

func (d *Particles) OnRender() { d.rendered++ }

// Rendered returns how many frames reached OnRender.
func (d *Particles) Rendered() uint64 { return d.rendered }

func integrate(p *particle, dt float32) {
	p.vy += gravity * dt
	p.x += p.vx * dt
	p.y += p.vy * dt
	if p.x < 0 {
		p.x, p.vx = -p.x, -p.vx
	} else if p.x > 1 {
		p.x, p.vx = 2-p.x, -p.vx
	}
	if p.y < 0 {
		p.y, p.vy = -p.y, -p.vy*0.9
	} else if p.y > 1 {
		p.y, p.vy = 2-p.y, -p.vy
	}
}
