package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horizonengine/harness/internal/jobs"
	"github.com/horizonengine/harness/internal/physics"
	"github.com/horizonengine/harness/internal/ui"
)

func newDemo(t *testing.T, count int) (*Particles, *physics.Headless) {
	t.Helper()
	log := zap.NewNop()
	s := jobs.NewScheduler(log)
	require.NoError(t, s.Init(4, 16, 16*jobs.StackBytesPerFiber))
	t.Cleanup(s.Shutdown)
	p := physics.NewHeadless(log)
	require.NoError(t, p.Init())
	t.Cleanup(p.Shutdown)
	return New(s, p, count, log), p
}

func TestParticles_StayInsideUnitSquare(t *testing.T) {
	d, p := newDemo(t, 1000)
	require.NoError(t, d.Setup())

	for i := 0; i < 200; i++ {
		d.OnUpdate(1.0 / 60)
	}
	for i, pt := range d.particles {
		require.True(t, pt.x >= 0 && pt.x <= 1, "particle %d x=%f", i, pt.x)
		require.True(t, pt.y >= 0 && pt.y <= 1, "particle %d y=%f", i, pt.y)
	}
	assert.Equal(t, uint64(200), p.Steps())
	assert.False(t, d.failed)
}

func TestParticles_UI(t *testing.T) {
	d, _ := newDemo(t, 10)
	require.NoError(t, d.Setup())
	d.OnUpdate(0.5)
	d.OnRender()

	rec := ui.NewRecorder(10, 10)
	d.OnDrawUI(rec)
	assert.Equal(t, []string{"particles: 10", "sim time: 0.50s"}, rec.Texts())
	assert.Equal(t, uint64(1), d.Rendered())

	d.Clear()
	assert.Empty(t, d.particles)
}

func TestParticles_UIGroupsLargeCounts(t *testing.T) {
	d, _ := newDemo(t, 4096)
	require.NoError(t, d.Setup())

	rec := ui.NewRecorder(10, 10)
	d.OnDrawUI(rec)
	assert.Equal(t, "particles: 4,096", rec.Texts()[0])
}

func TestParticles_SetupRequiresPhysics(t *testing.T) {
	log := zap.NewNop()
	d := New(jobs.NewScheduler(log), physics.NewHeadless(log), 1, log)
	assert.ErrorIs(t, d.Setup(), physics.ErrNotInitialized)
}

func TestIntegrate_Bounces(t *testing.T) {
	p := particle{x: 0.99, y: 0.5, vx: 2}
	integrate(&p, 0.01)
	assert.InDelta(t, 0.99, p.x, 1e-5)
	assert.Less(t, p.vx, float32(0))
}
