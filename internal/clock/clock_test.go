package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	t time.Time
}

func (f *fakeSource) now() time.Time { return f.t }

func (f *fakeSource) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestFrame_TickMeasuresSimulatedDelay(t *testing.T) {
	src := &fakeSource{t: time.Unix(1000, 0)}
	c := NewWithSource(src.now)

	src.advance(16 * time.Millisecond)
	assert.InDelta(t, 0.016, c.Tick(), 1e-6)

	src.advance(250 * time.Millisecond)
	assert.InDelta(t, 0.25, c.Tick(), 1e-6)
}

func TestFrame_TickWithoutDelayIsZero(t *testing.T) {
	src := &fakeSource{t: time.Unix(1000, 0)}
	c := NewWithSource(src.now)
	assert.Equal(t, float32(0), c.Tick())
	assert.Equal(t, float32(0), c.Tick())
}

func TestFrame_NeverNegative(t *testing.T) {
	src := &fakeSource{t: time.Unix(1000, 0)}
	c := NewWithSource(src.now)

	src.advance(-time.Second)
	assert.Equal(t, float32(0), c.Tick())

	// the stored timestamp moved back with the source
	src.advance(time.Second)
	assert.InDelta(t, 1.0, c.Tick(), 1e-6)
}

func TestFrame_RealTime(t *testing.T) {
	c := New()
	c.Tick()
	time.Sleep(20 * time.Millisecond)
	d := c.Tick()
	assert.GreaterOrEqual(t, d, float32(0.019))
	assert.Less(t, d, float32(0.5))
}
