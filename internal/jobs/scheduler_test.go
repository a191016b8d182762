package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSize_StackScalesWithFibers(t *testing.T) {
	s := Size(128, 4)
	assert.Equal(t, Sizing{Workers: 4, Fibers: 128, FiberStackBytes: 128 * 1024}, s)
}

func TestSize_DefaultsToProcessorCount(t *testing.T) {
	s := Size(16, 0)
	assert.Equal(t, ProcessorCount(), s.Workers)
	assert.Positive(t, s.Workers)
	assert.Equal(t, 16*1024, s.FiberStackBytes)
}

func newStarted(t *testing.T, workers, fibers int) *Scheduler {
	t.Helper()
	s := NewScheduler(zap.NewNop())
	require.NoError(t, s.Init(workers, fibers, fibers*StackBytesPerFiber))
	t.Cleanup(s.Shutdown)
	return s
}

func TestScheduler_RunsSubmittedJobs(t *testing.T) {
	s := newStarted(t, 4, 8)
	var n atomic.Int64
	var c Counter
	for i := 0; i < 100; i++ {
		require.NoError(t, s.Submit(context.Background(), &c, func() { n.Add(1) }))
	}
	c.Wait()
	assert.Equal(t, int64(100), n.Load())
}

func TestScheduler_BoundsInFlightJobsByFiberCount(t *testing.T) {
	const fibers = 3
	s := newStarted(t, 8, fibers)

	var inFlight, peak atomic.Int64
	var c Counter
	for i := 0; i < 30; i++ {
		require.NoError(t, s.Submit(context.Background(), &c, func() {
			cur := inFlight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
		}))
	}
	c.Wait()
	assert.LessOrEqual(t, peak.Load(), int64(fibers))
}

func TestScheduler_ParallelForCoversRange(t *testing.T) {
	s := newStarted(t, 4, 16)
	hits := make([]int32, 1000)
	require.NoError(t, s.ParallelFor(context.Background(), len(hits), 64, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	}))
	for i, h := range hits {
		require.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestScheduler_PanickingJobDoesNotKillPool(t *testing.T) {
	s := newStarted(t, 1, 2)
	var c Counter
	require.NoError(t, s.Submit(context.Background(), &c, func() { panic("boom") }))
	var ran atomic.Bool
	require.NoError(t, s.Submit(context.Background(), &c, func() { ran.Store(true) }))
	c.Wait()
	assert.True(t, ran.Load())
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	assert.ErrorIs(t, s.Submit(context.Background(), nil, func() {}), ErrNotInitialized)
	assert.Error(t, s.Init(0, 4, 4096))

	require.NoError(t, s.Init(2, 4, 4096))
	assert.ErrorIs(t, s.Init(2, 4, 4096), ErrAlreadyRunning)
	assert.Equal(t, Sizing{Workers: 2, Fibers: 4, FiberStackBytes: 4096}, s.Sizing())

	s.Shutdown()
	s.Shutdown()
	assert.ErrorIs(t, s.Submit(context.Background(), nil, func() {}), ErrNotInitialized)
}

func TestScheduler_SubmitHonoursContext(t *testing.T) {
	s := newStarted(t, 1, 1)
	release := make(chan struct{})
	var c Counter
	require.NoError(t, s.Submit(context.Background(), &c, func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Submit(ctx, nil, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	c.Wait()
}
