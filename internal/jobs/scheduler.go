package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var (
	ErrNotInitialized = errors.New("job scheduler not initialized")
	ErrAlreadyRunning = errors.New("job scheduler already running")
)

// Counter tracks a batch of submitted jobs.
type Counter struct {
	wg sync.WaitGroup
}

// Wait blocks until every job submitted against the counter has finished.
func (c *Counter) Wait() { c.wg.Wait() }

type job struct {
	fn      func()
	counter *Counter
}

// Scheduler runs jobs on a fixed set of worker goroutines. At most Fibers
// jobs are in flight at once; further submissions block until a slot frees.
type Scheduler struct {
	mu      sync.RWMutex // write-held only by Init and Shutdown
	sizing  Sizing
	queue   chan job
	fibers  *semaphore.Weighted
	workers *errgroup.Group
	log     *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Init starts the worker pool.
func (s *Scheduler) Init(workers, fibers, fiberStackBytes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue != nil {
		return ErrAlreadyRunning
	}
	if workers <= 0 || fibers <= 0 {
		return fmt.Errorf("invalid job pool sizing: workers=%d fibers=%d", workers, fibers)
	}
	s.sizing = Sizing{Workers: workers, Fibers: fibers, FiberStackBytes: fiberStackBytes}
	s.queue = make(chan job, fibers)
	s.fibers = semaphore.NewWeighted(int64(fibers))
	s.workers = &errgroup.Group{}
	for i := 0; i < workers; i++ {
		queue := s.queue
		s.workers.Go(func() error {
			for j := range queue {
				s.execute(j)
			}
			return nil
		})
	}
	s.log.Info("job system started",
		zap.Int("workers", workers),
		zap.Int("fibers", fibers),
		zap.Int("fiber_stack_bytes", fiberStackBytes))
	return nil
}

// Shutdown waits for queued jobs to drain and stops the workers.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	queue, workers := s.queue, s.workers
	s.queue = nil
	s.mu.Unlock()
	if queue == nil {
		return
	}
	close(queue)
	_ = workers.Wait()
	s.log.Info("job system stopped")
}

// Sizing returns the values the pool was started with.
func (s *Scheduler) Sizing() Sizing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sizing
}

// Submit queues fn on the pool. c may be nil.
func (s *Scheduler) Submit(ctx context.Context, c *Counter, fn func()) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.queue == nil {
		return ErrNotInitialized
	}
	if err := s.fibers.Acquire(ctx, 1); err != nil {
		return err
	}
	if c != nil {
		c.wg.Add(1)
	}
	// queue capacity equals the fiber budget, so this send never blocks
	s.queue <- job{fn: fn, counter: c}
	return nil
}

// ParallelFor splits [0,n) into batches of size batch and runs fn over each
// batch on the pool, returning once all batches finished.
func (s *Scheduler) ParallelFor(ctx context.Context, n, batch int, fn func(lo, hi int)) error {
	if batch <= 0 {
		batch = 1
	}
	var c Counter
	for lo := 0; lo < n; lo += batch {
		hi := min(lo+batch, n)
		lo := lo
		if err := s.Submit(ctx, &c, func() { fn(lo, hi) }); err != nil {
			c.Wait()
			return err
		}
	}
	c.Wait()
	return nil
}

func (s *Scheduler) execute(j job) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job panicked", zap.Any("panic", r))
		}
		s.fibers.Release(1)
		if j.counter != nil {
			j.counter.wg.Done()
		}
	}()
	j.fn()
}
