package pool

import (
	"github.com/utkarsh5026/forkpool/internal/scheduler"
)

type (
	// Stats is a point-in-time snapshot of a pool's counters.
	Stats = scheduler.Stats
	// WorkerStats is the per-worker part of Stats.
	WorkerStats = scheduler.WorkerStats
	// WorkerState is the scheduler-loop state reported in WorkerStats.
	WorkerState = scheduler.WorkerState
)

const (
	StateRunning    = scheduler.StateRunning
	StateSeeking    = scheduler.StateSeeking
	StateTerminated = scheduler.StateTerminated
)

// Scope is the handle through which a computation reaches a pool.
//
// *Pool is the Scope for callers outside the pool. Closures run by the pool
// receive the Scope of the worker executing them, which nested Join and Run
// calls should use so that the work lands on that worker's own deque without
// a lookup.
type Scope interface {
	// Pool returns the pool this scope belongs to.
	Pool() *Pool

	// WorkerIndex returns the index of the executing worker, or -1 when the
	// scope is the pool itself.
	WorkerIndex() int

	worker() *scheduler.Worker
}

// Pool is a fixed-size set of work-stealing workers.
//
// A Pool must be closed with Close when no longer needed. The zero value is
// not usable; create pools with New.
type Pool struct {
	registry *scheduler.Registry
	scopes   []*workerScope
}

// New creates a pool with n workers and starts them.
// It returns an error matching ErrInvalidParallelism when n < 1.
//
// Example:
//
//	p, err := pool.New(8, pool.WithIdleBackoff(pool.BackoffJittered, 0, 0))
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
func New(n int, opts ...Option) (*Pool, error) {
	registry, err := scheduler.NewRegistry(createConfig(n, opts...))
	if err != nil {
		return nil, err
	}

	p := &Pool{
		registry: registry,
		scopes:   make([]*workerScope, n),
	}
	for i := range n {
		p.scopes[i] = &workerScope{pool: p, w: registry.Worker(i)}
	}

	debugLog("pool created with %d workers", n)
	return p, nil
}

// Size returns the number of workers, fixed at construction.
func (p *Pool) Size() int {
	return p.registry.NumWorkers()
}

// SpecSize returns the worker count the pool was requested with. Pools never
// resize, so this always equals Size.
func (p *Pool) SpecSize() int {
	return len(p.scopes)
}

// Pool returns p, making *Pool the Scope of callers outside the pool.
func (p *Pool) Pool() *Pool {
	return p
}

// WorkerIndex returns -1: a *Pool scope never runs on a worker.
func (p *Pool) WorkerIndex() int {
	return -1
}

func (p *Pool) worker() *scheduler.Worker {
	return nil
}

// Close stops accepting joins from outside the pool and waits until every
// worker has drained its queue and exited. Joins already submitted complete
// normally. Close is idempotent.
//
// Close must not be called from a closure running on the pool.
func (p *Pool) Close() error {
	return p.registry.Close()
}

// Done returns a channel closed once Close has finished.
func (p *Pool) Done() <-chan struct{} {
	return p.registry.Done()
}

// Stats returns per-worker and total counters.
func (p *Pool) Stats() Stats {
	return p.registry.Stats()
}

func (p *Pool) scopeOf(w *scheduler.Worker) *workerScope {
	return p.scopes[w.Index()]
}

// workerScope is the Scope handed to closures executing on worker w.
type workerScope struct {
	pool *Pool
	w    *scheduler.Worker
}

func (s *workerScope) Pool() *Pool {
	return s.pool
}

func (s *workerScope) WorkerIndex() int {
	return s.w.Index()
}

func (s *workerScope) worker() *scheduler.Worker {
	return s.w
}
