package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Registry owns a fixed set of workers, their deques, and the global injector.
// The worker slice is written once at construction and only read afterwards,
// so thieves index it without synchronization.
type Registry struct {
	conf     Config
	workers  []*Worker
	injector *injector
	wake     *wakeup

	// admission guards the closing transition: Inject holds it for reading
	// while enqueueing, Close holds it for writing while flipping the flag.
	admission sync.RWMutex
	closing   atomic.Bool

	group     errgroup.Group
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// NewRegistry validates conf, creates conf.Workers workers and starts their
// loops. It returns ErrInvalidParallelism when conf.Workers < 1.
func NewRegistry(conf Config) (*Registry, error) {
	if conf.Workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidParallelism, conf.Workers)
	}

	r := &Registry{
		conf:     conf,
		workers:  make([]*Worker, conf.Workers),
		injector: newInjector(),
		wake:     newWakeup(conf.Workers),
		done:     make(chan struct{}),
	}

	for i := range conf.Workers {
		r.workers[i] = newWorker(i, r)
	}

	for _, w := range r.workers {
		r.group.Go(w.run)
	}

	r.logf("started %d workers", conf.Workers)
	return r, nil
}

// NumWorkers returns the fixed worker count.
func (r *Registry) NumWorkers() int {
	return len(r.workers)
}

// Worker returns the worker at index i.
func (r *Registry) Worker(i int) *Worker {
	return r.workers[i]
}

// CurrentWorker returns the worker whose loop is running on the calling
// goroutine, or nil when the caller is not one of this registry's workers.
// Closures executing on a worker, including jobs it runs while waiting inside
// a join, all see that worker.
func (r *Registry) CurrentWorker() *Worker {
	id := goroutineID()
	for _, w := range r.workers {
		if w.gid.Load() == id {
			return w
		}
	}
	return nil
}

// Inject queues j on the global injector for the first worker that looks.
// It fails with ErrSchedulerClosed once Close has been called.
func (r *Registry) Inject(j *Job) error {
	r.admission.RLock()
	defer r.admission.RUnlock()

	if r.closing.Load() {
		return ErrSchedulerClosed
	}

	r.injector.push(j)
	r.wake.notify()
	return nil
}

// Closing reports whether Close has been called.
func (r *Registry) Closing() bool {
	return r.closing.Load()
}

// Close stops accepting injected work and waits for every worker to reach
// quiescence: shutdown requested, own deque empty, injector empty, and a full
// steal scan found nothing. Jobs admitted before Close still run.
//
// Close must not be called from inside a job; the calling worker could never
// exit and Close would wait forever. Subsequent calls return the first result.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		r.admission.Lock()
		r.closing.Store(true)
		r.admission.Unlock()

		r.wake.close()
		r.closeErr = r.group.Wait()
		close(r.done)
		r.logf("all %d workers stopped", len(r.workers))
	})
	return r.closeErr
}

// Done is closed once every worker has exited.
func (r *Registry) Done() <-chan struct{} {
	return r.done
}

// Stats returns a snapshot of all worker counters.
func (r *Registry) Stats() Stats {
	s := Stats{
		Workers:        make([]WorkerStats, len(r.workers)),
		InjectorQueued: r.injector.len(),
	}

	for i, w := range r.workers {
		ws := w.Stats()
		s.Workers[i] = ws
		s.Executed += ws.Executed
		s.Stolen += ws.Stolen
		s.Injected += ws.Injected
		s.Panicked += ws.Panicked
	}

	return s
}

func (r *Registry) logf(format string, args ...any) {
	if r.conf.Logger != nil {
		r.conf.Logger.Printf(format, args...)
	}
	debugLog(format, args...)
}
