package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/forkpool/internal/algorithms"
	"github.com/utkarsh5026/forkpool/internal/cpu"
	"github.com/utkarsh5026/forkpool/internal/types"
	"golang.org/x/time/rate"
)

// WorkerState is the scheduler-loop state of a worker.
type WorkerState int32

const (
	// StateRunning means the worker is executing a job from its own deque,
	// the injector, or a peer.
	StateRunning WorkerState = iota
	// StateSeeking means the worker found nothing on its last search and is
	// backing off before probing again.
	StateSeeking
	// StateTerminated means the worker loop has exited after shutdown.
	StateTerminated
)

func (s WorkerState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSeeking:
		return "seeking"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

type workerCounters struct {
	executed atomic.Uint64
	stolen   atomic.Uint64
	injected atomic.Uint64
	panicked atomic.Uint64
}

// Worker owns one deque and runs the work-stealing loop on its own goroutine.
//
// Push, Pop, Execute and WaitUntil are owner operations: they may only be
// called from the goroutine running this worker, which in practice means from
// inside a job the worker is executing.
type Worker struct {
	index    int
	registry *Registry
	deque    *Deque
	idler    *algorithms.Idler
	rng      uint64 // xorshift state, owner only
	gid      atomic.Uint64
	state    atomic.Int32
	stats    workerCounters
	trace    rate.Sometimes
}

func newWorker(index int, r *Registry) *Worker {
	conf := r.conf
	w := &Worker{
		index:    index,
		registry: r,
		deque:    NewDeque(conf.DequeCapacity),
		rng:      uint64(time.Now().UnixNano()) + uint64(index)*0x9E3779B97F4A7C15 | 1, // #nosec G115 -- seed only
		trace:    rate.Sometimes{Interval: time.Second},
	}

	sleep := algorithms.NewSleepStrategy(conf.Backoff, conf.BackoffInitial, conf.BackoffMax, conf.JitterFactor)
	w.idler = algorithms.NewIdler(conf.SpinLimit, conf.YieldLimit, sleep)
	w.idler.SetSleeper(r.wake.sleep)
	return w
}

// Index returns the worker's position in the registry, in [0, NumWorkers).
func (w *Worker) Index() int {
	return w.index
}

func (w *Worker) Registry() *Registry {
	return w.registry
}

func (w *Worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

func (w *Worker) setState(s WorkerState) {
	w.state.Store(int32(s))
}

// Push makes j available to this worker and to thieves.
func (w *Worker) Push(j *Job) {
	w.deque.Push(j)
	w.registry.wake.notify()
}

// Pop takes back the most recently pushed job, or nil if thieves emptied the deque.
func (w *Worker) Pop() *Job {
	return w.deque.Pop()
}

// Execute runs j on this worker.
func (w *Worker) Execute(j *Job) {
	w.stats.executed.Add(1)
	j.execute(w)
}

// WaitUntil keeps this worker busy until latch is set: local jobs first, then
// injected jobs, then jobs stolen from peers, backing off when none exist.
func (w *Worker) WaitUntil(latch types.Signal) {
	for !latch.Probe() {
		if j := w.findWork(); j != nil {
			w.setState(StateRunning)
			w.idler.Reset()
			w.Execute(j)
			continue
		}
		w.idle()
	}
	w.setState(StateRunning)
	w.idler.Reset()
}

func (w *Worker) findWork() *Job {
	if j := w.deque.Pop(); j != nil {
		return j
	}

	if j := w.registry.injector.pop(); j != nil {
		w.stats.injected.Add(1)
		return j
	}

	return w.steal()
}

// steal probes every peer once, starting from a random victim.
func (w *Worker) steal() *Job {
	peers := w.registry.workers
	n := len(peers)
	if n <= 1 {
		return nil
	}

	start := int(w.nextRandom() % uint64(n)) // #nosec G115 -- n is positive
	for i := range n {
		victim := peers[(start+i)%n]
		if victim == w {
			continue
		}

		if j := victim.deque.Steal(); j != nil {
			w.stats.stolen.Add(1)
			debugLog("worker %d stole from worker %d", w.index, victim.index)
			return j
		}
	}

	return nil
}

// nextRandom is a xorshift64 step.
func (w *Worker) nextRandom() uint64 {
	x := w.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	w.rng = x
	return x
}

func (w *Worker) idle() {
	w.setState(StateSeeking)
	if w.idler.Idle() == algorithms.PhaseSleep {
		w.trace.Do(func() {
			debugLog("worker %d idle: misses=%d", w.index, w.idler.Misses())
		})
	}
}

// RecordPanic counts a panic raised by a closure on this worker and reports it
// to the configured handler. Re-raised panics from nested joins should not be
// recorded again.
func (w *Worker) RecordPanic(value any, stack []byte) {
	w.stats.panicked.Add(1)
	if h := w.registry.conf.PanicHandler; h != nil {
		h(w.index, value, stack)
	}
}

// run is the worker loop: execute everything reachable, back off when nothing
// is, and exit once shutdown has begun and a full search comes back empty.
func (w *Worker) run() error {
	conf := w.registry.conf
	w.gid.Store(goroutineID())

	if conf.PinWorkers {
		release, err := cpu.Pin(w.index)
		defer release()
		if err != nil {
			w.registry.logf("worker %d: cpu pinning failed: %v", w.index, err)
		}
	}

	if conf.OnWorkerStart != nil {
		conf.OnWorkerStart(w.index)
	}

	defer func() {
		w.setState(StateTerminated)
		if conf.OnWorkerStop != nil {
			conf.OnWorkerStop(w.index)
		}
	}()

	for {
		// Read the flag before searching: any job injected before shutdown
		// began is then guaranteed to be visible to the search below.
		closing := w.registry.closing.Load()

		if j := w.findWork(); j != nil {
			w.setState(StateRunning)
			w.idler.Reset()
			w.Execute(j)
			continue
		}

		if closing {
			return nil
		}

		w.idle()
	}
}

// Stats returns a snapshot of this worker's counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Index:    w.index,
		State:    w.State(),
		Executed: w.stats.executed.Load(),
		Stolen:   w.stats.stolen.Load(),
		Injected: w.stats.injected.Load(),
		Panicked: w.stats.panicked.Load(),
		Queued:   w.deque.Len(),
	}
}
