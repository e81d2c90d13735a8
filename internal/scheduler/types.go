package scheduler

import (
	"log"
	"time"

	"github.com/utkarsh5026/forkpool/internal/algorithms"
)

const (
	defaultSpinLimit      = 20
	defaultYieldLimit     = 10
	defaultBackoffInitial = 50 * time.Microsecond
	defaultBackoffMax     = time.Millisecond
	defaultJitterFactor   = 0.2
)

// Config holds everything a Registry needs to build and run its workers.
type Config struct {
	// Number of workers, fixed for the registry's lifetime. Must be >= 1.
	Workers int

	// Initial capacity of each worker deque (rounded up to a power of two).
	DequeCapacity int

	// Empty searches spent spinning, then yielding, before an idle worker sleeps.
	SpinLimit  int
	YieldLimit int

	// Sleep curve for idle workers once spinning and yielding are exhausted.
	Backoff        algorithms.BackoffType
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	JitterFactor   float64

	// Lock each worker to an OS thread and pin it to a core.
	PinWorkers bool

	// Hooks called on the worker goroutine when its loop starts and stops.
	OnWorkerStart func(index int)
	OnWorkerStop  func(index int)

	// Called on the executing worker whenever a job panics. The panic is still
	// delivered to whoever joins the job.
	PanicHandler func(index int, value any, stack []byte)

	// Receives lifecycle messages. nil disables logging.
	Logger *log.Logger
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig(workers int) Config {
	return Config{
		Workers:        workers,
		DequeCapacity:  defaultDequeCapacity,
		SpinLimit:      defaultSpinLimit,
		YieldLimit:     defaultYieldLimit,
		Backoff:        algorithms.BackoffExponential,
		BackoffInitial: defaultBackoffInitial,
		BackoffMax:     defaultBackoffMax,
		JitterFactor:   defaultJitterFactor,
	}
}

// WorkerStats is a point-in-time snapshot of one worker's counters.
type WorkerStats struct {
	Index    int
	State    WorkerState
	Executed uint64 // jobs run by this worker, whatever their source
	Stolen   uint64 // jobs taken from a peer's deque
	Injected uint64 // jobs taken from the global injector
	Panicked uint64 // jobs whose closure panicked
	Queued   int    // approximate deque length
}

// Stats aggregates WorkerStats across a registry. Counters are read without a
// global lock, so totals may be slightly inconsistent under load.
type Stats struct {
	Workers        []WorkerStats
	Executed       uint64
	Stolen         uint64
	Injected       uint64
	Panicked       uint64
	InjectorQueued int
}
