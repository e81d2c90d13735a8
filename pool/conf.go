package pool

import (
	"log"
	"time"

	"github.com/utkarsh5026/forkpool/internal/algorithms"
	"github.com/utkarsh5026/forkpool/internal/scheduler"
)

// BackoffType selects how idle workers space out their sleeps once spinning
// and yielding found nothing.
type BackoffType = algorithms.BackoffType

const (
	BackoffExponential  = algorithms.BackoffExponential
	BackoffJittered     = algorithms.BackoffJittered
	BackoffDecorrelated = algorithms.BackoffDecorrelated
)

// ParseBackoffType maps "exponential", "jittered" or "decorrelated" onto a
// BackoffType. Unknown names report ok == false.
func ParseBackoffType(name string) (BackoffType, bool) {
	return algorithms.ParseBackoffType(name)
}

// Option is a functional option for configuring a Pool.
// Options with out-of-range values are ignored.
type Option func(*scheduler.Config)

// WithDequeCapacity sets the initial capacity of every worker deque. Deques
// grow on demand, so this only avoids early reallocation for wide fan-outs.
func WithDequeCapacity(capacity int) Option {
	return func(cfg *scheduler.Config) {
		if capacity > 0 {
			cfg.DequeCapacity = capacity
		}
	}
}

// WithIdleBackoff selects the sleep curve used by idle workers.
// initial is the first sleep, maxDelay caps every later one.
//
// Example:
//
//	WithIdleBackoff(BackoffJittered, 20*time.Microsecond, 2*time.Millisecond)
func WithIdleBackoff(kind BackoffType, initial, maxDelay time.Duration) Option {
	return func(cfg *scheduler.Config) {
		cfg.Backoff = kind
		if initial > 0 {
			cfg.BackoffInitial = initial
		}
		if maxDelay > 0 {
			cfg.BackoffMax = maxDelay
		}
		cfg.BackoffMax = max(cfg.BackoffMax, cfg.BackoffInitial)
	}
}

// WithJitter sets the jitter fraction used by BackoffJittered, in [0, 1].
func WithJitter(factor float64) Option {
	return func(cfg *scheduler.Config) {
		if factor >= 0 && factor <= 1 {
			cfg.JitterFactor = factor
		}
	}
}

// WithSpinLimit sets how many empty searches an idle worker makes before it
// starts yielding the processor.
func WithSpinLimit(n int) Option {
	return func(cfg *scheduler.Config) {
		if n >= 0 {
			cfg.SpinLimit = n
		}
	}
}

// WithYieldLimit sets how many runtime.Gosched rounds follow spinning before
// an idle worker sleeps.
func WithYieldLimit(n int) Option {
	return func(cfg *scheduler.Config) {
		if n >= 0 {
			cfg.YieldLimit = n
		}
	}
}

// WithPinnedWorkers locks every worker goroutine to an OS thread and, where
// the platform allows it, pins that thread to core index % NumCPU.
func WithPinnedWorkers() Option {
	return func(cfg *scheduler.Config) {
		cfg.PinWorkers = true
	}
}

// WithOnWorkerStart registers a hook run on each worker goroutine before its
// loop starts.
func WithOnWorkerStart(fn func(index int)) Option {
	return func(cfg *scheduler.Config) {
		cfg.OnWorkerStart = fn
	}
}

// WithOnWorkerStop registers a hook run on each worker goroutine after its
// loop exits during Close.
func WithOnWorkerStop(fn func(index int)) Option {
	return func(cfg *scheduler.Config) {
		cfg.OnWorkerStop = fn
	}
}

// WithPanicHandler registers a callback invoked on the worker whenever a
// closure panics. It does not stop the panic from reaching the join. The
// handler must not panic itself.
func WithPanicHandler(fn func(index int, value any, stack []byte)) Option {
	return func(cfg *scheduler.Config) {
		cfg.PanicHandler = fn
	}
}

// WithLogger routes lifecycle messages (start, stop, pinning failures) to l.
func WithLogger(l *log.Logger) Option {
	return func(cfg *scheduler.Config) {
		cfg.Logger = l
	}
}

func createConfig(workers int, opts ...Option) scheduler.Config {
	cfg := scheduler.DefaultConfig(workers)
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
