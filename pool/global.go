package pool

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// EnvNumWorkers names the environment variable consulted for the global
// pool's size when ConfigureParallelism was not called.
const EnvNumWorkers = "FORKPOOL_NUM_WORKERS"

var global struct {
	mu         sync.Mutex
	pool       atomic.Pointer[Pool]
	configured int
}

// ConfigureParallelism fixes the size of the global pool. It must be called
// before the first use of Global; afterwards it returns ErrGlobalPoolStarted
// and changes nothing. n < 1 returns ErrInvalidParallelism.
func ConfigureParallelism(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidParallelism, n)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.pool.Load() != nil {
		return ErrGlobalPoolStarted
	}

	global.configured = n
	return nil
}

// Global returns the process-wide pool, creating it on first use. The global
// pool is never closed.
func Global() *Pool {
	if p := global.pool.Load(); p != nil {
		return p
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if p := global.pool.Load(); p != nil {
		return p
	}

	n := globalSize()
	p, err := New(n)
	if err != nil {
		// globalSize never returns less than 1.
		panic(fmt.Sprintf("forkpool: creating global pool of %d workers: %v", n, err))
	}

	global.pool.Store(p)
	debugLog("global pool started with %d workers", n)
	return p
}

// GlobalJoin is Join on the global pool, for callers outside any pool.
func GlobalJoin[A, B any](f func(Scope) A, g func(Scope) B) (A, B) {
	return Join(Global(), f, g)
}

// globalSize resolves the global pool size: explicit configuration, then the
// environment, then GOMAXPROCS. Must be called with global.mu held.
func globalSize() int {
	if global.configured > 0 {
		return global.configured
	}

	if v := os.Getenv(EnvNumWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
		debugLog("ignoring %s=%q", EnvNumWorkers, v)
	}

	return max(runtime.GOMAXPROCS(0), 1)
}
