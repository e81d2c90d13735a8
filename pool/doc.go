// Package pool provides a work-stealing fork/join pool for divide-and-conquer
// parallelism.
//
// A Pool owns a fixed number of workers. Each worker keeps a private deque of
// pending jobs; idle workers steal the oldest job from a random peer. The
// single primitive on top of that is Join, which runs two closures,
// potentially in parallel, and returns both results.
//
// # Basic Usage
//
//	p, err := pool.New(runtime.GOMAXPROCS(0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	a, b := pool.Join(p,
//	    func(pool.Scope) int { return expensive(1) },
//	    func(pool.Scope) int { return expensive(2) },
//	)
//
// # Scopes
//
// Every closure receives a Scope: the handle of the worker executing it. Nested
// joins should go through that scope so that they push straight onto the
// worker's own deque:
//
//	func fib(s pool.Scope, n int) int {
//	    if n < 2 {
//	        return n
//	    }
//	    a, b := pool.Join(s,
//	        func(s pool.Scope) int { return fib(s, n-1) },
//	        func(s pool.Scope) int { return fib(s, n-2) },
//	    )
//	    return a + b
//	}
//
// A Scope is only valid on the goroutine that received it and only until the
// closure returns. Do not hand it to other goroutines.
//
// Calling Join with the *Pool itself from outside the pool is the cold path:
// the pair is queued on the pool's injector and the caller blocks until both
// closures finish. A closure that passes its own pool instead of its Scope
// still lands on the hot path, after a lookup of the calling worker. Joining
// on a different pool from inside a closure blocks the calling worker until
// that pool finishes the pair, so two pools must not wait on each other.
//
// # Panics
//
// A panic inside either closure is captured on the worker, which keeps
// running. Once both closures have finished, Join re-panics on the caller with
// a *TaskPanic holding the original value and stack. TryJoin returns the same
// *TaskPanic as an error instead. When both closures panic, the first
// closure's panic is reported.
//
// # Global Pool
//
// Global returns a lazily created process-wide pool. Its size comes from
// ConfigureParallelism, else the FORKPOOL_NUM_WORKERS environment variable,
// else runtime.GOMAXPROCS(0).
//
// # Configuration Options
//
//   - WithDequeCapacity(n): Initial capacity of each worker deque
//   - WithIdleBackoff(kind, initial, max): Sleep curve for idle workers
//   - WithSpinLimit(n), WithYieldLimit(n): Idle rounds before sleeping
//   - WithPinnedWorkers(): Lock workers to OS threads and CPU cores
//   - WithOnWorkerStart(fn), WithOnWorkerStop(fn): Worker lifecycle hooks
//   - WithPanicHandler(fn): Observe captured panics as they happen
//   - WithLogger(l): Receive lifecycle messages
package pool
