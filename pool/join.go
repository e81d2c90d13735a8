package pool

import (
	"github.com/utkarsh5026/forkpool/internal/scheduler"
	"github.com/utkarsh5026/forkpool/internal/types"
)

// Join runs f and g, potentially in parallel, and returns both results once
// both have finished.
//
// f runs on the calling worker while g waits on that worker's deque where
// idle peers can steal it. If nobody does, the caller runs g itself right
// after f. While waiting for a stolen g, the caller keeps executing other
// pending jobs rather than blocking.
//
// If either closure panics, Join panics with a *TaskPanic after both have
// finished. From outside a closed pool, Join panics with ErrPoolClosed.
func Join[A, B any](s Scope, f func(Scope) A, g func(Scope) B) (A, B) {
	a, b, err := TryJoin(s, f, g)
	if err != nil {
		panic(err)
	}
	return a, b
}

// TryJoin is Join with the failure returned instead of raised: a *TaskPanic
// when a closure panicked, ErrPoolClosed when s is a closed pool.
func TryJoin[A, B any](s Scope, f func(Scope) A, g func(Scope) B) (A, B, error) {
	p, w := resolve(s)
	if w != nil {
		return joinOnWorker(p, w, f, g)
	}
	return joinFromOutside(p, f, g)
}

// Run executes f on the pool and returns its result. Called from a worker f
// runs inline; otherwise it is injected and the caller blocks until it
// finishes.
// A panic in f is re-raised as a *TaskPanic.
func Run[R any](s Scope, f func(Scope) R) R {
	v, err := TryRun(s, f)
	if err != nil {
		panic(err)
	}
	return v
}

// TryRun is Run with the failure returned instead of raised.
func TryRun[R any](s Scope, f func(Scope) R) (R, error) {
	p, w := resolve(s)
	if w != nil {
		out := types.Catch(func() R { return f(p.scopeOf(w)) })
		if out.Panicked && !out.Propagated() {
			w.RecordPanic(out.Panic, out.Stack)
		}
		return out.Value, out.Err()
	}

	latch := types.NewLockLatch()
	job := scheduler.NewStackJob(func(w *scheduler.Worker) R {
		return f(p.scopeOf(w))
	}, latch)

	if err := p.registry.Inject(job.AsJob()); err != nil {
		var zero R
		return zero, err
	}

	latch.Wait()
	out := job.Outcome()
	return out.Value, out.Err()
}

// resolve returns the pool behind s and the worker the call should run on.
// A *Pool used from a closure already running on one of its workers resolves
// to that worker: blocking it on an injected job could leave no worker free
// to run the job.
func resolve(s Scope) (*Pool, *scheduler.Worker) {
	p := s.Pool()
	if w := s.worker(); w != nil {
		return p, w
	}
	return p, p.registry.CurrentWorker()
}

// joinOnWorker is the hot path: the caller is w, so g goes onto w's own deque.
func joinOnWorker[A, B any](p *Pool, w *scheduler.Worker, f func(Scope) A, g func(Scope) B) (A, B, error) {
	var latchB types.Latch
	jobB := scheduler.NewStackJob(func(wk *scheduler.Worker) B {
		return g(p.scopeOf(wk))
	}, &latchB)
	w.Push(jobB.AsJob())

	outA := types.Catch(func() A { return f(p.scopeOf(w)) })
	if outA.Panicked && !outA.Propagated() {
		w.RecordPanic(outA.Panic, outA.Stack)
	}

	// Everything f pushed has been reclaimed by its own joins, so the top of
	// the deque is jobB unless a thief took it. Anything else found here
	// belongs to an enclosing join and is run now; that frame will then find
	// its own job already done.
	for !latchB.Probe() {
		j := w.Pop()
		if j == nil {
			w.WaitUntil(&latchB)
			break
		}
		w.Execute(j)
	}

	var (
		zeroA A
		zeroB B
	)

	if err := outA.Err(); err != nil {
		return zeroA, zeroB, err
	}

	outB := jobB.Outcome()
	if err := outB.Err(); err != nil {
		return zeroA, zeroB, err
	}

	return outA.Value, outB.Value, nil
}

type joinResult[A, B any] struct {
	a   A
	b   B
	err error
}

// joinFromOutside is the cold path: the caller owns no deque, so the whole
// join is injected and the caller blocks until a worker has run it.
func joinFromOutside[A, B any](p *Pool, f func(Scope) A, g func(Scope) B) (A, B, error) {
	latch := types.NewLockLatch()
	job := scheduler.NewStackJob(func(w *scheduler.Worker) joinResult[A, B] {
		a, b, err := joinOnWorker(p, w, f, g)
		return joinResult[A, B]{a: a, b: b, err: err}
	}, latch)

	var (
		zeroA A
		zeroB B
	)

	if err := p.registry.Inject(job.AsJob()); err != nil {
		debugLog("join rejected: %v", err)
		return zeroA, zeroB, err
	}

	latch.Wait()

	out := job.Outcome()
	if err := out.Err(); err != nil {
		return zeroA, zeroB, err
	}
	return out.Value.a, out.Value.b, out.Value.err
}
