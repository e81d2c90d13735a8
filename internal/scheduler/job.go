package scheduler

import (
	"github.com/utkarsh5026/forkpool/internal/types"
)

// Job is the type-erased unit of work stored in deques and the injector.
// Whoever pops or steals a Job owns it and must run it exactly once.
type Job struct {
	execute func(w *Worker)
}

// StackJob is a Job that produces a value of type R and signals a latch when
// done. The Outcome is only valid once the latch reports set.
type StackJob[R any] struct {
	Job
	fn      func(w *Worker) R
	outcome types.Outcome[R]
	latch   types.Signal
}

// NewStackJob wraps fn. fn receives the worker that ends up executing it,
// which is not necessarily the worker that created the job.
func NewStackJob[R any](fn func(w *Worker) R, latch types.Signal) *StackJob[R] {
	j := &StackJob[R]{fn: fn, latch: latch}
	j.Job.execute = j.run
	return j
}

func (j *StackJob[R]) run(w *Worker) {
	j.outcome = types.Catch(func() R { return j.fn(w) })
	if j.outcome.Panicked && !j.outcome.Propagated() && w != nil {
		w.RecordPanic(j.outcome.Panic, j.outcome.Stack)
	}
	j.latch.Set()
}

// AsJob returns the handle to push into a deque or the injector.
func (j *StackJob[R]) AsJob() *Job {
	return &j.Job
}

func (j *StackJob[R]) Latch() types.Signal {
	return j.latch
}

// Outcome returns the result. Call only after Latch().Probe() is true.
func (j *StackJob[R]) Outcome() types.Outcome[R] {
	return j.outcome
}
