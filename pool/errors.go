package pool

import (
	"errors"

	"github.com/utkarsh5026/forkpool/internal/scheduler"
	"github.com/utkarsh5026/forkpool/internal/types"
)

var (
	// ErrInvalidParallelism is returned when a pool is asked for fewer than one worker.
	ErrInvalidParallelism = scheduler.ErrInvalidParallelism

	// ErrPoolClosed is returned by joins started from outside a pool after Close.
	ErrPoolClosed = scheduler.ErrSchedulerClosed

	// ErrGlobalPoolStarted is returned by ConfigureParallelism once the global
	// pool exists; its size can no longer change.
	ErrGlobalPoolStarted = errors.New("global pool already initialized")

	// ErrTaskPanic matches any *TaskPanic with errors.Is.
	ErrTaskPanic = types.ErrTaskPanic
)

// TaskPanic carries a panic from a closure on the pool back to the join that
// waited for it. If the panic value was an error, errors.Is and errors.As see
// through to it.
type TaskPanic = types.TaskPanic
