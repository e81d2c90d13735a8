package types

import "runtime"

// stackBufSize bounds the stack trace captured for a panicking closure.
const stackBufSize = 4096

// Outcome is what running a closure produced: either a value, or the panic it
// raised together with the stack of the goroutine that recovered it.
//
// An Outcome is written exactly once, by whichever worker executed the
// closure, and read only after the owning latch has been set.
type Outcome[R any] struct {
	Value    R
	Panicked bool
	Panic    any
	Stack    []byte
}

// Catch runs fn and converts a panic into an Outcome instead of letting it
// unwind the calling goroutine. Worker goroutines rely on this to survive
// failing tasks.
func Catch[R any](fn func() R) (out Outcome[R]) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, stackBufSize)
			n := runtime.Stack(buf, false)
			out.Panicked = true
			out.Panic = r
			out.Stack = buf[:n]
		}
	}()
	out.Value = fn()
	return out
}

// Propagated reports whether the captured panic is a TaskPanic re-raised by a
// nested join rather than a fresh failure.
func (o Outcome[R]) Propagated() bool {
	if !o.Panicked {
		return false
	}
	_, ok := o.Panic.(*TaskPanic)
	return ok
}

// Err returns nil for a normal completion and a *TaskPanic otherwise. A panic
// that already is a *TaskPanic is returned unchanged, so the innermost stack
// survives any number of nested joins.
func (o Outcome[R]) Err() error {
	if !o.Panicked {
		return nil
	}
	if tp, ok := o.Panic.(*TaskPanic); ok {
		return tp
	}
	return &TaskPanic{Value: o.Panic, Stack: o.Stack}
}
