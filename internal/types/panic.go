package types

import (
	"errors"
	"fmt"
)

// ErrTaskPanic matches every *TaskPanic with errors.Is.
var ErrTaskPanic = errors.New("task panicked")

// TaskPanic is a panic raised by a closure running on the pool, carried back
// to whoever joins it. Value is whatever was passed to panic; Stack is the
// stack of the goroutine that recovered it.
type TaskPanic struct {
	Value any
	Stack []byte
}

func (p *TaskPanic) Error() string {
	return fmt.Sprintf("task panicked: %v", p.Value)
}

func (p *TaskPanic) Is(target error) bool {
	return target == ErrTaskPanic
}

// Unwrap exposes the panic value when it was itself an error, so callers can
// match the original cause with errors.Is and errors.As.
func (p *TaskPanic) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}
