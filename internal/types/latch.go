package types

import (
	"sync"
	"sync/atomic"
)

// Signal is a single-shot completion flag. Set publishes every write made
// before it to any goroutine that later observes Probe() == true.
type Signal interface {
	Set()
	Probe() bool
}

// Latch is the spin-only Signal used between workers. A waiting worker never
// blocks on it; it keeps executing other jobs and probes the latch in between.
type Latch struct {
	done atomic.Bool
}

func (l *Latch) Set() {
	l.done.Store(true)
}

func (l *Latch) Probe() bool {
	return l.done.Load()
}

// LockLatch is a Signal that goroutines outside the pool can block on.
// It is used when a join is injected from a goroutine that owns no deque and
// therefore has nothing useful to do while waiting.
type LockLatch struct {
	Latch
	ch   chan struct{}
	once sync.Once
}

func NewLockLatch() *LockLatch {
	return &LockLatch{ch: make(chan struct{})}
}

// Set marks the latch done and releases every goroutine blocked in Wait.
// Calling Set more than once is harmless.
func (l *LockLatch) Set() {
	l.once.Do(func() {
		l.Latch.Set()
		close(l.ch)
	})
}

// Wait blocks until Set has been called.
func (l *LockLatch) Wait() {
	<-l.ch
}

// Done returns a channel that is closed once the latch is set.
func (l *LockLatch) Done() <-chan struct{} {
	return l.ch
}
