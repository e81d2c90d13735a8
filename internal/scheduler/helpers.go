package scheduler

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrInvalidParallelism is returned when a registry is asked for fewer than one worker.
	ErrInvalidParallelism = errors.New("parallelism must be at least 1")

	// ErrSchedulerClosed is returned when work is injected after shutdown began.
	ErrSchedulerClosed = errors.New("scheduler is closed")
)

// nextPowerOfTwo returns the next power of 2 >= n
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	if n&(n-1) == 0 {
		return n
	}

	power := 1
	for power < n {
		power *= 2
	}

	return power
}

// goroutineID parses the current goroutine's id from the "goroutine NNN ["
// header of its stack trace. Ids are never reused and never zero.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}

// wakeup lets sleeping workers be woken early when new work is injected or
// the registry shuts down. Sleeps are always bounded, so a dropped wakeup only
// costs latency.
type wakeup struct {
	sig      chan struct{}
	quit     chan struct{}
	sleepers atomic.Int32
	once     sync.Once
}

func newWakeup(buffer int) *wakeup {
	return &wakeup{
		sig:  make(chan struct{}, max(buffer, 1)),
		quit: make(chan struct{}),
	}
}

// sleep blocks for at most d.
func (s *wakeup) sleep(d time.Duration) {
	s.sleepers.Add(1)
	defer s.sleepers.Add(-1)

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-s.sig:
	case <-s.quit:
	case <-timer.C:
	}
}

// notify wakes one sleeper, if any. Never blocks.
func (s *wakeup) notify() {
	if s.sleepers.Load() == 0 {
		return
	}

	select {
	case s.sig <- struct{}{}:
	default:
	}
}

// close wakes every current and future sleeper. Safe to call more than once.
func (s *wakeup) close() {
	s.once.Do(func() {
		close(s.quit)
	})
}
