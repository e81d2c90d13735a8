package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// injector is the global FIFO through which goroutines outside the pool hand
// work to it. Workers poll it after their own deque and before stealing.
type injector struct {
	mu    sync.Mutex
	queue *queue.Queue
	size  atomic.Int64 // mirrors queue.Length() so pollers can skip the lock
}

func newInjector() *injector {
	return &injector{queue: queue.New()}
}

func (in *injector) push(j *Job) {
	in.mu.Lock()
	in.queue.Add(j)
	in.size.Add(1)
	in.mu.Unlock()
}

func (in *injector) pop() *Job {
	if in.size.Load() == 0 {
		return nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if in.queue.Length() == 0 {
		return nil
	}

	j := in.queue.Remove().(*Job)
	in.size.Add(-1)
	return j
}

func (in *injector) len() int {
	return int(in.size.Load())
}
