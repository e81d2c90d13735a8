package scheduler

import (
	"sync/atomic"
)

const (
	defaultDequeCapacity = 256
	maxStealRetries      = 4 // CAS losses tolerated per Steal call before giving up
	cacheLinePadding     = 64
)

// ring is an immutable-size circular buffer. Slots are atomic so a thief
// reading a slot never races with the owner rewriting it after a wraparound.
type ring struct {
	slots []atomic.Pointer[Job]
	mask  int64
}

func newRing(capacity int) *ring {
	return &ring{
		slots: make([]atomic.Pointer[Job], capacity),
		mask:  int64(capacity - 1),
	}
}

func (r *ring) load(i int64) *Job {
	return r.slots[i&r.mask].Load()
}

func (r *ring) store(i int64, j *Job) {
	r.slots[i&r.mask].Store(j)
}

func (r *ring) capacity() int64 {
	return int64(len(r.slots))
}

// Deque is a Chase-Lev work-stealing deque.
//
// The owning worker pushes and pops at the tail (LIFO). Any other goroutine
// steals from the head (FIFO). When a single element remains, the owner's Pop
// and a concurrent Steal both race a CAS on head and exactly one wins; the
// loser observes an empty deque.
//
// Concurrency model:
//   - tail is written only by the owner
//   - head is advanced only through CAS, by thieves or by the owner on the last element
//   - the ring pointer is swapped only by the owner when growing; old rings
//     stay valid for thieves that loaded them
//
// References:
//   - "Dynamic Circular Work-Stealing Deque" by Chase and Lev (2005)
//   - Go runtime scheduler: runtime/proc.go
type Deque struct {
	buffer atomic.Pointer[ring]

	_    [cacheLinePadding]byte
	head atomic.Int64
	_    [cacheLinePadding - 8]byte
	tail atomic.Int64
}

// NewDeque creates a deque with the given initial capacity, rounded up to a
// power of two. Non-positive values select the default capacity.
func NewDeque(capacity int) *Deque {
	if capacity <= 0 {
		capacity = defaultDequeCapacity
	}

	d := &Deque{}
	d.buffer.Store(newRing(nextPowerOfTwo(capacity)))
	return d
}

// Push adds a job at the tail. Owner only.
//
// The ring doubles when full, so Push never blocks and never fails; running
// out of memory while growing aborts the process.
func (d *Deque) Push(j *Job) {
	tail := d.tail.Load()
	head := d.head.Load()
	buf := d.buffer.Load()

	if tail-head >= buf.capacity() {
		buf = d.grow(buf, head, tail)
	}

	buf.store(tail, j)
	d.tail.Store(tail + 1)
}

// grow copies the live window [head, tail) into a ring twice the size.
func (d *Deque) grow(old *ring, head, tail int64) *ring {
	next := newRing(int(old.capacity() << 1))
	for i := head; i < tail; i++ {
		next.store(i, old.load(i))
	}

	d.buffer.Store(next)
	return next
}

// Pop removes the most recently pushed job. Owner only.
// Returns nil if the deque is empty or a thief took the last job.
func (d *Deque) Pop() *Job {
	tail := d.tail.Load() - 1
	buf := d.buffer.Load()
	d.tail.Store(tail)

	head := d.head.Load()
	if head > tail {
		d.tail.Store(head)
		return nil
	}

	// Popped slots are cleared so the ring does not pin finished jobs. A thief
	// that still reads this slot loses its CAS and discards what it read.
	j := buf.load(tail)
	if head < tail {
		buf.store(tail, nil)
		return j
	}

	// Last element: race thieves for it.
	if !d.head.CompareAndSwap(head, head+1) {
		j = nil
	}
	buf.store(tail, nil)
	d.tail.Store(head + 1)
	return j
}

// Steal removes the oldest job. Safe for concurrent use by any goroutine.
//
// Returns nil if the deque is empty, or after losing maxStealRetries CAS races
// in a row to other thieves or the owner. Lost races are ordinary control
// flow; the caller simply moves on to the next victim.
func (d *Deque) Steal() *Job {
	for range maxStealRetries {
		head := d.head.Load()
		tail := d.tail.Load()
		if head >= tail {
			return nil
		}

		j := d.buffer.Load().load(head)
		if d.head.CompareAndSwap(head, head+1) {
			return j
		}
	}
	return nil
}

// Len returns the approximate number of queued jobs. The value may be stale by
// the time it is used and is meant for monitoring, not synchronization.
func (d *Deque) Len() int {
	n := d.tail.Load() - d.head.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Capacity returns the current ring capacity.
func (d *Deque) Capacity() int {
	return int(d.buffer.Load().capacity())
}
