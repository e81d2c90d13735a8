package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
)

// labeledJobs returns n distinct jobs and a lookup from job to its label.
func labeledJobs(n int) ([]*Job, map[*Job]int) {
	jobs := make([]*Job, n)
	labels := make(map[*Job]int, n)
	for i := range n {
		jobs[i] = &Job{execute: func(*Worker) {}}
		labels[jobs[i]] = i
	}
	return jobs, labels
}

// TestNewDeque tests the creation and initialization of Deque.
func TestNewDeque(t *testing.T) {
	tests := []struct {
		name         string
		capacity     int
		wantCapacity int
	}{
		{"default capacity", 0, defaultDequeCapacity},
		{"negative capacity", -4, defaultDequeCapacity},
		{"explicit power of 2", 64, 64},
		{"non-power of 2 rounds up", 100, 128},
		{"small capacity", 10, 16},
		{"one", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dq := NewDeque(tt.capacity)

			if dq.Capacity() != tt.wantCapacity {
				t.Errorf("expected capacity %d, got %d", tt.wantCapacity, dq.Capacity())
			}

			buf := dq.buffer.Load()
			if buf.mask != int64(tt.wantCapacity-1) {
				t.Errorf("expected mask %d, got %d", tt.wantCapacity-1, buf.mask)
			}

			if dq.head.Load() != 0 || dq.tail.Load() != 0 {
				t.Errorf("expected head=tail=0, got head=%d tail=%d", dq.head.Load(), dq.tail.Load())
			}

			if dq.Len() != 0 {
				t.Errorf("expected length 0, got %d", dq.Len())
			}
		})
	}
}

// TestDeque_PopLIFO tests that the owner end is LIFO.
func TestDeque_PopLIFO(t *testing.T) {
	dq := NewDeque(16)

	if dq.Pop() != nil {
		t.Error("expected nil from empty deque")
	}

	jobs, labels := labeledJobs(4)
	for _, j := range jobs {
		dq.Push(j)
	}

	for i := len(jobs) - 1; i >= 0; i-- {
		popped := dq.Pop()
		if popped == nil {
			t.Fatalf("Pop returned nil at index %d", i)
		}
		if labels[popped] != i {
			t.Errorf("expected job %d, got %d", i, labels[popped])
		}
	}

	if dq.Pop() != nil {
		t.Error("expected nil after draining")
	}
	if dq.Len() != 0 {
		t.Errorf("expected length 0, got %d", dq.Len())
	}
}

// TestDeque_PopClearsSlots tests that popped jobs are not retained by the ring.
func TestDeque_PopClearsSlots(t *testing.T) {
	dq := NewDeque(8)
	jobs, _ := labeledJobs(3)
	for _, j := range jobs {
		dq.Push(j)
	}

	for range jobs {
		if dq.Pop() == nil {
			t.Fatal("Pop returned nil on a non-empty deque")
		}
	}

	buf := dq.buffer.Load()
	for i := range buf.capacity() {
		if buf.load(i) != nil {
			t.Errorf("slot %d still holds a job after it was popped", i)
		}
	}
}

// TestDeque_StealFIFO tests that the thief end is FIFO.
func TestDeque_StealFIFO(t *testing.T) {
	dq := NewDeque(16)

	if dq.Steal() != nil {
		t.Error("expected nil from empty deque")
	}

	jobs, labels := labeledJobs(4)
	for _, j := range jobs {
		dq.Push(j)
	}

	for i := range jobs {
		stolen := dq.Steal()
		if stolen == nil {
			t.Fatalf("Steal returned nil at index %d", i)
		}
		if labels[stolen] != i {
			t.Errorf("expected job %d, got %d", i, labels[stolen])
		}
	}

	if dq.Steal() != nil {
		t.Error("expected nil after draining")
	}
}

// TestDeque_MixedEnds tests that both ends see a consistent window.
func TestDeque_MixedEnds(t *testing.T) {
	dq := NewDeque(4)
	jobs, labels := labeledJobs(5)
	for _, j := range jobs {
		dq.Push(j)
	}

	if got := labels[dq.Steal()]; got != 0 {
		t.Errorf("Steal() = %d, want 0", got)
	}
	if got := labels[dq.Pop()]; got != 4 {
		t.Errorf("Pop() = %d, want 4", got)
	}
	if got := labels[dq.Steal()]; got != 1 {
		t.Errorf("Steal() = %d, want 1", got)
	}
	if dq.Len() != 2 {
		t.Errorf("expected length 2, got %d", dq.Len())
	}
}

// TestDeque_Grow tests automatic deque growth.
func TestDeque_Grow(t *testing.T) {
	dq := NewDeque(8)
	oldCap := dq.Capacity()

	jobs, labels := labeledJobs(oldCap + 1)
	for _, j := range jobs {
		dq.Push(j)
	}

	if dq.Capacity() != oldCap*2 {
		t.Errorf("expected capacity to double from %d to %d, got %d", oldCap, oldCap*2, dq.Capacity())
	}
	if dq.Len() != len(jobs) {
		t.Errorf("expected length %d, got %d", len(jobs), dq.Len())
	}

	for i := len(jobs) - 1; i >= 0; i-- {
		popped := dq.Pop()
		if popped == nil {
			t.Fatalf("Pop returned nil at index %d", i)
		}
		if labels[popped] != i {
			t.Errorf("expected job %d, got %d", i, labels[popped])
		}
	}
}

// TestDeque_GrowAfterWraparound tests growth when head has advanced past zero.
func TestDeque_GrowAfterWraparound(t *testing.T) {
	dq := NewDeque(4)
	jobs, labels := labeledJobs(10)

	for _, j := range jobs[:3] {
		dq.Push(j)
	}
	dq.Steal()
	dq.Steal()

	for _, j := range jobs[3:] {
		dq.Push(j)
	}

	for want := 2; want < len(jobs); want++ {
		stolen := dq.Steal()
		if stolen == nil {
			t.Fatalf("Steal returned nil, want job %d", want)
		}
		if labels[stolen] != want {
			t.Errorf("Steal() = %d, want %d", labels[stolen], want)
		}
	}
}

// TestDeque_Len tests the Len method.
func TestDeque_Len(t *testing.T) {
	dq := NewDeque(16)
	jobs, _ := labeledJobs(10)

	for i, j := range jobs {
		dq.Push(j)
		if dq.Len() != i+1 {
			t.Errorf("after push %d: expected length %d, got %d", i+1, i+1, dq.Len())
		}
	}

	for i := 9; i >= 0; i-- {
		dq.Pop()
		if dq.Len() != i {
			t.Errorf("after pop: expected length %d, got %d", i, dq.Len())
		}
	}

	dq.Pop()
	if dq.Len() != 0 {
		t.Errorf("pop on empty deque changed length to %d", dq.Len())
	}
}

// TestDeque_ConcurrentPopAndSteal tests concurrent access from opposite ends:
// every job must be taken exactly once.
func TestDeque_ConcurrentPopAndSteal(t *testing.T) {
	const numJobs = 10000
	dq := NewDeque(64)
	jobs, labels := labeledJobs(numJobs)

	var taken [numJobs]atomic.Int32
	var total atomic.Int32
	var pushing atomic.Bool
	pushing.Store(true)

	var wg sync.WaitGroup

	// Owner pushes everything while popping every third job.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer pushing.Store(false)
		for i, j := range jobs {
			dq.Push(j)
			if i%3 == 0 {
				if popped := dq.Pop(); popped != nil {
					taken[labels[popped]].Add(1)
					total.Add(1)
				}
			}
		}
		for {
			popped := dq.Pop()
			if popped == nil {
				return
			}
			taken[labels[popped]].Add(1)
			total.Add(1)
		}
	}()

	const numThieves = 4
	for range numThieves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if stolen := dq.Steal(); stolen != nil {
					taken[labels[stolen]].Add(1)
					total.Add(1)
					continue
				}
				if !pushing.Load() && dq.Len() == 0 {
					return
				}
			}
		}()
	}

	wg.Wait()

	if total.Load() != numJobs {
		t.Errorf("expected %d jobs taken, got %d", numJobs, total.Load())
	}
	for i := range taken {
		if n := taken[i].Load(); n != 1 {
			t.Fatalf("job %d taken %d times", i, n)
		}
	}
}

// TestDeque_SingleElementContention tests the owner/thief race on the last
// element: exactly one side may win.
func TestDeque_SingleElementContention(t *testing.T) {
	for iteration := range 1000 {
		dq := NewDeque(4)
		jobs, _ := labeledJobs(1)
		dq.Push(jobs[0])

		var wins atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})

		wg.Add(3)
		go func() {
			defer wg.Done()
			<-start
			if dq.Pop() != nil {
				wins.Add(1)
			}
		}()
		for range 2 {
			go func() {
				defer wg.Done()
				<-start
				if dq.Steal() != nil {
					wins.Add(1)
				}
			}()
		}

		close(start)
		wg.Wait()

		if wins.Load() != 1 {
			t.Fatalf("iteration %d: expected exactly one winner, got %d", iteration, wins.Load())
		}
		if dq.Len() != 0 {
			t.Fatalf("iteration %d: expected empty deque, got length %d", iteration, dq.Len())
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, want int }{
		{-1, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {64, 64}, {65, 128},
	}

	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func BenchmarkDeque_PushPop(b *testing.B) {
	dq := NewDeque(0)
	j := &Job{execute: func(*Worker) {}}

	for b.Loop() {
		dq.Push(j)
		dq.Pop()
	}
}
