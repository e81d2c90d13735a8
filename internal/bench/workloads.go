package bench

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"

	"github.com/utkarsh5026/forkpool/parallel"
	"github.com/utkarsh5026/forkpool/pool"
)

// Workload is one benchmarkable computation. Prepare builds the input once;
// the returned Job is then timed repeatedly on pools of different sizes and
// once sequentially. Every run must return the same checksum.
type Workload struct {
	Name        string
	Description string
	Prepare     func(size int, seed int64) Job
	Size        func(Sizes) int
}

// Job is a prepared workload instance.
type Job struct {
	Parallel   func(s pool.Scope) (uint64, error)
	Sequential func() (uint64, error)
}

// Workloads lists every workload in display order.
func Workloads() []Workload {
	return []Workload{
		fibWorkload(),
		reduceWorkload(),
		sortWorkload(),
		spanWorkload(),
	}
}

// Lookup finds a workload by name.
func Lookup(name string) (Workload, error) {
	for _, w := range Workloads() {
		if w.Name == name {
			return w, nil
		}
	}
	return Workload{}, fmt.Errorf("unknown workload %q", name)
}

func fibWorkload() Workload {
	return Workload{
		Name:        "fib",
		Description: "naive Fibonacci with nested joins",
		Size:        func(s Sizes) int { return s.Fib },
		Prepare: func(n int, _ int64) Job {
			return Job{
				Parallel:   func(s pool.Scope) (uint64, error) { return parallel.Fib(s, n), nil },
				Sequential: func() (uint64, error) { return parallel.FibSequential(n), nil },
			}
		},
	}
}

func reduceWorkload() Workload {
	return Workload{
		Name:        "reduce",
		Description: "sum of squares over a slice",
		Size:        func(s Sizes) int { return s.Reduce },
		Prepare: func(n int, seed int64) Job {
			r := rand.New(rand.NewSource(seed)) // #nosec G404 -- benchmark input
			xs := make([]uint64, n)
			for i := range xs {
				xs[i] = uint64(r.Intn(1 << 16)) // #nosec G115 -- non-negative
			}

			square := func(x uint64) uint64 { return x * x }
			add := func(a, b uint64) uint64 { return a + b }

			return Job{
				Parallel: func(s pool.Scope) (uint64, error) {
					return parallel.MapReduce(s, xs, square, 0, add, parallel.DefaultGrain*8), nil
				},
				Sequential: func() (uint64, error) {
					var acc uint64
					for _, x := range xs {
						acc += square(x)
					}
					return acc, nil
				},
			}
		},
	}
}

func sortWorkload() Workload {
	return Workload{
		Name:        "sort",
		Description: "merge sort of random integers",
		Size:        func(s Sizes) int { return s.Sort },
		Prepare: func(n int, seed int64) Job {
			r := rand.New(rand.NewSource(seed)) // #nosec G404 -- benchmark input
			src := make([]int, n)
			for i := range src {
				src[i] = r.Int()
			}

			return Job{
				Parallel: func(s pool.Scope) (uint64, error) {
					xs := slices.Clone(src)
					parallel.MergeSort(s, xs)
					return sortedChecksum(xs)
				},
				Sequential: func() (uint64, error) {
					xs := slices.Clone(src)
					sort.Ints(xs)
					return sortedChecksum(xs)
				},
			}
		},
	}
}

func spanWorkload() Workload {
	return Workload{
		Name:        "span",
		Description: "Borůvka spanning forest of a random sparse graph",
		Size:        func(s Sizes) int { return s.Span },
		Prepare: func(n int, seed int64) Job {
			g := randomGraph(n, 4*n, seed)

			return Job{
				Parallel: func(s pool.Scope) (uint64, error) {
					forest, err := parallel.SpanningForest(s, g)
					if err != nil {
						return 0, err
					}
					return forestChecksum(forest), nil
				},
				Sequential: func() (uint64, error) {
					p, err := pool.New(1)
					if err != nil {
						return 0, err
					}
					defer p.Close()

					forest, err := parallel.SpanningForest(p, g)
					if err != nil {
						return 0, err
					}
					return forestChecksum(forest), nil
				},
			}
		},
	}
}

// sortedChecksum verifies order and folds the values into a checksum.
func sortedChecksum(xs []int) (uint64, error) {
	if !slices.IsSorted(xs) {
		return 0, fmt.Errorf("output of length %d is not sorted", len(xs))
	}

	var h uint64
	for _, x := range xs {
		h = h*31 + uint64(x) // #nosec G115 -- hashing only
	}
	return h, nil
}

func forestChecksum(f parallel.Forest) uint64 {
	h := uint64(f.Components)
	for _, e := range f.Edges {
		h = h*1_000_003 + uint64(e) // #nosec G115 -- indices are non-negative
	}
	return h
}

func randomGraph(n, m int, seed int64) parallel.Graph {
	r := rand.New(rand.NewSource(seed)) // #nosec G404 -- benchmark input
	g := parallel.Graph{Vertices: n, Edges: make([]parallel.Edge, 0, m)}
	if n < 2 {
		return g
	}
	for range m {
		g.Edges = append(g.Edges, parallel.Edge{
			U:      r.Intn(n),
			V:      r.Intn(n),
			Weight: float64(r.Intn(1000)),
		})
	}
	return g
}
