package parallel

import "github.com/utkarsh5026/forkpool/pool"

// Reduce folds xs with op by recursive halving. op must be associative and
// identity must be its identity element; op need not be commutative, as the
// left-to-right order of xs is preserved. Ranges shorter than grain are folded
// sequentially.
func Reduce[T any](s pool.Scope, xs []T, identity T, op func(T, T) T, grain int) T {
	return MapReduce(s, xs, func(x T) T { return x }, identity, op, grain)
}

// MapReduce maps every element with fn and folds the results with op, under
// the same rules as Reduce.
func MapReduce[T, U any](s pool.Scope, xs []T, fn func(T) U, identity U, op func(U, U) U, grain int) U {
	grain = grainOrDefault(grain)
	return pool.Run(s, func(s pool.Scope) U {
		return mapReduce(s, xs, fn, identity, op, grain)
	})
}

func mapReduce[T, U any](s pool.Scope, xs []T, fn func(T) U, identity U, op func(U, U) U, grain int) U {
	if len(xs) <= grain {
		acc := identity
		for _, x := range xs {
			acc = op(acc, fn(x))
		}
		return acc
	}

	mid := len(xs) / 2
	left, right := pool.Join(s,
		func(s pool.Scope) U { return mapReduce(s, xs[:mid], fn, identity, op, grain) },
		func(s pool.Scope) U { return mapReduce(s, xs[mid:], fn, identity, op, grain) },
	)
	return op(left, right)
}

// For calls body(i) for every i in [lo, hi), splitting the range in halves
// until pieces are at most grain long. Calls for different i may run
// concurrently.
func For(s pool.Scope, lo, hi, grain int, body func(i int)) {
	if hi <= lo {
		return
	}
	grain = grainOrDefault(grain)
	pool.Run(s, func(s pool.Scope) struct{} {
		forRange(s, lo, hi, grain, body)
		return struct{}{}
	})
}

func forRange(s pool.Scope, lo, hi, grain int, body func(i int)) {
	if hi-lo <= grain {
		for i := lo; i < hi; i++ {
			body(i)
		}
		return
	}

	mid := lo + (hi-lo)/2
	pool.Join(s,
		func(s pool.Scope) struct{} { forRange(s, lo, mid, grain, body); return struct{}{} },
		func(s pool.Scope) struct{} { forRange(s, mid, hi, grain, body); return struct{}{} },
	)
}
