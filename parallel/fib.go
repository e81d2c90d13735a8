package parallel

import "github.com/utkarsh5026/forkpool/pool"

const (
	// MaxFibN is the largest n whose Fibonacci number fits in a uint64.
	MaxFibN = 93

	// fibCutoff is the n below which Fib stops forking.
	fibCutoff = 20
)

// Fib computes the n-th Fibonacci number with nested joins. n <= 0 returns 0.
// Results are exact for n <= MaxFibN and wrap modulo 2^64 above it.
func Fib(s pool.Scope, n int) uint64 {
	return pool.Run(s, func(s pool.Scope) uint64 { return fib(s, n) })
}

func fib(s pool.Scope, n int) uint64 {
	if n < fibCutoff {
		return FibSequential(n)
	}

	a, b := pool.Join(s,
		func(s pool.Scope) uint64 { return fib(s, n-1) },
		func(s pool.Scope) uint64 { return fib(s, n-2) },
	)
	return a + b
}

// FibSequential is the plain doubly recursive Fibonacci, the baseline Fib is
// measured against. It has the same range as Fib.
func FibSequential(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n < 2 {
		return uint64(n)
	}
	return FibSequential(n-1) + FibSequential(n-2)
}
