// Package parallel implements divide-and-conquer algorithms on top of
// pool.Join: Fibonacci, reduction, a parallel for loop, merge sort, and a
// Borůvka spanning forest.
//
// Every function takes the pool.Scope it should run in. Pass a *pool.Pool
// from ordinary code, or the Scope a closure received when calling from inside
// the pool. Each algorithm falls back to sequential code below a grain size so
// that scheduling overhead never dominates the work.
//
// Results never depend on the pool size: running on one worker or on many
// gives identical output.
package parallel

// DefaultGrain is the leaf size used when a caller passes grain <= 0.
const DefaultGrain = 1024

func grainOrDefault(grain int) int {
	if grain <= 0 {
		return DefaultGrain
	}
	return grain
}
