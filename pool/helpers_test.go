package pool

import (
	"testing"
	"time"
)

// poolConfig defines a test configuration for one idle strategy.
type poolConfig struct {
	name string
	opts []Option
}

// getAllConfigs returns every idle backoff strategy worth exercising. Short
// sleeps keep stolen work flowing in tests that fan out only a little.
func getAllConfigs() []poolConfig {
	return []poolConfig{
		{
			name: "Exponential",
			opts: []Option{
				WithIdleBackoff(BackoffExponential, 10*time.Microsecond, 200*time.Microsecond),
			},
		},
		{
			name: "Jittered",
			opts: []Option{
				WithIdleBackoff(BackoffJittered, 10*time.Microsecond, 200*time.Microsecond),
				WithJitter(0.5),
			},
		},
		{
			name: "Decorrelated",
			opts: []Option{
				WithIdleBackoff(BackoffDecorrelated, 10*time.Microsecond, 200*time.Microsecond),
			},
		},
		{
			name: "SpinOnly",
			opts: []Option{
				WithSpinLimit(1000),
				WithYieldLimit(1000),
			},
		},
	}
}

// newTestPool creates a pool of n workers that is closed when the test ends.
func newTestPool(t testing.TB, n int, opts ...Option) *Pool {
	t.Helper()

	p, err := New(n, opts...)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", n, err)
	}
	t.Cleanup(func() {
		if err := p.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return p
}

// runConfigTest runs testFunc once per idle strategy against a pool of
// workerCount workers.
func runConfigTest(t *testing.T, testFunc func(t *testing.T, p *Pool), workerCount int, additionalOpts ...Option) {
	for _, cfg := range getAllConfigs() {
		t.Run(cfg.name, func(t *testing.T) {
			opts := append(append([]Option{}, cfg.opts...), additionalOpts...)
			testFunc(t, newTestPool(t, workerCount, opts...))
		})
	}
}

// finishWithin fails the test if fn does not return within d.
func finishWithin(t *testing.T, d time.Duration, fn func()) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("no progress after %v", d)
	}
}

// fib is the textbook nested-join benchmark.
func fib(s Scope, n int) int {
	if n < 2 {
		return n
	}
	a, b := Join(s,
		func(s Scope) int { return fib(s, n-1) },
		func(s Scope) int { return fib(s, n-2) },
	)
	return a + b
}

// sumRange adds lo..hi-1 by recursive halving down to single elements.
func sumRange(s Scope, lo, hi int) int {
	if hi-lo <= 1 {
		if hi > lo {
			return lo
		}
		return 0
	}
	mid := lo + (hi-lo)/2
	a, b := Join(s,
		func(s Scope) int { return sumRange(s, lo, mid) },
		func(s Scope) int { return sumRange(s, mid, hi) },
	)
	return a + b
}
