package pool

import (
	"errors"
	"runtime"
	"testing"
	"time"
)

// resetGlobal tears down the global pool so each test starts fresh.
func resetGlobal(t *testing.T) {
	t.Helper()

	reset := func() {
		global.mu.Lock()
		defer global.mu.Unlock()
		if p := global.pool.Load(); p != nil {
			_ = p.Close()
		}
		global.pool.Store(nil)
		global.configured = 0
	}

	reset()
	t.Cleanup(reset)
}

func TestConfigureParallelism(t *testing.T) {
	t.Run("rejects non-positive", func(t *testing.T) {
		resetGlobal(t)

		for _, n := range []int{0, -3} {
			if err := ConfigureParallelism(n); !errors.Is(err, ErrInvalidParallelism) {
				t.Errorf("ConfigureParallelism(%d): expected ErrInvalidParallelism, got %v", n, err)
			}
		}
	})

	t.Run("sizes the global pool", func(t *testing.T) {
		resetGlobal(t)

		if err := ConfigureParallelism(3); err != nil {
			t.Fatalf("ConfigureParallelism(3) failed: %v", err)
		}
		if err := ConfigureParallelism(5); err != nil {
			t.Fatalf("reconfiguring before first use failed: %v", err)
		}

		if got := Global().Size(); got != 5 {
			t.Errorf("Global().Size() = %d, want 5", got)
		}
	})

	t.Run("fails once started", func(t *testing.T) {
		resetGlobal(t)

		p := Global()
		if err := ConfigureParallelism(2); !errors.Is(err, ErrGlobalPoolStarted) {
			t.Errorf("expected ErrGlobalPoolStarted, got %v", err)
		}
		if Global() != p {
			t.Error("global pool was replaced")
		}
	})
}

func TestGlobal_SizeResolution(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		env        string
		want       int
	}{
		{"configured wins over env", 2, "7", 2},
		{"env when unconfigured", 0, "3", 3},
		{"invalid env falls back", 0, "lots", runtime.GOMAXPROCS(0)},
		{"zero env falls back", 0, "0", runtime.GOMAXPROCS(0)},
		{"nothing set", 0, "", runtime.GOMAXPROCS(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobal(t)
			t.Setenv(EnvNumWorkers, tt.env)

			if tt.configured > 0 {
				if err := ConfigureParallelism(tt.configured); err != nil {
					t.Fatal(err)
				}
			}

			if got := Global().Size(); got != tt.want {
				t.Errorf("Global().Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGlobalJoin(t *testing.T) {
	resetGlobal(t)

	a, b := GlobalJoin(
		func(s Scope) int { return fib(s, 10) },
		func(s Scope) int { return fib(s, 15) },
	)
	if a != 55 || b != 610 {
		t.Errorf("GlobalJoin = (%d, %d), want (55, 610)", a, b)
	}

	if first := Global(); Global() != first {
		t.Error("Global should return the same pool every time")
	}
}

// globalFib recurses through GlobalJoin at every level.
func globalFib(n int) int {
	if n < 2 {
		return n
	}
	a, b := GlobalJoin(
		func(Scope) int { return globalFib(n - 1) },
		func(Scope) int { return globalFib(n - 2) },
	)
	return a + b
}

func TestGlobalJoin_Recursive(t *testing.T) {
	resetGlobal(t)
	if err := ConfigureParallelism(1); err != nil {
		t.Fatalf("ConfigureParallelism(1) failed: %v", err)
	}

	var got int
	finishWithin(t, 10*time.Second, func() { got = globalFib(12) })
	if got != 144 {
		t.Errorf("globalFib(12) = %d, want 144", got)
	}
}

func TestGlobal_Concurrent(t *testing.T) {
	resetGlobal(t)

	pools := make(chan *Pool, 8)
	for range 8 {
		go func() { pools <- Global() }()
	}

	first := <-pools
	for range 7 {
		if p := <-pools; p != first {
			t.Fatal("concurrent Global calls created different pools")
		}
	}
}
