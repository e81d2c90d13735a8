package bench

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/utkarsh5026/forkpool/pool"
)

// Config is the forkbench configuration. Every field can be set from a TOML
// file and most from flags; flags win.
//
// Example file:
//
//	workers = [1, 2, 4, 8]
//	trials  = 5
//
//	[idle]
//	backoff = "jittered"
//	initial = "20us"
//	max     = "2ms"
type Config struct {
	Workers []int `toml:"workers"`
	Trials  int   `toml:"trials"`
	Warmup  int   `toml:"warmup"`
	Seed    int64 `toml:"seed"`
	Pin     bool  `toml:"pin"`

	Idle IdleConfig `toml:"idle"`

	Sizes Sizes `toml:"sizes"`
}

// IdleConfig maps onto pool.WithIdleBackoff and friends.
type IdleConfig struct {
	Backoff string        `toml:"backoff"`
	Initial time.Duration `toml:"initial"`
	Max     time.Duration `toml:"max"`
	Spin    int           `toml:"spin"`
	Yield   int           `toml:"yield"`
}

// Sizes sets the problem size of each workload.
type Sizes struct {
	Fib    int `toml:"fib"`
	Reduce int `toml:"reduce"`
	Sort   int `toml:"sort"`
	Span   int `toml:"span"`
}

var errInvalidConfig = errors.New("invalid config")

// DefaultConfig benchmarks 1 worker and every power of two up to GOMAXPROCS.
func DefaultConfig() Config {
	var workers []int
	for n := 1; n <= runtime.GOMAXPROCS(0); n *= 2 {
		workers = append(workers, n)
	}

	return Config{
		Workers: workers,
		Trials:  3,
		Warmup:  1,
		Seed:    42,
		Idle: IdleConfig{
			Backoff: pool.BackoffExponential.String(),
			Spin:    -1,
			Yield:   -1,
		},
		Sizes: Sizes{
			Fib:    32,
			Reduce: 10_000_000,
			Sort:   2_000_000,
			Span:   200_000,
		},
	}
}

// LoadConfig reads path on top of the defaults. Keys the file sets but
// Config does not know are reported as errors, catching typos early.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", errInvalidConfig, path, strings.Join(keys, ", "))
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if len(c.Workers) == 0 {
		return fmt.Errorf("%w: no worker counts", errInvalidConfig)
	}
	for _, n := range c.Workers {
		if n < 1 {
			return fmt.Errorf("%w: worker count %d: %w", errInvalidConfig, n, pool.ErrInvalidParallelism)
		}
	}
	if c.Trials < 1 {
		return fmt.Errorf("%w: trials must be at least 1, got %d", errInvalidConfig, c.Trials)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("%w: warmup must not be negative, got %d", errInvalidConfig, c.Warmup)
	}
	if _, ok := pool.ParseBackoffType(c.Idle.Backoff); !ok {
		return fmt.Errorf("%w: unknown backoff %q", errInvalidConfig, c.Idle.Backoff)
	}
	return nil
}

// PoolOptions translates the idle settings into pool options. Unset values
// keep the pool defaults.
func (c Config) PoolOptions() []pool.Option {
	kind, _ := pool.ParseBackoffType(c.Idle.Backoff)
	opts := []pool.Option{
		pool.WithIdleBackoff(kind, c.Idle.Initial, c.Idle.Max),
	}

	if c.Idle.Spin >= 0 {
		opts = append(opts, pool.WithSpinLimit(c.Idle.Spin))
	}
	if c.Idle.Yield >= 0 {
		opts = append(opts, pool.WithYieldLimit(c.Idle.Yield))
	}
	if c.Pin {
		opts = append(opts, pool.WithPinnedWorkers())
	}
	return opts
}
