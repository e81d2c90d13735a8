package bench

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/forkpool/pool"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Workers = []int{1, 2}
	cfg.Trials = 2
	cfg.Warmup = 0
	cfg.Sizes = Sizes{Fib: 18, Reduce: 5000, Sort: 3000, Span: 500}
	return cfg
}

func TestWorkloads_ParallelMatchesSequential(t *testing.T) {
	p, err := pool.New(4)
	require.NoError(t, err)
	defer p.Close()

	cfg := smallConfig()
	for _, w := range Workloads() {
		t.Run(w.Name, func(t *testing.T) {
			job := w.Prepare(w.Size(cfg.Sizes), cfg.Seed)

			want, err := job.Sequential()
			require.NoError(t, err)

			got, err := job.Parallel(p)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLookup(t *testing.T) {
	w, err := Lookup("sort")
	require.NoError(t, err)
	assert.Equal(t, "sort", w.Name)

	_, err = Lookup("matmul")
	assert.Error(t, err)
}

func TestRunner_Run(t *testing.T) {
	cfg := smallConfig()
	var progress bytes.Buffer

	fib, err := Lookup("fib")
	require.NoError(t, err)

	results, err := NewRunner(cfg, &progress, true).Run(context.Background(), []Workload{fib})
	require.NoError(t, err)
	require.Len(t, results, 3, "baseline plus one result per pool size")

	assert.Equal(t, sequentialWorkers, results[0].Workers)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Positive(t, r.Best)
		assert.GreaterOrEqual(t, r.Mean, r.Best)
		assert.Equal(t, results[0].Checksum, r.Checksum)
	}
	assert.Equal(t, 1, results[1].Workers)
	assert.Zero(t, results[1].Stolen, "a single worker never steals")
	assert.Contains(t, progress.String(), "fib")
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(smallConfig(), &bytes.Buffer{}, true).Run(ctx, Workloads())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderResults(t *testing.T) {
	color.NoColor = true

	results := []Result{
		{Workload: "fib", Workers: sequentialWorkers, Best: 10_000_000, Mean: 11_000_000},
		{Workload: "fib", Workers: 4, Best: 3_000_000, Mean: 3_500_000, Speedup: 3.33, Stolen: 12},
		{Workload: "sort", Workers: sequentialWorkers, Best: 1_000_000},
		{Workload: "sort", Workers: 2, Err: assert.AnError},
	}

	var out bytes.Buffer
	require.NoError(t, RenderResults(&out, results))

	text := out.String()
	assert.Contains(t, text, "FIB")
	assert.Contains(t, text, "SORT")
	assert.Contains(t, text, "3.33x")
	assert.Contains(t, text, "baseline")
	assert.Contains(t, text, "1 of 4 runs failed")
}

func TestCommands(t *testing.T) {
	color.NoColor = true

	t.Run("workload", func(t *testing.T) {
		var out bytes.Buffer
		root := NewRootCommand(&out)
		root.SetArgs([]string{"fib", "--size", "16", "--workers", "1,2", "--trials", "1", "--warmup", "0", "--ci"})

		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "FIB")
		assert.Contains(t, out.String(), "All 3 runs completed")
	})

	t.Run("compare subset", func(t *testing.T) {
		path := writeConfig(t, "workers = [2]\ntrials = 1\nwarmup = 0\n[sizes]\nreduce = 2000\nsort = 1000\n")

		var out bytes.Buffer
		root := NewRootCommand(&out)
		root.SetArgs([]string{"compare", "reduce", "sort", "--config", path, "--ci"})

		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "REDUCE")
		assert.Contains(t, out.String(), "SORT")
	})

	t.Run("unknown workload", func(t *testing.T) {
		root := NewRootCommand(&bytes.Buffer{})
		root.SetArgs([]string{"compare", "matmul"})
		assert.Error(t, root.Execute())
	})

	t.Run("invalid workers", func(t *testing.T) {
		root := NewRootCommand(&bytes.Buffer{})
		root.SetArgs([]string{"fib", "--workers", "0"})
		assert.ErrorIs(t, root.Execute(), pool.ErrInvalidParallelism)
	})

	t.Run("config round trip", func(t *testing.T) {
		var out bytes.Buffer
		root := NewRootCommand(&out)
		root.SetArgs([]string{"config", "--workers", "3,5", "--backoff", "jittered"})
		require.NoError(t, root.Execute())

		var decoded Config
		_, err := toml.Decode(out.String(), &decoded)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 5}, decoded.Workers)
		assert.Equal(t, "jittered", decoded.Idle.Backoff)
		assert.True(t, strings.Contains(out.String(), "[idle]"))
	})
}
