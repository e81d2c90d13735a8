package bench

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/forkpool/pool"
)

// sequentialWorkers marks the sequential baseline in results.
const sequentialWorkers = 0

// Result is the timing of one workload at one pool size.
type Result struct {
	Workload string
	Workers  int // sequentialWorkers for the baseline
	Best     time.Duration
	Mean     time.Duration
	Speedup  float64 // baseline best / this best
	Stolen   uint64
	Checksum uint64
	Err      error
}

// Runner times workloads across the configured pool sizes.
type Runner struct {
	cfg Config
	out io.Writer
	ci  bool // plain progress lines instead of a progress bar

	bar   *progressbar.ProgressBar
	lines rate.Sometimes
	done  int
	total int
}

// NewRunner creates a runner writing progress to out.
func NewRunner(cfg Config, out io.Writer, ci bool) *Runner {
	return &Runner{
		cfg:   cfg,
		out:   out,
		ci:    ci,
		lines: rate.Sometimes{First: 1, Interval: 500 * time.Millisecond},
	}
}

// Run benchmarks every workload and returns one Result per workload and pool
// size, baseline first. It stops early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, workloads []Workload) ([]Result, error) {
	jobs, err := r.prepare(ctx, workloads)
	if err != nil {
		return nil, err
	}

	runs := r.cfg.Warmup + r.cfg.Trials
	r.total = len(workloads) * (len(r.cfg.Workers) + 1) * runs
	r.startProgress()
	defer r.finishProgress()

	var results []Result
	for i, w := range workloads {
		baseline := r.runSequential(ctx, w.Name, jobs[i])
		results = append(results, baseline)
		if err := ctx.Err(); err != nil {
			return results, err
		}

		for _, n := range r.cfg.Workers {
			res := r.runParallel(ctx, w.Name, n, jobs[i])
			if res.Err == nil && baseline.Err == nil {
				if res.Checksum != baseline.Checksum {
					res.Err = fmt.Errorf("checksum %x differs from sequential %x", res.Checksum, baseline.Checksum)
				} else if res.Best > 0 {
					res.Speedup = float64(baseline.Best) / float64(res.Best)
				}
			}
			results = append(results, res)

			if err := ctx.Err(); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}

// prepare builds every workload's input concurrently.
func (r *Runner) prepare(ctx context.Context, workloads []Workload) ([]Job, error) {
	jobs := make([]Job, len(workloads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, w := range workloads {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			jobs[i] = w.Prepare(w.Size(r.cfg.Sizes), r.cfg.Seed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("preparing workloads: %w", err)
	}
	return jobs, nil
}

func (r *Runner) runSequential(ctx context.Context, name string, job Job) Result {
	res := Result{Workload: name, Workers: sequentialWorkers}
	r.timeRuns(ctx, &res, job.Sequential)
	return res
}

func (r *Runner) runParallel(ctx context.Context, name string, workers int, job Job) (res Result) {
	res = Result{Workload: name, Workers: workers}

	p, err := pool.New(workers, r.cfg.PoolOptions()...)
	if err != nil {
		res.Err = err
		r.step(name, workers, r.cfg.Warmup+r.cfg.Trials)
		return res
	}
	defer func() {
		if err := p.Close(); err != nil && res.Err == nil {
			res.Err = err
		}
	}()

	r.timeRuns(ctx, &res, func() (uint64, error) {
		sum, err := pool.TryRun(p, func(s pool.Scope) result {
			v, err := job.Parallel(s)
			return result{v, err}
		})
		if err != nil {
			return 0, err
		}
		return sum.value, sum.err
	})
	res.Stolen = p.Stats().Stolen
	return res
}

type result struct {
	value uint64
	err   error
}

// timeRuns executes fn for the warmup rounds and then the timed trials,
// filling in res. The checksum must not change between runs.
func (r *Runner) timeRuns(ctx context.Context, res *Result, fn func() (uint64, error)) {
	var total time.Duration

	for i := range r.cfg.Warmup + r.cfg.Trials {
		if ctx.Err() != nil {
			res.Err = ctx.Err()
			return
		}

		start := time.Now()
		sum, err := fn()
		elapsed := time.Since(start)
		r.step(res.Workload, res.Workers, 1)

		if err != nil {
			res.Err = err
			return
		}
		if i > 0 && sum != res.Checksum {
			res.Err = fmt.Errorf("run %d: checksum %x, previous %x", i, sum, res.Checksum)
			return
		}
		res.Checksum = sum

		if i < r.cfg.Warmup {
			continue
		}
		total += elapsed
		if res.Best == 0 || elapsed < res.Best {
			res.Best = elapsed
		}
	}

	res.Mean = total / time.Duration(r.cfg.Trials)
}

func (r *Runner) startProgress() {
	if r.ci {
		return
	}
	r.bar = progressbar.NewOptions(r.total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription("Benchmarking"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *Runner) step(name string, workers, n int) {
	r.done += n

	if r.bar != nil {
		r.bar.Describe(fmt.Sprintf("%-6s %s", name, workerLabel(workers)))
		_ = r.bar.Add(n)
		return
	}

	r.lines.Do(func() {
		fmt.Fprintf(r.out, "[%d/%d] %s %s\n", r.done, r.total, name, workerLabel(workers))
	})
}

func (r *Runner) finishProgress() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

func workerLabel(workers int) string {
	if workers == sequentialWorkers {
		return "sequential"
	}
	return fmt.Sprintf("%d workers", workers)
}
