package bench

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/forkpool/pool"
)

var errRunsFailed = errors.New("some benchmark runs failed")

// flags holds values bound to the persistent flags of the root command.
type flags struct {
	configPath string
	workers    []int
	trials     int
	warmup     int
	backoff    string
	pin        bool
	ci         bool
	noColor    bool
	size       int
}

// NewRootCommand builds the forkbench command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "forkbench",
		Short: "Benchmark the forkpool work-stealing scheduler",
		Long: `forkbench times divide-and-conquer workloads on work-stealing pools of
several sizes and compares them with a sequential baseline.

Settings come from defaults, then an optional TOML file (--config), then flags.

Examples:
  forkbench fib --size 30
  forkbench sort --workers 1,4,8 --trials 5
  forkbench compare --config bench.toml --ci`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if f.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "TOML config file")
	pf.IntSliceVarP(&f.workers, "workers", "w", nil, "pool sizes to benchmark (default: 1,2,4.. up to GOMAXPROCS)")
	pf.IntVarP(&f.trials, "trials", "t", 0, "timed runs per pool size")
	pf.IntVar(&f.warmup, "warmup", -1, "untimed runs before the trials")
	pf.StringVar(&f.backoff, "backoff", "", "idle backoff: exponential, jittered or decorrelated")
	pf.BoolVar(&f.pin, "pin", false, "pin workers to CPU cores")
	pf.BoolVar(&f.ci, "ci", false, "plain progress output for non-interactive runs")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colored output")

	for _, w := range Workloads() {
		root.AddCommand(newWorkloadCommand(f, w))
	}
	root.AddCommand(newCompareCommand(f), newConfigCommand(f))

	return root
}

func newWorkloadCommand(f *flags, w Workload) *cobra.Command {
	cmd := &cobra.Command{
		Use:   w.Name,
		Short: "Benchmark " + w.Description,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f, []Workload{w})
		},
	}
	cmd.Flags().IntVarP(&f.size, "size", "n", 0, "problem size (default from config)")
	return cmd
}

func newCompareCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [workload...]",
		Short: "Benchmark several workloads in one go (default: all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			workloads := Workloads()
			if len(args) > 0 {
				workloads = workloads[:0:0]
				for _, name := range args {
					w, err := Lookup(name)
					if err != nil {
						return err
					}
					workloads = append(workloads, w)
				}
			}
			return run(cmd, f, workloads)
		},
	}
}

func newConfigCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(f, nil)
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}

// resolveConfig layers defaults, the config file and flags. w, when set, is
// the single workload whose size --size overrides.
func resolveConfig(f *flags, w *Workload) (Config, error) {
	cfg := DefaultConfig()
	if f.configPath != "" {
		loaded, err := LoadConfig(f.configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if len(f.workers) > 0 {
		cfg.Workers = f.workers
	}
	if f.trials > 0 {
		cfg.Trials = f.trials
	}
	if f.warmup >= 0 {
		cfg.Warmup = f.warmup
	}
	if f.backoff != "" {
		cfg.Idle.Backoff = f.backoff
	}
	if f.pin {
		cfg.Pin = true
	}
	if w != nil && f.size > 0 {
		setSize(&cfg.Sizes, w.Name, f.size)
	}

	return cfg, cfg.Validate()
}

func setSize(s *Sizes, name string, n int) {
	switch name {
	case "fib":
		s.Fib = n
	case "reduce":
		s.Reduce = n
	case "sort":
		s.Sort = n
	case "span":
		s.Span = n
	}
}

func run(cmd *cobra.Command, f *flags, workloads []Workload) error {
	var single *Workload
	if len(workloads) == 1 {
		single = &workloads[0]
	}

	cfg, err := resolveConfig(f, single)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	_, _ = bold.Fprintf(out, "forkbench: %d workload(s), pool sizes %v, %d trial(s), %s backoff\n",
		len(workloads), cfg.Workers, cfg.Trials, cfg.Idle.Backoff)

	results, err := NewRunner(cfg, cmd.ErrOrStderr(), f.ci).Run(ctx, workloads)
	if rerr := RenderResults(out, results); rerr != nil {
		return rerr
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			return errRunsFailed
		}
	}
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCommand(os.Stdout)
	if err := root.ExecuteContext(context.Background()); err != nil {
		_, _ = red.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, pool.ErrInvalidParallelism) {
			return 2
		}
		return 1
	}
	return 0
}
