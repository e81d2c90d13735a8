package bench

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
	cyan  = color.New(color.FgCyan)
)

// RenderResults prints one table per workload, followed by failures.
func RenderResults(w io.Writer, results []Result) error {
	for _, group := range groupByWorkload(results) {
		printSectionHeader(w, strings.ToUpper(group[0].Workload))

		table := tablewriter.NewWriter(w)
		table.Header("Workers", "Best", "Mean", "Speedup", "Steals", "Status")

		for _, r := range group {
			if err := table.Append(
				workerLabel(r.Workers),
				formatDuration(r.Best),
				formatDuration(r.Mean),
				formatSpeedup(r),
				formatSteals(r),
				formatStatus(r),
			); err != nil {
				return err
			}
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("rendering %s table: %w", group[0].Workload, err)
		}
	}

	printFooter(w, results)
	return nil
}

func groupByWorkload(results []Result) [][]Result {
	var groups [][]Result
	for _, r := range results {
		n := len(groups)
		if n > 0 && groups[n-1][0].Workload == r.Workload {
			groups[n-1] = append(groups[n-1], r)
			continue
		}
		groups = append(groups, []Result{r})
	}
	return groups
}

func printSectionHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "═══════════════════════════════════════════")
	_, _ = bold.Fprintln(w, title)
	_, _ = bold.Fprintln(w, "═══════════════════════════════════════════")
}

func printFooter(w io.Writer, results []Result) {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	fmt.Fprintln(w)
	if failed == 0 {
		_, _ = green.Fprintf(w, "All %d runs completed\n", len(results))
		return
	}

	_, _ = red.Fprintf(w, "%d of %d runs failed:\n", failed, len(results))
	for _, r := range results {
		if r.Err != nil {
			_, _ = red.Fprintf(w, "  • %s (%s): %v\n", r.Workload, workerLabel(r.Workers), r.Err)
		}
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d == 0:
		return "-"
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	default:
		return d.Round(100 * time.Microsecond).String()
	}
}

func formatSpeedup(r Result) string {
	if r.Workers == sequentialWorkers {
		return "baseline"
	}
	if r.Speedup == 0 {
		return "-"
	}
	s := fmt.Sprintf("%.2fx", r.Speedup)
	if r.Speedup >= 1 {
		return green.Sprint(s)
	}
	return red.Sprint(s)
}

func formatSteals(r Result) string {
	if r.Workers == sequentialWorkers {
		return "-"
	}
	return fmt.Sprintf("%d", r.Stolen)
}

func formatStatus(r Result) string {
	if r.Err != nil {
		return red.Sprint("failed")
	}
	return cyan.Sprint("ok")
}
