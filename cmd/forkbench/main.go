// forkbench benchmarks the forkpool work-stealing scheduler.
package main

import (
	"os"

	"github.com/utkarsh5026/forkpool/internal/bench"
)

func main() {
	os.Exit(bench.Execute())
}
