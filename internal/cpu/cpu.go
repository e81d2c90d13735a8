// Package cpu binds worker goroutines to OS threads and, where the platform
// allows it, to individual cores.
package cpu

import "runtime"

// NumCPU returns the number of logical CPUs available.
func NumCPU() int {
	return runtime.NumCPU()
}

// normalize maps any worker index onto [0, NumCPU).
func normalize(cpuID int) int {
	n := runtime.NumCPU()
	cpuID %= n
	if cpuID < 0 {
		cpuID += n
	}
	return cpuID
}
