//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the calling OS thread to cpuID modulo the number of CPUs.
// Must be called after runtime.LockOSThread().
func pinToCore(cpuID int) (int, error) {
	cpuID = normalize(cpuID)

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return 0, err
	}
	return cpuID, nil
}

// Pin locks the calling goroutine to its OS thread and restricts that thread
// to a single core chosen from workerID. The returned release func unlocks the
// thread and must be called from the same goroutine. A non-nil error means the
// thread is locked but not pinned.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	_, err = pinToCore(workerID)
	return runtime.UnlockOSThread, err
}
