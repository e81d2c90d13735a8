//go:build windows

package cpu

import (
	"runtime"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// pinToCore pins the current OS thread to cpuID modulo the number of CPUs.
// Must be called after runtime.LockOSThread().
func pinToCore(cpuID int) (int, error) {
	cpuID = normalize(cpuID)

	mask := uintptr(1) << uint(cpuID)
	prev, _, err := setThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if prev == 0 {
		return 0, err
	}
	return cpuID, nil
}

// Pin locks the calling goroutine to its OS thread and restricts that thread
// to a single core chosen from workerID.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	_, err = pinToCore(workerID)
	return runtime.UnlockOSThread, err
}
