//go:build darwin

package cpu

import "runtime"

// Pin locks the calling goroutine to its OS thread.
// macOS exposes no API to pin a thread to a core, so only the lock applies.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}
