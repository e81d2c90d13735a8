package algorithms

import "time"

// BackoffType selects the sleep curve of an idle worker.
type BackoffType int

const (
	// BackoffExponential doubles the sleep every idle round (default).
	BackoffExponential BackoffType = iota
	// BackoffJittered adds random jitter so idle workers do not wake in lockstep.
	BackoffJittered
	// BackoffDecorrelated uses decorrelated jitter based on the previous sleep.
	BackoffDecorrelated
)

// String implements fmt.Stringer.
func (b BackoffType) String() string {
	switch b {
	case BackoffJittered:
		return "jittered"
	case BackoffDecorrelated:
		return "decorrelated"
	default:
		return "exponential"
	}
}

// ParseBackoffType maps a config name onto a BackoffType. Unknown names fall
// back to BackoffExponential and report ok == false.
func ParseBackoffType(name string) (BackoffType, bool) {
	switch name {
	case "", "exponential":
		return BackoffExponential, true
	case "jittered":
		return BackoffJittered, true
	case "decorrelated":
		return BackoffDecorrelated, true
	default:
		return BackoffExponential, false
	}
}

// NewSleepStrategy creates a sleep strategy for one idle worker.
func NewSleepStrategy(
	backoffType BackoffType,
	initialDelay, maxDelay time.Duration,
	jitterFactor float64,
) SleepStrategy {
	switch backoffType {
	case BackoffJittered:
		return newJitteredBackoff(initialDelay, maxDelay, jitterFactor)
	case BackoffDecorrelated:
		return newDecorrelatedJitterBackoff(initialDelay, maxDelay)
	default:
		return newExponentialBackoff(initialDelay, maxDelay)
	}
}
