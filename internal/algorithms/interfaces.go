package algorithms

import "time"

// SleepStrategy decides how long an idle worker sleeps once spinning and
// yielding have stopped turning up work.
//
// Implementations are owned by a single worker and are not safe for
// concurrent use.
type SleepStrategy interface {
	// NextDelay returns the sleep for the given idle round. round is 0-indexed
	// and counts consecutive empty searches past the yield phase.
	NextDelay(round int) time.Duration

	// Reset forgets any history. It is called as soon as the worker finds work.
	Reset()
}
