package algorithms

import (
	"math/rand"
	"time"
)

const (
	maxRounds = 63 // Prevent overflow in backoff calculation
)

// decorrelatedJitterBackoff implements decorrelated jitter:
// sleep = min(maxDelay, random(initialDelay, prevSleep * 3))
//
// Each sleep depends on the previous one rather than on the round number, so
// workers that went idle at the same moment drift apart quickly.
//
// Reference: AWS Architecture Blog - "Exponential Backoff And Jitter" (Marc Brooker, 2015)
type decorrelatedJitterBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	prevDelay    time.Duration
	rng          *rand.Rand
}

func newDecorrelatedJitterBackoff(initialDelay, maxDelay time.Duration) *decorrelatedJitterBackoff {
	return &decorrelatedJitterBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		prevDelay:    initialDelay,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- crypto rand not needed for idle jitter
	}
}

func (djb *decorrelatedJitterBackoff) NextDelay(round int) time.Duration {
	if round <= 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	upperBound := min(time.Duration(float64(djb.prevDelay)*3), djb.maxDelay)

	delayRange := upperBound - djb.initialDelay
	if delayRange <= 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	delay := djb.initialDelay + time.Duration(djb.rng.Int63n(int64(delayRange)))
	djb.prevDelay = delay
	return delay
}

func (djb *decorrelatedJitterBackoff) Reset() {
	djb.prevDelay = djb.initialDelay
}

// jitteredBackoff is exponential backoff scaled by a random factor in
// [1-jitterFactor, 1+jitterFactor].
type jitteredBackoff struct {
	initialDelay, maxDelay time.Duration
	jitterFactor           float64
	rng                    *rand.Rand
}

// newJitteredBackoff creates a jittered strategy. jitterFactor is clamped to [0, 1].
func newJitteredBackoff(initialDelay, maxDelay time.Duration, jitterFactor float64) *jitteredBackoff {
	return &jitteredBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		jitterFactor: clamp(jitterFactor, 0, 1),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- crypto rand not needed for idle jitter
	}
}

func (jb *jitteredBackoff) NextDelay(round int) time.Duration {
	if round < 0 {
		return 0
	}

	baseDelay := calcExponentialDelay(round, jb.initialDelay, jb.maxDelay)
	jitterMultiplier := 1.0 + (jb.rng.Float64()*2-1)*jb.jitterFactor

	return clamp(time.Duration(float64(baseDelay)*jitterMultiplier), 0, jb.maxDelay)
}

func (jb *jitteredBackoff) Reset() {}

// exponentialBackoff sleeps initialDelay * 2^round, capped at maxDelay.
type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

func newExponentialBackoff(initialDelay, maxDelay time.Duration) *exponentialBackoff {
	return &exponentialBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

func (eb *exponentialBackoff) NextDelay(round int) time.Duration {
	return calcExponentialDelay(round, eb.initialDelay, eb.maxDelay)
}

func (eb *exponentialBackoff) Reset() {}

func calcExponentialDelay(round int, initialDelay, maxDelay time.Duration) time.Duration {
	if round < 0 {
		return 0
	}

	if round >= maxRounds {
		return maxDelay
	}

	delay := time.Duration(int64(1)<<uint(round)) * initialDelay
	if delay > maxDelay || delay < 0 {
		return maxDelay
	}

	return delay
}

func clamp[T float64 | time.Duration](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
