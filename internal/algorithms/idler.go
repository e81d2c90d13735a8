package algorithms

import (
	"runtime"
	"time"
)

// Phase reports what an Idler did on its last call to Idle.
type Phase int

const (
	PhaseSpin Phase = iota
	PhaseYield
	PhaseSleep
)

func (p Phase) String() string {
	switch p {
	case PhaseYield:
		return "yield"
	case PhaseSleep:
		return "sleep"
	default:
		return "spin"
	}
}

// Idler escalates an idle worker from spinning, to yielding the processor,
// to sleeping, as consecutive searches for work come back empty.
//
// Progression for spinLimit=20, yieldLimit=10:
//   - misses 1-20:  return immediately and search again
//   - misses 21-30: runtime.Gosched
//   - misses 31+:   sleep for SleepStrategy.NextDelay(misses-31)
type Idler struct {
	spinLimit  int
	yieldLimit int
	sleep      SleepStrategy
	misses     int
	sleepFn    func(time.Duration)
}

// NewIdler creates an Idler. Negative limits are treated as zero; a nil
// strategy never sleeps and keeps yielding instead.
func NewIdler(spinLimit, yieldLimit int, sleep SleepStrategy) *Idler {
	return &Idler{
		spinLimit:  max(spinLimit, 0),
		yieldLimit: max(yieldLimit, 0),
		sleep:      sleep,
		sleepFn:    time.Sleep,
	}
}

// SetSleeper replaces time.Sleep, letting the owner cut sleeps short when
// new work arrives.
func (i *Idler) SetSleeper(fn func(time.Duration)) {
	if fn != nil {
		i.sleepFn = fn
	}
}

// Idle records one empty search and backs off accordingly.
func (i *Idler) Idle() Phase {
	i.misses++

	switch {
	case i.misses <= i.spinLimit:
		return PhaseSpin

	case i.misses <= i.spinLimit+i.yieldLimit || i.sleep == nil:
		runtime.Gosched()
		return PhaseYield

	default:
		round := i.misses - i.spinLimit - i.yieldLimit - 1
		if d := i.sleep.NextDelay(round); d > 0 {
			i.sleepFn(d)
		}
		return PhaseSleep
	}
}

// Reset is called when work is found.
func (i *Idler) Reset() {
	if i.misses == 0 {
		return
	}
	i.misses = 0
	if i.sleep != nil {
		i.sleep.Reset()
	}
}

// Misses returns the number of consecutive empty searches.
func (i *Idler) Misses() int {
	return i.misses
}
