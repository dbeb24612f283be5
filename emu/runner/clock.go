package runner

import "time"

// TimerHz is the fixed rate of the delay and sound timers.
const TimerHz = 60

// a burst of catch up work never covers more than this much wall time
const maxCatchUp = 250 * time.Millisecond

// clock turns elapsed wall time into whole instruction steps and whole
// timer ticks. The two accumulators are independent and carry their
// remainders between calls.
type clock struct {
	stepEvery time.Duration
	tickEvery time.Duration
	stepAcc   time.Duration
	tickAcc   time.Duration
}

func newClock(stepHz, tickHz int) clock {
	return clock{
		stepEvery: time.Second / time.Duration(stepHz),
		tickEvery: time.Second / time.Duration(tickHz),
	}
}

func (c *clock) advance(elapsed time.Duration) (steps, ticks int) {
	if elapsed > maxCatchUp {
		elapsed = maxCatchUp
	}
	if elapsed < 0 {
		elapsed = 0
	}
	c.stepAcc += elapsed
	c.tickAcc += elapsed

	steps = int(c.stepAcc / c.stepEvery)
	c.stepAcc -= time.Duration(steps) * c.stepEvery
	ticks = int(c.tickAcc / c.tickEvery)
	c.tickAcc -= time.Duration(ticks) * c.tickEvery
	return steps, ticks
}

func (c *clock) reset() {
	c.stepAcc, c.tickAcc = 0, 0
}
