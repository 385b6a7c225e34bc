package scale

import "time"

// Blinker toggles an indicator every half period without blocking.
// Call Update once per loop iteration.
type Blinker struct {
	out   Indicator
	half  time.Duration
	watch *Stopwatch
	on    bool
}

// NewBlinker returns a blinker for out that starts in the off level.
func NewBlinker(out Indicator, half time.Duration, clock Clock) *Blinker {
	return &Blinker{
		out:   out,
		half:  half,
		watch: NewStopwatch(clock),
	}
}

// Update flips the indicator if at least one half period has passed since the
// previous flip. It reports whether a flip happened.
func (b *Blinker) Update() bool {
	if b.watch.Elapsed() < b.half {
		return false
	}
	b.on = !b.on
	b.out.Set(b.on)
	b.watch.Reset()
	return true
}

// Stop forces the indicator to level and restarts the half-period timer.
func (b *Blinker) Stop(level bool) {
	b.on = level
	b.out.Set(level)
	b.watch.Reset()
}

// On reports the last level written.
func (b *Blinker) On() bool {
	return b.on
}
