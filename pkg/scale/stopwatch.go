package scale

import "time"

// Clock provides the current time. The controller never calls time.Now
// directly so that tests can drive time by hand.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic system clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Stopwatch measures time since its last Reset.
type Stopwatch struct {
	clock Clock
	start time.Time
}

// NewStopwatch returns a stopwatch started at the current clock time.
func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Stopwatch{clock: clock, start: clock.Now()}
}

// Reset restarts the stopwatch from zero.
func (s *Stopwatch) Reset() {
	s.start = s.clock.Now()
}

// Elapsed returns the time since the last Reset.
func (s *Stopwatch) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}
