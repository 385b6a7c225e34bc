// Package trend keeps a sliding window of scale status lines for plotting and
// marks the overweight alarms seen inside it.
package trend

import (
	"sync"
	"time"

	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/scale"
)

// Alarm is one stretch of consecutive Alarming statuses.
type Alarm struct {
	Start time.Time
	End   time.Time // timestamp of the last Alarming status seen
	Peak  float64   // highest weight reported during the alarm (g)
}

// Trend buffers statuses newer than its window, oldest first.
type Trend struct {
	window time.Duration

	mu       sync.RWMutex
	statuses []link.Status
	alarms   []Alarm
	inAlarm  bool
	shutdown bool

	cbMu      sync.RWMutex
	callbacks []func(statuses []link.Status, alarms []Alarm)
}

// New creates a trend keeping window worth of statuses.
func New(window time.Duration) *Trend {
	return &Trend{window: window}
}

// Process consumes input until it is closed, notifying callbacks after every
// status. No callbacks run after input closes.
func (t *Trend) Process(input <-chan link.Status) {
	for s := range input {
		t.add(s)
		t.notify()
	}

	t.mu.Lock()
	t.shutdown = true
	t.mu.Unlock()
}

// ResetShutdown re-enables callbacks before a new Process run.
func (t *Trend) ResetShutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shutdown = false
}

// Clear drops all buffered data.
func (t *Trend) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses = nil
	t.alarms = nil
	t.inAlarm = false
}

func (t *Trend) add(s link.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.statuses = append(t.statuses, s)

	cutoff := s.Timestamp.Add(-t.window)
	drop := 0
	for drop < len(t.statuses) && !t.statuses[drop].Timestamp.After(cutoff) {
		drop++
	}
	if drop > 0 {
		t.statuses = append(t.statuses[:0], t.statuses[drop:]...)
	}

	kept := t.alarms[:0]
	for _, a := range t.alarms {
		if a.End.After(cutoff) {
			kept = append(kept, a)
		}
	}
	t.alarms = kept

	if s.State != scale.StateAlarming {
		t.inAlarm = false
		return
	}
	if t.inAlarm && len(t.alarms) > 0 {
		last := &t.alarms[len(t.alarms)-1]
		last.End = s.Timestamp
		last.Peak = max(last.Peak, s.Weight)
		return
	}
	t.inAlarm = true
	t.alarms = append(t.alarms, Alarm{Start: s.Timestamp, End: s.Timestamp, Peak: s.Weight})
}

// Statuses returns a copy of the buffered statuses, oldest first.
func (t *Trend) Statuses() []link.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]link.Status, len(t.statuses))
	copy(result, t.statuses)
	return result
}

// Alarms returns a copy of the alarms overlapping the window.
func (t *Trend) Alarms() []Alarm {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Alarm, len(t.alarms))
	copy(result, t.alarms)
	return result
}

// OnUpdate registers a callback that receives copies of the buffers.
func (t *Trend) OnUpdate(callback func(statuses []link.Status, alarms []Alarm)) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, callback)
}

func (t *Trend) notify() {
	t.mu.RLock()
	if t.shutdown {
		t.mu.RUnlock()
		return
	}
	statuses := make([]link.Status, len(t.statuses))
	copy(statuses, t.statuses)
	alarms := make([]Alarm, len(t.alarms))
	copy(alarms, t.alarms)
	t.mu.RUnlock()

	t.cbMu.RLock()
	callbacks := make([]func([]link.Status, []Alarm), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(statuses, alarms)
		}
	}
}

// Downsample decimates src to at most maxPoints entries, reusing dst when it
// has the capacity.
func Downsample(dst, src []link.Status, maxPoints int) []link.Status {
	if maxPoints <= 0 || len(src) <= maxPoints {
		if cap(dst) < len(src) {
			dst = make([]link.Status, len(src))
		}
		dst = dst[:len(src)]
		copy(dst, src)
		return dst
	}

	if cap(dst) < maxPoints {
		dst = make([]link.Status, 0, maxPoints)
	}
	dst = dst[:0]

	step := float64(len(src)) / float64(maxPoints)
	for i := range maxPoints {
		dst = append(dst, src[int(float64(i)*step)])
	}
	return dst
}
