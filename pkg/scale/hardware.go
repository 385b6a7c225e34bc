package scale

import "sync/atomic"

// Sensor reads the load cell. Every call samples the hardware again and
// returns a volt-equivalent value in the 0..VRef range.
type Sensor interface {
	Voltage() (float64, error)
}

// SensorFunc adapts a plain function to Sensor.
type SensorFunc func() (float64, error)

// Voltage calls f.
func (f SensorFunc) Voltage() (float64, error) { return f() }

// Button is a level-polled digital input.
type Button interface {
	Pressed() bool
}

// Indicator is a binary output such as an LED or the alarm buzzer.
type Indicator interface {
	Set(on bool)
}

// Display is a write-only two-row text panel with a tinted backlight.
type Display interface {
	Clear()
	SetCursor(col, row int)
	Print(text string)
	SetTint(r, g, b uint8)
}

// Hardware bundles the collaborators the controller drives.
type Hardware struct {
	Sensor  Sensor
	Tare    Button
	Status  Indicator // blinks while calibrating or alarming
	Ready   Indicator // lit while measuring
	Alarm   Indicator
	Display Display
}

// RemoteButton combines a physical button with presses requested over a
// command link. A requested press reads as held for exactly one tick and is
// released on the next, so it yields one press edge in Idle or Calibrating
// and nothing in states that do not poll the button. Press may be called
// from any goroutine; Pressed and Step belong to the loop goroutine.
type RemoteButton struct {
	Button Button // physical input, nil when there is none

	pending atomic.Bool
	held    bool
}

// Press queues one remote press.
func (b *RemoteButton) Press() {
	b.pending.Store(true)
}

// Pressed reports the physical level or-ed with a held remote press.
func (b *RemoteButton) Pressed() bool {
	if b.held {
		return true
	}
	return b.Button != nil && b.Button.Pressed()
}

// Step must be called after every tick. A held press is released; otherwise a
// queued press is held for the next tick.
func (b *RemoteButton) Step() {
	if b.held {
		b.held = false
		return
	}
	b.held = b.pending.Swap(false)
}
