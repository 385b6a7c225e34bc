package scale

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSensor struct {
	voltage float64
	err     error
	reads   int
}

func (s *fakeSensor) Voltage() (float64, error) {
	s.reads++
	return s.voltage, s.err
}

type fakeButton struct {
	pressed bool
}

func (b *fakeButton) Pressed() bool { return b.pressed }

type fakeIndicator struct {
	on    bool
	flips int
}

func (i *fakeIndicator) Set(on bool) {
	if i.on != on {
		i.flips++
	}
	i.on = on
}

type fakeDisplay struct {
	lines [2]string
	row   int
	tint  Tint
}

func (d *fakeDisplay) Clear() { d.lines = [2]string{}; d.row = 0 }
func (d *fakeDisplay) SetCursor(_, row int) { d.row = row }
func (d *fakeDisplay) Print(text string) { d.lines[d.row] += text }
func (d *fakeDisplay) SetTint(r, g, b uint8) { d.tint = Tint{R: r, G: g, B: b} }

type rig struct {
	clock   *fakeClock
	sensor  *fakeSensor
	tare    *fakeButton
	status  *fakeIndicator
	ready   *fakeIndicator
	alarm   *fakeIndicator
	display *fakeDisplay
	ctrl    *Controller
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newRig() *rig {
	r := &rig{
		clock:   newFakeClock(),
		sensor:  &fakeSensor{},
		tare:    &fakeButton{},
		status:  &fakeIndicator{},
		ready:   &fakeIndicator{},
		alarm:   &fakeIndicator{},
		display: &fakeDisplay{},
	}
	hw := Hardware{
		Sensor:  r.sensor,
		Tare:    r.tare,
		Status:  r.status,
		Ready:   r.ready,
		Alarm:   r.alarm,
		Display: r.display,
	}
	r.ctrl = New(DefaultThresholds(), hw, WithClock(r.clock), WithLogger(quietLogger()))
	return r
}

// tick advances the clock by one pacing period and runs one iteration.
func (r *rig) tick() {
	r.clock.Advance(r.ctrl.th.Pacing)
	r.ctrl.Tick()
}

// press holds the button for one tick and releases it. The release is only
// seen by the next tick.
func (r *rig) press() {
	r.tare.pressed = true
	r.tick()
	r.tare.pressed = false
}

// calibrate runs the two-press sequence with the given voltages and leaves
// the controller in Measuring on success.
func (r *rig) calibrate(zero, reference float64) {
	r.tick() // idle entry
	r.sensor.voltage = zero
	r.press() // Idle -> Calibrating
	r.tick()  // zero point captured
	r.sensor.voltage = reference
	r.press() // reference captured
}
