package scale

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// LimitTolerance absorbs float residue in the weight computation when it is
// compared with the limit (g). A weight the limit exactly reproduces never
// alarms, anything measurably above it does.
const LimitTolerance = 1e-9

// Status is a copy of the controller state handed to observers.
type Status struct {
	State       State
	Calibration Calibration
	Weight      float64 // Last computed weight (g), zero outside Measuring/Alarming
	Fault       string  // Last calibration or measurement fault, empty when none
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger replaces the default logger.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Controller) { c.log = log }
}

// WithTints sets the backlight colours.
func WithTints(t Tints) Option {
	return func(c *Controller) { c.tints = t }
}

// WithResetSignal shares an existing reset signal, typically one already
// wired to an interrupt before the controller is built.
func WithResetSignal(r *ResetSignal) Option {
	return func(c *Controller) { c.reset = r }
}

// Controller is the weighing state machine. All methods except
// ResetSignal().Request must be called from a single goroutine.
type Controller struct {
	th    Thresholds
	tints Tints
	hw    Hardware
	clock Clock
	reset *ResetSignal
	log   *logrus.Entry

	state        State
	pendingEntry bool
	phase        calPhase
	cal          Calibration
	weight       float64
	fault        string
	tareLevel    bool // tare level seen at the previous poll

	alarm       *Stopwatch
	statusBlink *Blinker
	alarmBlink  *Blinker

	callbacks []func(Status)
}

// New creates a controller in Idle with zeroed calibration. The Idle entry
// action runs on the first Tick.
func New(th Thresholds, hw Hardware, opts ...Option) *Controller {
	c := &Controller{
		th:           th,
		tints:        DefaultTints(),
		hw:           hw,
		clock:        SystemClock{},
		log:          logrus.WithField("component", "scale"),
		state:        StateIdle,
		pendingEntry: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reset == nil {
		c.reset = &ResetSignal{}
	}
	if c.th.Pacing <= 0 {
		c.log.WithField("pacing", c.th.Pacing).Warn("non-positive pacing, using default")
		c.th.Pacing = DefaultThresholds().Pacing
	}

	c.alarm = NewStopwatch(c.clock)
	c.statusBlink = NewBlinker(hw.Status, th.BlinkHalfPeriod, c.clock)
	c.alarmBlink = NewBlinker(hw.Alarm, th.BlinkHalfPeriod, c.clock)

	return c
}

// ResetSignal returns the signal an interrupt handler should raise.
func (c *Controller) ResetSignal() *ResetSignal {
	return c.reset
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Status returns a copy of the observable state.
func (c *Controller) Status() Status {
	return Status{
		State:       c.state,
		Calibration: c.cal,
		Weight:      c.weight,
		Fault:       c.fault,
	}
}

// AlarmElapsed returns the time spent in the current alarm. It is zero
// outside Alarming.
func (c *Controller) AlarmElapsed() time.Duration {
	if c.state != StateAlarming {
		return 0
	}
	return c.alarm.Elapsed()
}

// OnUpdate registers a callback invoked after every Tick with the current
// status. Callbacks run on the loop goroutine and should return quickly.
func (c *Controller) OnUpdate(callback func(Status)) {
	c.callbacks = append(c.callbacks, callback)
}

// Run calls Tick once per pacing period until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.th.Pacing)
	defer ticker.Stop()

	c.log.WithFields(logrus.Fields{
		"weightLimit":  c.th.WeightLimit,
		"alarmTimeout": c.th.AlarmTimeout,
		"pacing":       c.th.Pacing,
	}).Info("control loop started")

	for {
		c.Tick()

		select {
		case <-ctx.Done():
			c.log.Info("control loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one loop iteration: a pending reset if one was requested,
// otherwise the handler of the current state.
func (c *Controller) Tick() {
	defer c.notify()

	if c.reset.take() {
		c.doReset()
		return
	}

	if c.pendingEntry {
		c.enter(c.state)
	}

	switch c.state {
	case StateIdle:
		c.idle()
	case StateCalibrating:
		c.calibrating()
	case StateMeasuring:
		c.measuring()
	case StateAlarming:
		c.alarming()
	default:
		c.log.WithField("state", c.state).Error("unknown state, forcing idle")
		c.state = StateIdle
		c.pendingEntry = true
	}
}

func (c *Controller) idle() {
	if c.tarePressed() {
		c.transition(StateCalibrating)
	}
}

func (c *Controller) calibrating() {
	c.statusBlink.Update()
	pressed := c.tarePressed()

	switch c.phase {
	case phaseCaptureZero:
		v, spread, err := SampleVoltage(c.hw.Sensor.Voltage, c.th.SampleCount)
		if err != nil {
			c.log.WithError(err).Warn("failed to read zero point")
			return
		}
		c.cal.ZeroVoltage = v
		c.phase = phaseAwaitReference
		c.log.WithFields(logrus.Fields{
			"zeroVoltage": v,
			"stddev":      spread,
		}).Info("zero point captured")
		c.show(fmt.Sprintf("Place %.0fg", c.th.ReferenceMass), "press calibrate")

	case phaseAwaitReference:
		if !pressed {
			return
		}
		v, spread, err := SampleVoltage(c.hw.Sensor.Voltage, c.th.SampleCount)
		if err != nil {
			c.log.WithError(err).Warn("failed to read reference point")
			return
		}
		c.cal.ReferenceVoltage = v
		if err := c.cal.Derive(c.th.ReferenceMass); err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"zeroVoltage":      c.cal.ZeroVoltage,
				"referenceVoltage": v,
			}).Warn("calibration rejected")
			c.cal.ReferenceVoltage = 0
			c.fault = err.Error()
			c.show("Cal failed", "press calibrate")
			return
		}
		c.fault = ""
		c.log.WithFields(logrus.Fields{
			"referenceVoltage": v,
			"stddev":           spread,
			"slope":            c.cal.Slope,
		}).Info("reference point captured")
		c.transition(StateMeasuring)
	}
}

func (c *Controller) measuring() {
	if !c.cal.Calibrated() {
		c.log.Error("measuring without a slope, returning to idle")
		c.fault = ErrNotCalibrated.Error()
		c.transition(StateIdle)
		return
	}

	v, err := c.hw.Sensor.Voltage()
	if err != nil {
		c.log.WithError(err).Warn("failed to read sensor")
		return
	}
	w, err := c.cal.Weight(v)
	if err != nil {
		c.log.WithError(err).Warn("failed to compute weight")
		return
	}
	c.weight = w
	c.show("Weight:", fmt.Sprintf("%.3f g", w))

	if w-c.th.WeightLimit > LimitTolerance {
		c.log.WithFields(logrus.Fields{
			"weight": w,
			"limit":  c.th.WeightLimit,
		}).Warn("overweight")
		c.transition(StateAlarming)
	}
}

func (c *Controller) alarming() {
	c.statusBlink.Update()
	c.alarmBlink.Update()

	if c.alarm.Elapsed() > c.th.AlarmTimeout {
		c.statusBlink.Stop(false)
		c.alarmBlink.Stop(false)
		c.transition(StateIdle)
	}
}

// enter runs the entry action of s.
func (c *Controller) enter(s State) {
	c.pendingEntry = false
	c.tint(s)

	switch s {
	case StateIdle:
		c.phase = phaseCaptureZero
		c.weight = 0
		c.statusBlink.Stop(true)
		c.alarmBlink.Stop(false)
		c.hw.Ready.Set(false)
		c.show("Remove weight", "press calibrate")
	case StateCalibrating:
		c.phase = phaseCaptureZero
		c.weight = 0
		c.statusBlink.Stop(true)
		c.alarmBlink.Stop(false)
		c.hw.Ready.Set(false)
		c.show("Calibrating", "keep pan empty")
	case StateMeasuring:
		c.statusBlink.Stop(false)
		c.alarmBlink.Stop(false)
		c.hw.Ready.Set(true)
		c.hw.Display.Clear()
	case StateAlarming:
		c.alarm.Reset()
		c.statusBlink.Stop(true)
		c.alarmBlink.Stop(true)
		c.hw.Ready.Set(false)
		c.show("OVERWEIGHT", fmt.Sprintf("max %.0f g", c.th.WeightLimit))
	}
}

func (c *Controller) transition(to State) {
	from := c.state
	log := c.log.WithFields(logrus.Fields{"from": from, "to": to})
	if !CanTransition(from, to) {
		log.Error("transition not allowed")
		return
	}
	log.Info("state transition")
	c.state = to
	c.enter(to)
}

// doReset zeroes everything the loop owns and schedules the Idle entry action
// for the next Tick.
func (c *Controller) doReset() {
	c.log.WithField("from", c.state).Info("reset requested")

	c.show("Resetting...", "")
	c.cal = Calibration{}
	c.weight = 0
	c.fault = ""
	c.phase = phaseCaptureZero
	c.alarm.Reset()
	c.statusBlink.Stop(false)
	c.alarmBlink.Stop(false)
	c.hw.Ready.Set(false)

	c.state = StateIdle
	c.pendingEntry = true
}

// tarePressed polls the tare button and reports a released-to-pressed change
// since the previous poll.
func (c *Controller) tarePressed() bool {
	level := c.hw.Tare.Pressed()
	pressed := level && !c.tareLevel
	c.tareLevel = level
	return pressed
}

func (c *Controller) show(top, bottom string) {
	d := c.hw.Display
	d.Clear()
	d.SetCursor(0, 0)
	d.Print(top)
	d.SetCursor(0, 1)
	d.Print(bottom)
}

func (c *Controller) tint(s State) {
	t := c.tints.For(s)
	c.hw.Display.SetTint(t.R, t.G, t.B)
}

func (c *Controller) notify() {
	if len(c.callbacks) == 0 {
		return
	}
	st := c.Status()
	for _, cb := range c.callbacks {
		if cb != nil {
			cb(st)
		}
	}
}
