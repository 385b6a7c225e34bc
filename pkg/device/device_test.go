package device

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/scale"
)

const vref = 3.3

// adcStep is one 16-bit count at vref.
const adcStep = vref / 0xffff

func quietSim() config.SimulationConfig {
	return config.SimulationConfig{Bias: 0.5, Sensitivity: 0.005}
}

func TestLoadCell_Linear(t *testing.T) {
	lc := NewLoadCell(quietSim(), vref)

	v, err := lc.Voltage()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, adcStep)

	lc.SetLoad(50)
	assert.Equal(t, 50.0, lc.Load())
	v, err = lc.Voltage()
	require.NoError(t, err)
	assert.InDelta(t, 0.75, v, adcStep)
	assert.Equal(t, 2, lc.Reads())
}

func TestLoadCell_ClampsToReference(t *testing.T) {
	lc := NewLoadCell(quietSim(), vref)
	lc.SetLoad(10000)

	v, err := lc.Voltage()
	require.NoError(t, err)
	assert.InDelta(t, vref, v, 1e-5)

	lc.SetLoad(-1000)
	v, err = lc.Voltage()
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestLoadCell_NoiseIsBoundedAndAverages(t *testing.T) {
	sim := quietSim()
	sim.NoiseLevel = 0.01
	lc := NewLoadCell(sim, vref)
	lc.Seed(1)
	lc.SetLoad(100)

	distinct := map[float64]bool{}
	for range 50 {
		v, err := lc.Voltage()
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, sim.NoiseLevel+adcStep)
		distinct[v] = true
	}
	assert.Greater(t, len(distinct), 1, "every read draws fresh noise")

	avg, err := scale.AveragedVoltage(lc.Voltage, 2000)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, avg, 0.001)
}

func TestLoadCell_Error(t *testing.T) {
	lc := NewLoadCell(quietSim(), vref)
	boom := errors.New("wire broken")
	lc.SetError(boom)

	_, err := lc.Voltage()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load cell read failed")

	lc.SetError(nil)
	_, err = lc.Voltage()
	assert.NoError(t, err)
}

func TestLCD_PrintAndTruncate(t *testing.T) {
	d := NewLCD()
	d.SetCursor(0, 0)
	d.Print("Weight:")
	d.SetCursor(0, 1)
	d.Print("this line is far too long")

	lines := d.Lines()
	assert.Equal(t, "Weight:", lines[0])
	assert.Equal(t, "this line is far", lines[1])

	d.SetCursor(12, 0)
	d.Print("ABCDEF")
	assert.Equal(t, "Weight:     ABCD", d.Lines()[0])

	d.Clear()
	assert.Equal(t, [LCDRows]string{}, d.Lines())
}

func TestLCD_CursorClamped(t *testing.T) {
	d := NewLCD()
	d.SetCursor(-3, 9)
	d.Print("x")
	assert.Equal(t, "x", d.Lines()[1])

	d.SetCursor(40, 0)
	d.Print("lost")
	assert.Empty(t, d.Lines()[0])
}

func TestLCD_Tint(t *testing.T) {
	d := NewLCD()
	d.SetTint(1, 2, 3)
	assert.Equal(t, scale.Tint{R: 1, G: 2, B: 3}, d.Tint())
}

func TestLED_CountsChanges(t *testing.T) {
	var l LED
	l.Set(false)
	assert.Zero(t, l.Changes())
	l.Set(true)
	l.Set(true)
	l.Set(false)
	assert.False(t, l.On())
	assert.Equal(t, int64(2), l.Changes())
}

func TestButton(t *testing.T) {
	var b Button
	assert.False(t, b.Pressed())
	b.Set(true)
	assert.True(t, b.Pressed())
}

func TestPanel_DrivesController(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.NoiseLevel = 0
	p := NewPanel(cfg.Simulation, cfg.Thresholds.VRef)

	l := logrus.New()
	l.SetOutput(io.Discard)
	ctrl := scale.New(cfg.Thresholds, p.Hardware(), scale.WithLogger(logrus.NewEntry(l)), scale.WithTints(cfg.Display))

	press := func() {
		p.Tare.Set(true)
		ctrl.Tick()
		p.Tare.Set(false)
	}

	ctrl.Tick()
	assert.Equal(t, [LCDRows]string{"Remove weight", "press calibrate"}, p.LCD.Lines())
	assert.True(t, p.Status.On())
	assert.Equal(t, cfg.Display.Idle, p.LCD.Tint())

	press()
	ctrl.Tick()
	p.LoadCell.SetLoad(cfg.Thresholds.ReferenceMass)
	press()
	require.Equal(t, scale.StateMeasuring, ctrl.State())
	assert.True(t, p.Ready.On())

	p.LoadCell.SetLoad(42)
	ctrl.Tick()
	assert.InDelta(t, 42, ctrl.Status().Weight, 0.05)
	assert.Equal(t, "Weight:", p.LCD.Lines()[0])

	p.LoadCell.SetLoad(130)
	ctrl.Tick()
	assert.Equal(t, scale.StateAlarming, ctrl.State())
	assert.True(t, p.Alarm.On())
	assert.Equal(t, "OVERWEIGHT", p.LCD.Lines()[0])
	assert.Equal(t, cfg.Display.Alarming, p.LCD.Tint())

	ctrl.ResetSignal().Request()
	ctrl.Tick()
	assert.Equal(t, scale.StateIdle, ctrl.State())
	assert.False(t, p.Alarm.On())
	assert.Equal(t, "Resetting...", p.LCD.Lines()[0])
}
