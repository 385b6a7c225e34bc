package main

import (
	"image/color"
	"strconv"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/device"
	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/scale"
)

func TestViewOfStatus(t *testing.T) {
	cfg := config.Default()

	v := viewOfStatus(link.Status{State: scale.StateMeasuring, Weight: 42.5}, cfg)
	assert.Equal(t, [2]string{"Measuring", "42.500 g"}, v.lines)
	assert.True(t, v.ready)
	assert.False(t, v.alarm)
	assert.Equal(t, cfg.Display.Measuring, v.tint)

	v = viewOfStatus(link.Status{State: scale.StateAlarming, Weight: 150}, cfg)
	assert.True(t, v.alarm)
	assert.Equal(t, cfg.Display.Alarming, v.tint)

	v = viewOfStatus(link.Status{State: scale.StateCalibrating, Zero: 0.5}, cfg)
	assert.Equal(t, "zero 0.5000 V", v.lines[1])
	assert.True(t, v.status)
}

func TestViewOfPanel(t *testing.T) {
	p := device.NewPanel(config.Default().Simulation, 3.3)
	p.LCD.Print("hello")
	p.Alarm.Set(true)
	p.LCD.SetTint(1, 2, 3)

	v := viewOfPanel(p)
	assert.Equal(t, "hello", v.lines[0])
	assert.True(t, v.alarm)
	assert.True(t, v.lit)
	assert.Equal(t, scale.Tint{R: 1, G: 2, B: 3}, v.tint)
}

func TestFrontPanel_Update(t *testing.T) {
	test.NewTempApp(t)
	p := newFrontPanel()
	w := test.NewWindow(p.object())
	defer w.Close()

	p.update(panelView{
		lines: [2]string{"OVERWEIGHT", "max 120 g"},
		tint:  scale.Tint{R: 200},
		lit:   true,
		alarm: true,
	})

	assert.Equal(t, "OVERWEIGHT      ", p.rows[0].Text)
	assert.Equal(t, color.RGBA{R: 200, A: 255}, p.backlight.FillColor)
	assert.Equal(t, alarmLamp, p.alarm.FillColor)
	assert.Equal(t, lampOff, p.ready.FillColor)

	p.clear()
	assert.Equal(t, lcdDark, p.backlight.FillColor)
	assert.Equal(t, lampOff, p.alarm.FillColor)
}

func TestParseInto(t *testing.T) {
	var d time.Duration
	require.NoError(t, parseInto("timeout", "2s", time.ParseDuration, &d))
	assert.Equal(t, 2*time.Second, d)

	n := 7
	err := parseInto("samples", "many", strconv.Atoi, &n)
	assert.ErrorContains(t, err, "invalid samples")
	assert.Equal(t, 7, n, "destination untouched on error")
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "Scale Simulator (limit 120 g, alarm 3s, reference 100 g)", windowTitle(config.Default()))
	assert.Equal(t, "  12.5 g", formatLoad(12.5))
}
