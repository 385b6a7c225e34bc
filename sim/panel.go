package main

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/device"
	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/scale"
)

var (
	lampOff    = color.RGBA{R: 50, G: 50, B: 50, A: 255}
	statusLamp = color.RGBA{R: 40, G: 220, B: 80, A: 255}
	readyLamp  = color.RGBA{R: 60, G: 140, B: 255, A: 255}
	alarmLamp  = color.RGBA{R: 255, G: 40, B: 40, A: 255}
	lcdInk     = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	lcdDark    = color.RGBA{R: 30, G: 40, B: 30, A: 255}
)

// panelView is a snapshot of the front panel.
type panelView struct {
	lines  [device.LCDRows]string
	tint   scale.Tint
	lit    bool // backlight on
	status bool
	ready  bool
	alarm  bool
}

func viewOfPanel(p *device.Panel) panelView {
	return panelView{
		lines:  p.LCD.Lines(),
		tint:   p.LCD.Tint(),
		lit:    true,
		status: p.Status.On(),
		ready:  p.Ready.On(),
		alarm:  p.Alarm.On(),
	}
}

// viewOfStatus approximates the panel of a real scale from its status line.
// Blinking is not visible at status-line rate, lamps show the steady level.
func viewOfStatus(st link.Status, cfg *config.Config) panelView {
	v := panelView{
		tint: cfg.Display.For(st.State),
		lit:  true,
	}
	v.lines[0] = string(st.State)
	switch st.State {
	case scale.StateIdle:
		v.status = true
	case scale.StateCalibrating:
		v.status = true
		v.lines[1] = fmt.Sprintf("zero %.4f V", st.Zero)
	case scale.StateMeasuring:
		v.ready = true
		v.lines[1] = fmt.Sprintf("%.3f g", st.Weight)
	case scale.StateAlarming:
		v.alarm = true
		v.lines[1] = fmt.Sprintf("%.3f g", st.Weight)
	}
	return v
}

func formatLoad(g float64) string {
	return fmt.Sprintf("%6.1f g", g)
}

func lampColor(on bool, c color.Color) color.Color {
	if on {
		return c
	}
	return lampOff
}

// frontPanel draws the 16x2 display on its backlight and the three lamps.
type frontPanel struct {
	backlight *canvas.Rectangle
	rows      [device.LCDRows]*canvas.Text
	status    *canvas.Circle
	ready     *canvas.Circle
	alarm     *canvas.Circle
}

func newFrontPanel() *frontPanel {
	p := &frontPanel{
		backlight: canvas.NewRectangle(lcdDark),
		status:    canvas.NewCircle(lampOff),
		ready:     canvas.NewCircle(lampOff),
		alarm:     canvas.NewCircle(lampOff),
	}
	p.backlight.CornerRadius = 6
	for i := range p.rows {
		t := canvas.NewText("", lcdInk)
		t.TextStyle = fyne.TextStyle{Monospace: true}
		t.TextSize = 28
		p.rows[i] = t
	}
	return p
}

func lampBox(c *canvas.Circle, name string) fyne.CanvasObject {
	return container.NewVBox(
		container.NewGridWrap(fyne.NewSize(28, 28), c),
		widget.NewLabelWithStyle(name, fyne.TextAlignCenter, fyne.TextStyle{}),
	)
}

func (p *frontPanel) object() fyne.CanvasObject {
	text := container.NewPadded(container.NewVBox(p.rows[0], p.rows[1]))
	lcd := container.NewStack(p.backlight, text)
	lamps := container.NewHBox(
		lampBox(p.status, "status"),
		lampBox(p.ready, "ready"),
		lampBox(p.alarm, "alarm"),
	)
	return container.NewHBox(layout.NewSpacer(), lcd, layout.NewSpacer(), lamps, layout.NewSpacer())
}

// update redraws the panel. Call it on the fyne thread.
func (p *frontPanel) update(v panelView) {
	if v.lit {
		p.backlight.FillColor = color.RGBA{R: v.tint.R, G: v.tint.G, B: v.tint.B, A: 255}
	} else {
		p.backlight.FillColor = lcdDark
	}
	p.backlight.Refresh()

	for i, t := range p.rows {
		t.Text = fmt.Sprintf("%-*s", device.LCDColumns, v.lines[i])
		t.Refresh()
	}

	p.status.FillColor = lampColor(v.status, statusLamp)
	p.ready.FillColor = lampColor(v.ready, readyLamp)
	p.alarm.FillColor = lampColor(v.alarm, alarmLamp)
	p.status.Refresh()
	p.ready.Refresh()
	p.alarm.Refresh()
}

func (p *frontPanel) clear() {
	p.update(panelView{})
}
