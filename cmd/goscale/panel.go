package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/itohio/goscale/pkg/device"
	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/scale"
)

// tintAttribute maps a backlight colour to the closest terminal background.
func tintAttribute(t scale.Tint) color.Attribute {
	const on = 0x80
	r, g, b := t.R >= on, t.G >= on, t.B >= on
	switch {
	case r && g && b:
		return color.BgWhite
	case r && g:
		return color.BgYellow
	case r && b:
		return color.BgMagenta
	case g && b:
		return color.BgCyan
	case r:
		return color.BgRed
	case g:
		return color.BgGreen
	case b:
		return color.BgBlue
	}
	return color.BgBlack
}

func lamp(on bool, attr color.Attribute) string {
	if on {
		return color.New(color.Bold, attr).Sprint("●")
	}
	return color.New(color.FgHiBlack).Sprint("○")
}

// panelView is what the terminal shows for the simulated front panel.
type panelView struct {
	lines  [device.LCDRows]string
	tint   scale.Tint
	status bool
	ready  bool
	alarm  bool
}

func viewOf(p *device.Panel) panelView {
	return panelView{
		lines:  p.LCD.Lines(),
		tint:   p.LCD.Tint(),
		status: p.Status.On(),
		ready:  p.Ready.On(),
		alarm:  p.Alarm.On(),
	}
}

// render draws the LCD as two tinted rows followed by the indicator lamps.
func (v panelView) render(w io.Writer) {
	lcd := color.New(color.FgBlack, tintAttribute(v.tint))
	border := "+" + strings.Repeat("-", device.LCDColumns+2) + "+"
	fmt.Fprintln(w, border)
	for _, line := range v.lines {
		fmt.Fprintf(w, "| %s |\n", lcd.Sprintf("%-*s", device.LCDColumns, line))
	}
	fmt.Fprintln(w, border)
	fmt.Fprintf(w, "  status %s  ready %s  alarm %s\n",
		lamp(v.status, color.FgGreen), lamp(v.ready, color.FgBlue), lamp(v.alarm, color.FgRed))
}

func stateString(s scale.State) string {
	switch s {
	case scale.StateIdle:
		return color.New(color.Bold).Sprint(s)
	case scale.StateCalibrating:
		return color.YellowString(string(s))
	case scale.StateMeasuring:
		return color.GreenString(string(s))
	case scale.StateAlarming:
		return color.New(color.Bold, color.FgRed).Sprint(s)
	}
	return string(s)
}

// formatStatus renders one status line for humans.
func formatStatus(st link.Status) string {
	return fmt.Sprintf("%s %-11s weight %9.3f g  zero %.4f V  ref %.4f V  slope %.6g V/g",
		st.Timestamp.Format("15:04:05.000"), stateString(st.State), st.Weight, st.Zero, st.Reference, st.Slope)
}
