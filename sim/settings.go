package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/monitor"
)

// showSettingsDialog displays the settings tabs. Changes are saved to the
// config file and take effect on the next connect.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createThresholdsTab(state),
		createSimulationTab(state),
		createSerialTab(state),
	)

	d := dialog.NewCustom("Settings", "Close", tabs, state.window)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}

// saveConfig validates and writes cfg, replacing the live config on success.
func saveConfig(state *appState, cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := cfg.Save(state.cfgPath); err != nil {
		dialog.ShowError(errors.Wrap(err, "failed to save config"), state.window)
		return
	}
	*state.cfg = *cfg
	state.window.SetTitle(windowTitle(cfg))
	if state.chain != nil {
		dialog.ShowInformation("Settings", "Saved. Reconnect to apply.", state.window)
	}
}

func floatEntry(v float64, prec int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(v, 'f', prec, 64))
	return e
}

func durationEntry(d time.Duration) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(d.String())
	return e
}

// parseInto parses text with parse and stores the result in dst, reporting
// the field name on failure.
func parseInto[T any](name, text string, parse func(string) (T, error), dst *T) error {
	v, err := parse(text)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", name)
	}
	*dst = v
	return nil
}

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// createThresholdsTab creates the controller thresholds tab.
func createThresholdsTab(state *appState) *container.TabItem {
	limit := floatEntry(state.cfg.Thresholds.WeightLimit, 1)
	timeout := durationEntry(state.cfg.Thresholds.AlarmTimeout)
	mass := floatEntry(state.cfg.Thresholds.ReferenceMass, 1)
	samples := widget.NewEntry()
	samples.SetText(strconv.Itoa(state.cfg.Thresholds.SampleCount))
	pacing := durationEntry(state.cfg.Thresholds.Pacing)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Weight limit (g)", Widget: limit},
			{Text: "Alarm timeout", Widget: timeout},
			{Text: "Reference mass (g)", Widget: mass},
			{Text: "Calibration samples", Widget: samples},
			{Text: "Loop pacing", Widget: pacing},
		},
		OnSubmit: func() {
			cfg := *state.cfg
			th := &cfg.Thresholds
			for _, err := range []error{
				parseInto("weight limit", limit.Text, parseFloat, &th.WeightLimit),
				parseInto("alarm timeout", timeout.Text, time.ParseDuration, &th.AlarmTimeout),
				parseInto("reference mass", mass.Text, parseFloat, &th.ReferenceMass),
				parseInto("calibration samples", samples.Text, strconv.Atoi, &th.SampleCount),
				parseInto("loop pacing", pacing.Text, time.ParseDuration, &th.Pacing),
			} {
				if err != nil {
					dialog.ShowError(err, state.window)
					return
				}
			}
			saveConfig(state, &cfg)
		},
	}

	return container.NewTabItem("Thresholds", form)
}

// createSimulationTab creates the simulated load cell tab.
func createSimulationTab(state *appState) *container.TabItem {
	bias := floatEntry(state.cfg.Simulation.Bias, 4)
	sensitivity := floatEntry(state.cfg.Simulation.Sensitivity, 6)
	noise := floatEntry(state.cfg.Simulation.NoiseLevel, 6)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Bias (V)", Widget: bias},
			{Text: "Sensitivity (V/g)", Widget: sensitivity},
			{Text: "Noise (V)", Widget: noise},
		},
		OnSubmit: func() {
			cfg := *state.cfg
			sim := &cfg.Simulation
			for _, err := range []error{
				parseInto("bias", bias.Text, parseFloat, &sim.Bias),
				parseInto("sensitivity", sensitivity.Text, parseFloat, &sim.Sensitivity),
				parseInto("noise", noise.Text, parseFloat, &sim.NoiseLevel),
			} {
				if err != nil {
					dialog.ShowError(err, state.window)
					return
				}
			}
			saveConfig(state, &cfg)
		},
	}

	return container.NewTabItem("Simulation", form)
}

// createSerialTab creates the serial port tab.
func createSerialTab(state *appState) *container.TabItem {
	var options []string
	ports, err := monitor.Ports()
	if err != nil {
		state.log.WithError(err).Warn("failed to list serial ports")
	}
	for _, p := range ports {
		options = append(options, p.Name)
	}
	current := state.cfg.Serial.Port
	found := false
	for _, o := range options {
		found = found || o == current
	}
	if !found && current != "" {
		options = append(options, current)
	}

	portSelect := widget.NewSelect(options, nil)
	portSelect.SetSelected(current)
	baud := widget.NewEntry()
	baud.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial port", Widget: portSelect},
			{Text: "Baud rate", Widget: baud},
		},
		OnSubmit: func() {
			cfg := *state.cfg
			if portSelect.Selected != "" {
				cfg.Serial.Port = portSelect.Selected
			}
			if err := parseInto("baud rate", baud.Text, strconv.Atoi, &cfg.Serial.BaudRate); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			saveConfig(state, &cfg)
		},
	}

	return container.NewTabItem("Serial", form)
}

func windowTitle(cfg *config.Config) string {
	th := cfg.Thresholds
	return fmt.Sprintf("Scale Simulator (limit %.0f g, alarm %v, reference %.0f g)", th.WeightLimit, th.AlarmTimeout, th.ReferenceMass)
}
