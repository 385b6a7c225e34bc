package main

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/monitor"
	"github.com/itohio/goscale/pkg/scope"
	"github.com/itohio/goscale/pkg/trend"
)

func main() {
	var (
		portFlag   = flag.StringP("port", "p", "", "Serial port of a flashed scale; the simulated scale is used when empty")
		configFlag = flag.StringP("config", "c", "goscale.yaml", "Configuration file path")
		logFlag    = flag.StringP("log-level", "l", "info", "Log level")
	)
	flag.Parse()

	level, err := logrus.ParseLevel(*logFlag)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.itohio.goscale")
	window := application.NewWindow(windowTitle(cfg))
	window.Resize(fyne.NewSize(900, 700))
	window.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		cfgPath: *configFlag,
		useMock: *portFlag == "",
		window:  window,
		trend:   trend.New(cfg.Plot.Window),
		log:     logrus.WithField("component", "sim"),
	}
	state.scopeWidget = scope.New(cfg)
	state.panel = newFrontPanel()

	window.SetContent(container.NewBorder(
		createToolbar(state),
		nil, nil, nil,
		container.NewVSplit(
			container.NewVBox(state.panel.object(), createLoadControl(state)),
			state.scopeWidget,
		),
	))
	window.SetOnClosed(func() {
		closeChain(state)
	})

	state.trend.OnUpdate(func(statuses []link.Status, alarms []trend.Alarm) {
		onTrendUpdate(state, statuses, alarms)
	})

	handleConnect(state)
	window.ShowAndRun()
}

// chain is one running connection: device plus the goroutine feeding the trend.
type chain struct {
	device monitor.Device
	done   chan struct{} // closed when the trend goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg     *config.Config
	cfgPath string
	useMock bool
	log     *logrus.Entry

	window      fyne.Window
	scopeWidget *scope.ScopeWidget
	panel       *frontPanel
	connectBtn  *widget.Button
	tareBtn     *widget.Button
	resetBtn    *widget.Button
	loadSlider  *widget.Slider

	trend *trend.Trend
	mock  *monitor.Mock // nil when a real scale is attached
	chain *chain

	// Throttling for UI updates
	lastUpdate time.Time
	updateMu   sync.Mutex
}

// createToolbar creates the toolbar with Connect, Settings, Tare and Reset.
func createToolbar(state *appState) fyne.CanvasObject {
	state.connectBtn = widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})
	state.tareBtn = widget.NewButton("Tare", func() {
		sendCommand(state, link.CommandTare)
	})
	state.resetBtn = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() {
		sendCommand(state, link.CommandReset)
	})
	state.resetBtn.Importance = widget.DangerImportance
	state.tareBtn.Disable()
	state.resetBtn.Disable()

	return container.NewBorder(
		nil, nil,
		container.NewHBox(state.connectBtn, settingsBtn),
		container.NewHBox(state.tareBtn, state.resetBtn),
		nil,
	)
}

// createLoadControl creates the slider that places mass on the simulated pan.
func createLoadControl(state *appState) fyne.CanvasObject {
	label := widget.NewLabel("")
	setLabel := func(g float64) {
		label.SetText(formatLoad(g))
	}

	state.loadSlider = widget.NewSlider(0, 2*state.cfg.Thresholds.WeightLimit)
	state.loadSlider.Step = 0.5
	state.loadSlider.SetValue(state.cfg.Simulation.Load)
	setLabel(state.cfg.Simulation.Load)
	state.loadSlider.OnChanged = func(g float64) {
		setLabel(g)
		if state.mock != nil {
			state.mock.SetLoad(g)
		}
	}
	if !state.useMock {
		state.loadSlider.Disable()
	}

	return container.NewBorder(nil, nil, widget.NewLabel("Load"), label, state.loadSlider)
}

func sendCommand(state *appState, cmd link.Command) {
	if state.chain == nil {
		return
	}
	if err := state.chain.device.Send(cmd); err != nil {
		dialog.ShowError(errors.Wrapf(err, "failed to send %v", cmd), state.window)
	}
}

// closeChain closes the device and waits for the trend goroutine to drain.
func closeChain(state *appState) {
	c := state.chain
	if c == nil {
		return
	}
	if err := c.device.Close(); err != nil {
		state.log.WithError(err).Warn("failed to close device")
	}
	<-c.done
	state.chain = nil
	state.mock = nil
}

// handleConnect toggles the connection.
func handleConnect(state *appState) {
	if state.chain != nil {
		closeChain(state)
		state.tareBtn.Disable()
		state.resetBtn.Disable()
		state.panel.clear()
		state.log.Info("disconnected")
		return
	}

	var device monitor.Device
	if state.useMock {
		state.cfg.Simulation.Load = state.loadSlider.Value
		state.mock = monitor.NewMock(state.cfg, state.log)
		device = state.mock
	} else {
		device = monitor.NewSerial(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, monitor.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		state.mock = nil
		dialog.ShowError(err, state.window)
		return
	}

	state.trend.Clear()
	state.trend.ResetShutdown()
	state.scopeWidget.SetLimit(state.cfg.Thresholds.WeightLimit)

	done := make(chan struct{})
	statuses := device.Statuses()
	go func() {
		defer close(done)
		state.trend.Process(statuses)
	}()

	state.chain = &chain{device: device, done: done}
	state.tareBtn.Enable()
	state.resetBtn.Enable()
	state.log.WithField("mock", state.useMock).Info("connected")
}

// onTrendUpdate runs on the trend goroutine and forwards at most ~30 updates
// per second to the fyne thread.
func onTrendUpdate(state *appState, statuses []link.Status, alarms []trend.Alarm) {
	const updateInterval = 33 * time.Millisecond

	state.updateMu.Lock()
	now := time.Now()
	if now.Sub(state.lastUpdate) < updateInterval {
		state.updateMu.Unlock()
		return
	}
	state.lastUpdate = now
	state.updateMu.Unlock()

	// state.mock and state.cfg belong to the fyne thread.
	fyne.Do(func() {
		var view panelView
		if m := state.mock; m != nil {
			view = viewOfPanel(m.Panel())
		} else if len(statuses) > 0 {
			view = viewOfStatus(statuses[len(statuses)-1], state.cfg)
		}
		state.scopeWidget.UpdateData(statuses, alarms)
		state.panel.update(view)
	})
}
