package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/device"
	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/scale"
)

// Mock runs the scale controller against simulated hardware and reports the
// same status lines the firmware prints.
type Mock struct {
	cfg   *config.Config
	panel *device.Panel
	ctrl  *scale.Controller
	log   *logrus.Entry

	mu        sync.RWMutex
	statuses  chan link.Status
	active    chan link.Status // statuses while the loop runs, nil otherwise
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool

	tare *scale.RemoteButton
}

// NewMock creates a simulated scale. A nil cfg selects config.Default().
func NewMock(cfg *config.Config, log *logrus.Entry) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logrus.WithField("component", "mock")
	}

	m := &Mock{
		cfg:      cfg,
		panel:    device.NewPanel(cfg.Simulation, cfg.Thresholds.VRef),
		log:      log,
		statuses: make(chan link.Status, DefaultBufferSize),
	}
	hw := m.panel.Hardware()
	m.tare = &scale.RemoteButton{Button: hw.Tare}
	hw.Tare = m.tare
	m.ctrl = scale.New(cfg.Thresholds, hw,
		scale.WithLogger(log.WithField("component", "scale")),
		scale.WithTints(cfg.Display),
	)
	m.ctrl.OnUpdate(m.publish)
	return m
}

// Panel exposes the simulated hardware so front ends can draw it and move the
// load.
func (m *Mock) Panel() *device.Panel {
	return m.panel
}

// Connect starts the control loop.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return errors.New("already connected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.statuses = make(chan link.Status, DefaultBufferSize)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.connected = true

	go m.run(ctx, m.statuses, m.done)

	return nil
}

// Close stops the control loop and closes the status channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	done := m.done
	m.connected = false
	m.mu.Unlock()

	<-done
	return nil
}

// Statuses returns the channel of status lines for the current run.
func (m *Mock) Statuses() <-chan link.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statuses
}

// Send applies a command to the simulated panel.
func (m *Mock) Send(cmd link.Command) error {
	if !m.IsConnected() {
		return errors.New("not connected")
	}

	switch cmd {
	case link.CommandTare:
		m.tare.Press()
	case link.CommandReset:
		m.ctrl.ResetSignal().Request()
	default:
		return errors.Errorf("unknown command %v", cmd)
	}
	return nil
}

// SetLoad places grams on the simulated pan.
func (m *Mock) SetLoad(grams float64) {
	m.panel.LoadCell.SetLoad(grams)
}

// IsConnected returns whether the control loop is running.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) run(ctx context.Context, out chan link.Status, done chan<- struct{}) {
	defer close(done)

	m.mu.Lock()
	m.active = out
	m.mu.Unlock()

	err := m.ctrl.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		m.log.WithError(err).Error("control loop failed")
	}

	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()
	close(out)
}

// publish runs on the control loop goroutine after every tick.
func (m *Mock) publish(st scale.Status) {
	m.tare.Step()

	m.mu.RLock()
	out := m.active
	m.mu.RUnlock()
	if out == nil {
		return
	}

	select {
	case out <- link.FromScale(time.Now(), st):
	default:
		m.log.Debug("status channel full, dropping status")
	}
}
