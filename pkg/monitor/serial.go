package monitor

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/itohio/goscale/pkg/link"
)

const (
	// DefaultBaudRate is the firmware's UART rate.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size of the status channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// OpenFunc opens a serial port. Tests replace it with an in-memory pipe.
type OpenFunc func(name string, mode *serial.Mode) (io.ReadWriteCloser, error)

func openSerial(name string, mode *serial.Mode) (io.ReadWriteCloser, error) {
	return serial.Open(name, mode)
}

// Serial reads status lines from the firmware over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	open     OpenFunc
	log      *logrus.Entry

	mu        sync.RWMutex
	conn      io.ReadWriteCloser
	statuses  chan link.Status
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// NewSerial creates a monitor for port. Zero baud rate or buffer size select
// the defaults.
func NewSerial(port string, baudRate, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		open:     openSerial,
		log:      logrus.WithFields(logrus.Fields{"component": "monitor", "port": port}),
		statuses: make(chan link.Status, bufSize),
	}
}

// WithOpener replaces the port opener and returns s.
func (s *Serial) WithOpener(open OpenFunc) *Serial {
	s.open = open
	return s
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list serial ports")
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the port and starts reading status lines.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return errors.New("already connected")
	}

	conn, err := s.open(s.port, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return errors.Wrapf(err, "failed to open serial port %s", s.port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.statuses = make(chan link.Status, s.bufSize)
	s.conn = conn
	s.cancel = cancel
	s.done = make(chan struct{})
	s.connected = true

	go s.readStatuses(ctx, conn, s.statuses, s.done)

	s.log.WithField("baudRate", s.baudRate).Info("connected")
	return nil
}

// Close closes the port. The status channel is closed once the reader exits.
func (s *Serial) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	err := s.conn.Close()
	done := s.done
	s.conn = nil
	s.connected = false
	s.mu.Unlock()

	<-done
	if err != nil {
		return errors.Wrap(err, "failed to close serial port")
	}
	return nil
}

// Statuses returns the channel of decoded status lines for the current
// connection.
func (s *Serial) Statuses() <-chan link.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statuses
}

// Send writes a command to the firmware.
func (s *Serial) Send(cmd link.Command) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return errors.New("not connected")
	}
	if !cmd.Valid() {
		return errors.Errorf("unknown command %v", cmd)
	}
	if _, err := s.conn.Write(cmd.Bytes()); err != nil {
		return errors.Wrapf(err, "failed to send %v command", cmd)
	}
	return nil
}

// IsConnected returns whether the port is open.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Serial) readStatuses(ctx context.Context, r io.Reader, out chan<- link.Status, done chan<- struct{}) {
	defer close(done)
	defer close(out)
	defer func() {
		if p := recover(); p != nil {
			s.log.WithField("panic", p).Error("status reader crashed")
		}
	}()
	defer s.dropConnection(ctx)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		st, err := link.ParseStatus(line)
		if err != nil {
			// Firmware log output shares the port.
			s.log.WithError(err).WithField("line", line).Debug("skipping line")
			continue
		}

		select {
		case out <- st:
		case <-ctx.Done():
			return
		default:
			s.log.Warn("status channel full, dropping line")
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.log.WithError(err).Error("failed to read from serial port")
	}
}

// dropConnection marks the link down when the reader stops on its own, for
// example after EOF from an unplugged board. It does nothing after Close.
func (s *Serial) dropConnection(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	s.cancel()
	if err := s.conn.Close(); err != nil {
		s.log.WithError(err).Debug("failed to close lost port")
	}
	s.conn = nil
	s.connected = false
	s.log.Warn("serial port closed by peer")
}
