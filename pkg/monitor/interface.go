// Package monitor connects host tools to a scale: the real firmware over a
// serial port, or an in-process simulation speaking the same status lines.
package monitor

import "github.com/itohio/goscale/pkg/link"

// Device is a scale reachable from the host (real or simulated).
type Device interface {
	Connect() error
	Close() error
	Statuses() <-chan link.Status
	Send(cmd link.Command) error
	IsConnected() bool
}

var (
	_ Device = (*Serial)(nil)
	_ Device = (*Mock)(nil)
)
