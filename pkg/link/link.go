// Package link encodes the one-line status report the scale prints after
// every loop iteration and the single-character commands it accepts back.
//
// Status line format:
//
//	unix_micros,state,weight,zero,reference,slope
//	1700000000123456,Measuring,50.000,0.5000,1.0000,0.005
package link

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/itohio/goscale/pkg/scale"
)

const statusFields = 6

// Status is one decoded status line.
type Status struct {
	Timestamp time.Time
	State     scale.State
	Weight    float64 // g
	Zero      float64 // V
	Reference float64 // V
	Slope     float64 // V/g
}

// FromScale builds a status line from a controller snapshot.
func FromScale(ts time.Time, s scale.Status) Status {
	return Status{
		Timestamp: ts,
		State:     s.State,
		Weight:    s.Weight,
		Zero:      s.Calibration.ZeroVoltage,
		Reference: s.Calibration.ReferenceVoltage,
		Slope:     s.Calibration.Slope,
	}
}

// FormatStatus encodes s without the trailing newline.
func FormatStatus(s Status) string {
	return string(AppendStatus(nil, s))
}

// AppendStatus appends the encoded line to buf, without the trailing newline.
func AppendStatus(buf []byte, s Status) []byte {
	buf = strconv.AppendInt(buf, s.Timestamp.UnixMicro(), 10)
	buf = append(buf, ',')
	buf = append(buf, string(s.State)...)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, s.Weight, 'f', 3, 64)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, s.Zero, 'f', 4, 64)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, s.Reference, 'f', 4, 64)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, s.Slope, 'g', 6, 64)
	return buf
}

// ParseStatus decodes one status line. Surrounding whitespace is ignored.
func ParseStatus(line string) (Status, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != statusFields {
		return Status{}, errors.Errorf("invalid status line: expected %d comma-separated values, got %d", statusFields, len(parts))
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Status{}, errors.Wrap(err, "invalid timestamp")
	}

	state := scale.State(parts[1])
	if !state.Valid() {
		return Status{}, errors.Errorf("invalid state %q", parts[1])
	}

	var values [4]float64
	names := [4]string{"weight", "zero", "reference", "slope"}
	for i := range values {
		v, err := strconv.ParseFloat(parts[i+2], 64)
		if err != nil {
			return Status{}, errors.Wrapf(err, "invalid %s", names[i])
		}
		values[i] = v
	}

	return Status{
		Timestamp: time.UnixMicro(micros),
		State:     state,
		Weight:    values[0],
		Zero:      values[1],
		Reference: values[2],
		Slope:     values[3],
	}, nil
}

// Command is a request sent to the scale, one character followed by a newline.
type Command byte

const (
	// CommandTare acts as one press of the tare button.
	CommandTare Command = 't'
	// CommandReset raises the reset signal, like the reset button.
	CommandReset Command = 'r'
)

// Valid reports whether c is a known command.
func (c Command) Valid() bool {
	return c == CommandTare || c == CommandReset
}

// Bytes returns the wire form of c.
func (c Command) Bytes() []byte {
	return []byte{byte(c), '\n'}
}

// String implements fmt.Stringer.
func (c Command) String() string {
	switch c {
	case CommandTare:
		return "tare"
	case CommandReset:
		return "reset"
	}
	return "unknown(" + strconv.Itoa(int(c)) + ")"
}

// CommandReader assembles commands from a byte stream. Whitespace is ignored,
// a line with anything other than exactly one known command is dropped.
type CommandReader struct {
	cmd  Command
	size int
}

// Feed consumes one byte and returns a command when a line completes.
func (r *CommandReader) Feed(b byte) (Command, bool) {
	switch b {
	case '\n', '\r':
		cmd, n := r.cmd, r.size
		r.cmd, r.size = 0, 0
		if n == 1 && cmd.Valid() {
			return cmd, true
		}
		return 0, false
	case ' ', '\t':
		return 0, false
	}
	if r.size == 0 {
		r.cmd = Command(b)
	}
	r.size++
	return 0, false
}
