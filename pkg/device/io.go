package device

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/scale"
)

// LCD geometry.
const (
	LCDColumns = 16
	LCDRows    = 2
)

// Button is a simulated push button.
type Button struct {
	level atomic.Bool
}

// Set changes the button level.
func (b *Button) Set(pressed bool) { b.level.Store(pressed) }

// Pressed reports the current level.
func (b *Button) Pressed() bool { return b.level.Load() }

// LED is a simulated binary output.
type LED struct {
	on      atomic.Bool
	changes atomic.Int64
}

// Set drives the output.
func (l *LED) Set(on bool) {
	if l.on.Swap(on) != on {
		l.changes.Add(1)
	}
}

// On reports the output level.
func (l *LED) On() bool { return l.on.Load() }

// Changes returns how many times the level actually changed.
func (l *LED) Changes() int64 { return l.changes.Load() }

// LCD is a simulated 16x2 character display with an RGB backlight.
type LCD struct {
	mu       sync.RWMutex
	rows     [LCDRows][LCDColumns]byte
	col, row int
	tint     scale.Tint
}

// NewLCD returns a cleared display.
func NewLCD() *LCD {
	d := &LCD{}
	d.Clear()
	return d
}

// Clear blanks the display and homes the cursor.
func (d *LCD) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for r := range d.rows {
		for c := range d.rows[r] {
			d.rows[r][c] = ' '
		}
	}
	d.col, d.row = 0, 0
}

// SetCursor moves the write position. Out of range positions are clamped.
func (d *LCD) SetCursor(col, row int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.col = min(max(col, 0), LCDColumns)
	d.row = min(max(row, 0), LCDRows-1)
}

// Print writes text at the cursor. Characters past the last column are dropped.
func (d *LCD) Print(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < len(text) && d.col < LCDColumns; i++ {
		d.rows[d.row][d.col] = text[i]
		d.col++
	}
}

// SetTint sets the backlight colour.
func (d *LCD) SetTint(r, g, b uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tint = scale.Tint{R: r, G: g, B: b}
}

// Lines returns both rows with trailing blanks removed.
func (d *LCD) Lines() [LCDRows]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out [LCDRows]string
	for r := range d.rows {
		out[r] = strings.TrimRight(string(d.rows[r][:]), " ")
	}
	return out
}

// Tint returns the backlight colour.
func (d *LCD) Tint() scale.Tint {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tint
}

// NewPanel builds a full set of simulated hardware from configuration.
func NewPanel(sim config.SimulationConfig, vref float64) *Panel {
	return &Panel{
		LoadCell: NewLoadCell(sim, vref),
		Tare:     &Button{},
		Status:   &LED{},
		Ready:    &LED{},
		Alarm:    &LED{},
		LCD:      NewLCD(),
	}
}
