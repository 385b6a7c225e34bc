package device

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/itohio/goscale/pkg/adc"
	"github.com/itohio/goscale/pkg/config"
)

// LoadCell simulates a load cell behind a 16-bit ADC. Every call to Voltage
// draws fresh noise, so averaging has something to suppress.
type LoadCell struct {
	cfg  config.SimulationConfig
	vref float64

	mu    sync.Mutex
	rng   *rand.Rand
	load  float64
	err   error
	reads int
}

// NewLoadCell creates a simulated load cell.
func NewLoadCell(cfg config.SimulationConfig, vref float64) *LoadCell {
	return &LoadCell{
		cfg:  cfg,
		vref: vref,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		load: cfg.Load,
	}
}

// Seed makes the noise sequence reproducible.
func (l *LoadCell) Seed(seed int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng = rand.New(rand.NewSource(seed))
}

// SetLoad places mass grams on the simulated pan.
func (l *LoadCell) SetLoad(grams float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.load = grams
}

// Load returns the mass on the pan.
func (l *LoadCell) Load() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load
}

// SetError makes subsequent reads fail with err. nil clears the failure.
func (l *LoadCell) SetError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// Reads returns the number of Voltage calls so far.
func (l *LoadCell) Reads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reads
}

// Voltage samples the simulated sensor.
func (l *LoadCell) Voltage() (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reads++
	if l.err != nil {
		return 0, errors.Wrap(l.err, "load cell read failed")
	}

	analog := l.cfg.Bias + l.load*l.cfg.Sensitivity
	if l.cfg.NoiseLevel > 0 {
		analog += (l.rng.Float64()*2 - 1) * l.cfg.NoiseLevel
	}

	raw := adc.FromVoltage(float32(analog), float32(l.vref))
	return float64(adc.ToVoltage(raw, float32(l.vref))), nil
}
