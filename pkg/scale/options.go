package scale

import "time"

// Thresholds holds the fixed operating constants of the scale. The controller
// copies them once at construction and never changes them.
type Thresholds struct {
	WeightLimit     float64       `yaml:"weight_limit"`   // Alarm above this weight (g)
	AlarmTimeout    time.Duration `yaml:"alarm_timeout"`  // Alarm auto-clear delay
	SampleCount     int           `yaml:"sample_count"`   // Sensor reads averaged per calibration point
	ReferenceMass   float64       `yaml:"reference_mass"` // Calibration mass (g)
	Pacing          time.Duration `yaml:"pacing"`         // Delay between loop iterations
	BlinkHalfPeriod time.Duration `yaml:"blink_half_period"`
	VRef            float64       `yaml:"vref"` // ADC full scale (V)
}

// DefaultThresholds returns the constants the firmware is built with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WeightLimit:     120.0,
		AlarmTimeout:    3 * time.Second,
		SampleCount:     10,
		ReferenceMass:   100,
		Pacing:          500 * time.Millisecond,
		BlinkHalfPeriod: 200 * time.Millisecond,
		VRef:            3.3,
	}
}

// Tint is a display backlight colour.
type Tint struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// Tints maps each state to its backlight colour.
type Tints struct {
	Idle        Tint `yaml:"idle"`
	Calibrating Tint `yaml:"calibrating"`
	Measuring   Tint `yaml:"measuring"`
	Alarming    Tint `yaml:"alarming"`
}

// DefaultTints returns white for normal screens, amber while calibrating and
// red for the alarm.
func DefaultTints() Tints {
	return Tints{
		Idle:        Tint{R: 0xff, G: 0xff, B: 0xff},
		Calibrating: Tint{R: 0xff, G: 0xc3, B: 0x00},
		Measuring:   Tint{R: 0xff, G: 0xff, B: 0xff},
		Alarming:    Tint{R: 0xc7, G: 0x00, B: 0x39},
	}
}

// For returns the tint of state s.
func (t Tints) For(s State) Tint {
	switch s {
	case StateCalibrating:
		return t.Calibrating
	case StateMeasuring:
		return t.Measuring
	case StateAlarming:
		return t.Alarming
	default:
		return t.Idle
	}
}
