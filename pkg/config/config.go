package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/itohio/goscale/pkg/scale"
)

// Config represents the application configuration.
type Config struct {
	Thresholds scale.Thresholds `yaml:"thresholds"`
	Serial     SerialConfig     `yaml:"serial"`
	Simulation SimulationConfig `yaml:"simulation"`
	Display    DisplayConfig    `yaml:"display"`
	Plot       PlotConfig       `yaml:"plot"`
}

// SerialConfig contains serial port configuration for the status monitor.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SimulationConfig describes the simulated load cell used by the host tools.
type SimulationConfig struct {
	Bias        float64 `yaml:"bias"`        // Output at zero load (V)
	Sensitivity float64 `yaml:"sensitivity"` // Output per gram (V/g)
	NoiseLevel  float64 `yaml:"noise_level"` // Peak noise (V)
	Load        float64 `yaml:"load"`        // Initial load (g)
}

// PlotConfig controls the weight trend shown by the desktop simulator.
type PlotConfig struct {
	Window    time.Duration `yaml:"window"`     // How much history to keep
	MaxPoints int           `yaml:"max_points"` // Points drawn after downsampling
}

// DisplayConfig contains backlight tints per screen.
type DisplayConfig = scale.Tints

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Thresholds: scale.DefaultThresholds(),
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Simulation: SimulationConfig{
			Bias:        0.5,
			Sensitivity: 0.005,
			NoiseLevel:  0.0005,
			Load:        0,
		},
		Display: scale.DefaultTints(),
		Plot: PlotConfig{
			Window:    time.Minute,
			MaxPoints: 1000,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", filename)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate rejects thresholds the controller cannot run with.
func (c *Config) Validate() error {
	t := c.Thresholds
	switch {
	case t.WeightLimit <= 0:
		return errors.Errorf("weight_limit must be positive, got %v", t.WeightLimit)
	case t.AlarmTimeout <= 0:
		return errors.Errorf("alarm_timeout must be positive, got %v", t.AlarmTimeout)
	case t.ReferenceMass <= 0:
		return errors.Errorf("reference_mass must be positive, got %v", t.ReferenceMass)
	case t.Pacing <= 0:
		return errors.Errorf("pacing must be positive, got %v", t.Pacing)
	case t.BlinkHalfPeriod <= 0:
		return errors.Errorf("blink_half_period must be positive, got %v", t.BlinkHalfPeriod)
	case t.SampleCount < 0:
		return errors.Errorf("sample_count must not be negative, got %d", t.SampleCount)
	case c.Plot.Window < 0:
		return errors.Errorf("plot window must not be negative, got %v", c.Plot.Window)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Thresholds.WeightLimit == 0 {
		c.Thresholds.WeightLimit = def.Thresholds.WeightLimit
	}
	if c.Thresholds.AlarmTimeout == 0 {
		c.Thresholds.AlarmTimeout = def.Thresholds.AlarmTimeout
	}
	if c.Thresholds.SampleCount == 0 {
		c.Thresholds.SampleCount = def.Thresholds.SampleCount
	}
	if c.Thresholds.ReferenceMass == 0 {
		c.Thresholds.ReferenceMass = def.Thresholds.ReferenceMass
	}
	if c.Thresholds.Pacing == 0 {
		c.Thresholds.Pacing = def.Thresholds.Pacing
	}
	if c.Thresholds.BlinkHalfPeriod == 0 {
		c.Thresholds.BlinkHalfPeriod = def.Thresholds.BlinkHalfPeriod
	}
	if c.Thresholds.VRef == 0 {
		c.Thresholds.VRef = def.Thresholds.VRef
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Simulation.Sensitivity == 0 {
		c.Simulation.Sensitivity = def.Simulation.Sensitivity
	}

	if c.Plot.Window == 0 {
		c.Plot.Window = def.Plot.Window
	}
	if c.Plot.MaxPoints == 0 {
		c.Plot.MaxPoints = def.Plot.MaxPoints
	}

	var zero scale.Tint
	if c.Display.Idle == zero {
		c.Display.Idle = def.Display.Idle
	}
	if c.Display.Calibrating == zero {
		c.Display.Calibrating = def.Display.Calibrating
	}
	if c.Display.Measuring == zero {
		c.Display.Measuring = def.Display.Measuring
	}
	if c.Display.Alarming == zero {
		c.Display.Alarming = def.Display.Alarming
	}
}
