package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goscale/pkg/scale"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, 120.0, cfg.Thresholds.WeightLimit)
	assert.Equal(t, 3*time.Second, cfg.Thresholds.AlarmTimeout)
	assert.Equal(t, 10, cfg.Thresholds.SampleCount)
	assert.Equal(t, 100.0, cfg.Thresholds.ReferenceMass)
	assert.Equal(t, 500*time.Millisecond, cfg.Thresholds.Pacing)
	assert.Equal(t, 200*time.Millisecond, cfg.Thresholds.BlinkHalfPeriod)
	assert.Equal(t, 3.3, cfg.Thresholds.VRef)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, scale.Tint{R: 0xc7, G: 0x00, B: 0x39}, cfg.Display.Alarming)
	assert.Equal(t, time.Minute, cfg.Plot.Window)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.Equal(t, scale.DefaultThresholds(), cfg.Thresholds)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
thresholds:
  weight_limit: 250
  alarm_timeout: 5s
  sample_count: 32
  reference_mass: 200
  pacing: 250ms
  blink_half_period: 100ms

serial:
  port: "COM4"

simulation:
  bias: 0.4
  sensitivity: 0.002
  load: 50

display:
  alarming: {r: 255, g: 0, b: 0}

plot:
  window: 30s
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, 250.0, cfg.Thresholds.WeightLimit)
	assert.Equal(t, 5*time.Second, cfg.Thresholds.AlarmTimeout)
	assert.Equal(t, 32, cfg.Thresholds.SampleCount)
	assert.Equal(t, 200.0, cfg.Thresholds.ReferenceMass)
	assert.Equal(t, 250*time.Millisecond, cfg.Thresholds.Pacing)
	assert.Equal(t, 100*time.Millisecond, cfg.Thresholds.BlinkHalfPeriod)
	assert.Equal(t, 3.3, cfg.Thresholds.VRef) // default
	assert.Equal(t, "COM4", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate) // default
	assert.Equal(t, 0.4, cfg.Simulation.Bias)
	assert.Equal(t, 0.002, cfg.Simulation.Sensitivity)
	assert.Equal(t, 50.0, cfg.Simulation.Load)
	assert.Equal(t, scale.Tint{R: 255}, cfg.Display.Alarming)
	assert.Equal(t, Default().Display.Idle, cfg.Display.Idle)
	assert.Equal(t, 30*time.Second, cfg.Plot.Window)
	assert.Equal(t, 1000, cfg.Plot.MaxPoints) // default
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_RejectsNegativeLimit(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("thresholds:\n  weight_limit: -5\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.ErrorContains(t, err, "weight_limit")
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*scale.Thresholds)
		errMsg string
	}{
		{"zero timeout", func(th *scale.Thresholds) { th.AlarmTimeout = 0 }, "alarm_timeout"},
		{"zero mass", func(th *scale.Thresholds) { th.ReferenceMass = 0 }, "reference_mass"},
		{"zero pacing", func(th *scale.Thresholds) { th.Pacing = 0 }, "pacing"},
		{"zero half period", func(th *scale.Thresholds) { th.BlinkHalfPeriod = 0 }, "blink_half_period"},
		{"negative samples", func(th *scale.Thresholds) { th.SampleCount = -1 }, "sample_count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg.Thresholds)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Thresholds.WeightLimit = 80

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 80.0, loaded.Thresholds.WeightLimit)
	assert.Equal(t, cfg.Thresholds.AlarmTimeout, loaded.Thresholds.AlarmTimeout)
}
