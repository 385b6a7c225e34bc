package scale

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSlope(t *testing.T) {
	tests := []struct {
		name      string
		zero, ref float64
		mass      float64
		want      float64
		wantErr   error
	}{
		{name: "scenario A", zero: 0.50, ref: 1.00, mass: 100, want: 0.005},
		{name: "negative slope", zero: 1.0, ref: 0.8, mass: 100, want: -0.002},
		{name: "other mass", zero: 0.2, ref: 1.2, mass: 500, want: 0.002},
		{name: "zero sensitivity", zero: 0.7, ref: 0.7, mass: 100, wantErr: ErrZeroSensitivity},
		{name: "zero mass", zero: 0.5, ref: 1.0, mass: 0, wantErr: ErrInvalidMass},
		{name: "negative mass", zero: 0.5, ref: 1.0, mass: -1, wantErr: ErrInvalidMass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveSlope(tt.zero, tt.ref, tt.mass)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)

			w, err := WeightFromVoltage(tt.zero, tt.zero, got)
			require.NoError(t, err)
			assert.Zero(t, w)
		})
	}
}

func TestWeightFromVoltage(t *testing.T) {
	tests := []struct {
		voltage float64
		want    float64
	}{
		{0.75, 50},
		{1.10, 120},
		{1.25, 150},
		{0.50, 0},
		{0.40, -20},
	}
	for _, tt := range tests {
		w, err := WeightFromVoltage(tt.voltage, 0.5, 0.005)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, w, 1e-9, "voltage %v", tt.voltage)
	}
}

func TestWeightFromVoltage_ZeroSlope(t *testing.T) {
	w, err := WeightFromVoltage(1.0, 0.5, 0)
	assert.ErrorIs(t, err, ErrNotCalibrated)
	assert.Zero(t, w)
}

func TestCalibration_Derive(t *testing.T) {
	c := Calibration{ZeroVoltage: 0.5, ReferenceVoltage: 1.0}
	require.NoError(t, c.Derive(100))
	assert.True(t, c.Calibrated())
	assert.InDelta(t, 0.005, c.Slope, 1e-12)

	w, err := c.Weight(0.75)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, w, 1e-9)

	c.ReferenceVoltage = c.ZeroVoltage
	assert.ErrorIs(t, c.Derive(100), ErrZeroSensitivity)
	assert.False(t, c.Calibrated())
}

func TestAveragedVoltage_ResamplesEveryRead(t *testing.T) {
	values := []float64{1.0, 1.2, 0.8, 1.1, 0.9}
	calls := 0
	read := func() (float64, error) {
		v := values[calls%len(values)]
		calls++
		return v, nil
	}

	avg, err := AveragedVoltage(read, len(values))
	require.NoError(t, err)
	assert.Equal(t, len(values), calls)
	assert.InDelta(t, 1.0, avg, 1e-12)
}

func TestAveragedVoltage_NonPositiveCount(t *testing.T) {
	calls := 0
	read := func() (float64, error) {
		calls++
		return 0.42, nil
	}

	avg, err := AveragedVoltage(read, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0.42, avg)
}

func TestAveragedVoltage_StopsOnError(t *testing.T) {
	boom := errors.New("adc timeout")
	calls := 0
	read := func() (float64, error) {
		calls++
		if calls == 3 {
			return 0, boom
		}
		return 1, nil
	}

	_, err := AveragedVoltage(read, 10)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestSampleVoltage_Spread(t *testing.T) {
	values := []float64{0.9, 1.1, 0.9, 1.1}
	i := 0
	read := func() (float64, error) {
		v := values[i]
		i++
		return v, nil
	}

	mean, stddev, err := SampleVoltage(read, len(values))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mean, 1e-12)
	assert.InDelta(t, 0.11547, stddev, 1e-5)

	mean, stddev, err = SampleVoltage(func() (float64, error) { return 0.3, nil }, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.3, mean)
	assert.Zero(t, stddev)
}
