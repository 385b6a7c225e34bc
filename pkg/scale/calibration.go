package scale

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrZeroSensitivity is returned when both calibration points read the
	// same voltage.
	ErrZeroSensitivity = errors.New("calibration fault: reference and zero voltages are equal")
	// ErrNotCalibrated is returned when a weight is requested without a slope.
	ErrNotCalibrated = errors.New("scale is not calibrated")
	// ErrInvalidMass is returned for a non-positive reference mass.
	ErrInvalidMass = errors.New("reference mass must be positive")
)

// Calibration is the two-point linear model of the load cell.
// Slope is in volts per gram and is only set by Derive.
type Calibration struct {
	ZeroVoltage      float64
	ReferenceVoltage float64
	Slope            float64
}

// Calibrated reports whether a usable slope is present.
func (c Calibration) Calibrated() bool {
	return c.Slope != 0
}

// Derive computes Slope from the captured voltages. On failure Slope is left
// at zero.
func (c *Calibration) Derive(referenceMass float64) error {
	slope, err := DeriveSlope(c.ZeroVoltage, c.ReferenceVoltage, referenceMass)
	if err != nil {
		c.Slope = 0
		return err
	}
	c.Slope = slope
	return nil
}

// Weight converts a voltage to grams.
func (c Calibration) Weight(voltage float64) (float64, error) {
	return WeightFromVoltage(voltage, c.ZeroVoltage, c.Slope)
}

// AveragedVoltage calls read n times and returns the mean of the results.
// Each read must sample the sensor again. n <= 0 is treated as 1.
func AveragedVoltage(read func() (float64, error), n int) (float64, error) {
	mean, _, err := SampleVoltage(read, n)
	return mean, err
}

// SampleVoltage is AveragedVoltage that also reports the sample standard
// deviation. The deviation is zero for a single sample.
func SampleVoltage(read func() (float64, error), n int) (mean, stddev float64, err error) {
	if n <= 0 {
		n = 1
	}

	samples := make([]float64, n)
	for i := range samples {
		v, err := read()
		if err != nil {
			return 0, 0, err
		}
		samples[i] = v
	}

	if n == 1 {
		return samples[0], 0, nil
	}
	mean, stddev = stat.MeanStdDev(samples, nil)
	return mean, stddev, nil
}

// DeriveSlope fits a line through (0 g, zero) and (massGrams, reference).
func DeriveSlope(zero, reference, massGrams float64) (float64, error) {
	if massGrams <= 0 {
		return 0, ErrInvalidMass
	}
	if reference == zero {
		return 0, ErrZeroSensitivity
	}
	return (reference - zero) / massGrams, nil
}

// WeightFromVoltage returns (voltage - zero) / slope, refusing a zero slope.
func WeightFromVoltage(voltage, zero, slope float64) (float64, error) {
	if slope == 0 {
		return 0, ErrNotCalibrated
	}
	return (voltage - zero) / slope, nil
}
