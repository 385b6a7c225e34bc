// Package adc converts between raw converter counts and volts.
package adc

import "github.com/chewxy/math32"

// Max is the full-scale count of a 16-bit ADC reading. TinyGo's
// machine.ADC.Get scales every converter to this range.
const Max = 0xffff

// ToVoltage converts a 16-bit ADC count to volts for reference vref.
func ToVoltage(raw uint16, vref float32) float32 {
	return float32(raw) / Max * vref
}

// FromVoltage quantises v to a 16-bit ADC count, clamping to 0..vref.
func FromVoltage(v, vref float32) uint16 {
	if vref <= 0 {
		return 0
	}
	v = math32.Max(0, math32.Min(v, vref))
	return uint16(math32.Round(v / vref * Max))
}
