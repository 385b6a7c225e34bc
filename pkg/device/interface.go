package device

import "github.com/itohio/goscale/pkg/scale"

// Ensure simulated parts satisfy the controller's hardware interfaces.
var (
	_ scale.Sensor    = (*LoadCell)(nil)
	_ scale.Button    = (*Button)(nil)
	_ scale.Indicator = (*LED)(nil)
	_ scale.Display   = (*LCD)(nil)
)

// Panel is a complete set of simulated hardware.
type Panel struct {
	LoadCell *LoadCell
	Tare     *Button
	Status   *LED
	Ready    *LED
	Alarm    *LED
	LCD      *LCD
}

// Hardware returns the panel wired as controller hardware.
func (p *Panel) Hardware() scale.Hardware {
	return scale.Hardware{
		Sensor:  p.LoadCell,
		Tare:    p.Tare,
		Status:  p.Status,
		Ready:   p.Ready,
		Alarm:   p.Alarm,
		Display: p.LCD,
	}
}
