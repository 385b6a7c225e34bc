//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"

	"github.com/itohio/goscale/pkg/adc"
	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/scale"
)

// PCA9633 backlight registers
const (
	regMode1  = 0x00
	regMode2  = 0x01
	regBlue   = 0x02
	regGreen  = 0x03
	regRed    = 0x04
	regOutput = 0x08
)

var (
	uart = machine.UART0

	commands  link.CommandReader
	statusBuf [64]byte
)

func main() {
	PIN_STATUS_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_READY_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_ALARM.Configure(machine.PinConfig{Mode: machine.PinOutput})

	PIN_TARE.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	PIN_RESET.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	machine.InitADC()
	PIN_LOAD_CELL.Configure(machine.PinConfig{Mode: machine.PinInput})
	sensor := machine.ADC{Pin: PIN_LOAD_CELL}
	sensor.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	machine.I2C0.Configure(machine.I2CConfig{})
	display := newLCD(machine.I2C0)

	log := logrus.New()
	log.SetOutput(uart)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	th := scale.DefaultThresholds()
	tare := &scale.RemoteButton{Button: pinButton(PIN_TARE)}

	ctrl := scale.New(th, scale.Hardware{
		Sensor:  adcSensor{adc: sensor, vref: float32(th.VRef)},
		Tare:    tare,
		Status:  pinOutput(PIN_STATUS_LED),
		Ready:   pinOutput(PIN_READY_LED),
		Alarm:   pinOutput(PIN_ALARM),
		Display: display,
	}, scale.WithLogger(log.WithField("component", "scale")))

	reset := ctrl.ResetSignal()
	PIN_RESET.SetInterrupt(machine.PinRising, func(machine.Pin) {
		reset.Request()
	})

	ctrl.OnUpdate(func(st scale.Status) {
		tare.Step()
		processSerial(tare, reset)
		line := link.AppendStatus(statusBuf[:0], link.FromScale(time.Now(), st))
		uart.Write(append(line, '\n'))
	})

	ctrl.Run(context.Background())
}

// processSerial drains pending command bytes. A remote tare is held for the
// next tick only; reset goes through the same signal as the pin.
func processSerial(tare *scale.RemoteButton, reset *scale.ResetSignal) {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}
		cmd, ok := commands.Feed(data)
		if !ok {
			continue
		}
		switch cmd {
		case link.CommandTare:
			tare.Press()
		case link.CommandReset:
			reset.Request()
		}
	}
}

type adcSensor struct {
	adc  machine.ADC
	vref float32
}

func (s adcSensor) Voltage() (float64, error) {
	return float64(adc.ToVoltage(s.adc.Get(), s.vref)), nil
}

type pinButton machine.Pin

func (p pinButton) Pressed() bool {
	return machine.Pin(p).Get()
}

type pinOutput machine.Pin

func (p pinOutput) Set(on bool) {
	machine.Pin(p).Set(on)
}

// lcd drives a 16x2 HD44780 on a PCF8574 backpack through hd44780i2c and a
// PCA9633 RGB backlight at BACKLIGHT_ADDRESS.
type lcd struct {
	bus  drivers.I2C
	text hd44780i2c.Device
}

func newLCD(bus *machine.I2C) *lcd {
	d := &lcd{
		bus:  bus,
		text: hd44780i2c.New(bus, LCD_ADDRESS),
	}
	d.text.Configure(hd44780i2c.Config{Width: 16, Height: 2})

	d.writeBacklight(regMode1, 0)
	d.writeBacklight(regMode2, 0)
	d.writeBacklight(regOutput, 0xAA) // all channels under PWM control
	return d
}

func (d *lcd) Clear() {
	d.text.ClearDisplay()
}

func (d *lcd) SetCursor(col, row int) {
	d.text.SetCursor(uint8(col), uint8(row))
}

func (d *lcd) Print(text string) {
	d.text.Print([]byte(text))
}

func (d *lcd) SetTint(r, g, b uint8) {
	d.writeBacklight(regRed, r)
	d.writeBacklight(regGreen, g)
	d.writeBacklight(regBlue, b)
}

func (d *lcd) writeBacklight(reg, value uint8) {
	d.bus.Tx(BACKLIGHT_ADDRESS, []byte{reg, value}, nil)
}
