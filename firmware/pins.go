package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Load cell amplifier output
	PIN_LOAD_CELL = machine.A0

	// Push buttons, active high with pull-downs
	PIN_TARE  = machine.D1
	PIN_RESET = machine.D2

	// Indicators
	PIN_STATUS_LED = machine.D3
	PIN_READY_LED  = machine.D6
	PIN_ALARM      = machine.D7

	// I2C0 (D4/D5): 16x2 HD44780 on a PCF8574 backpack, RGB backlight on a PCA9633
	LCD_ADDRESS       = 0x27
	BACKLIGHT_ADDRESS = 0x62

	// Serial configuration
	// Status line: "unix_micros,state,weight,zero,reference,slope\n"
	// Example: "1234567890123456,Measuring,118.250,0.5000,1.0000,0.005" = ~56 bytes
	// 2 lines/sec at the default pacing, so 115200 leaves plenty of room for log lines.
	UART_BAUD_RATE = 115200
)
