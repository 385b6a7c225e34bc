// Package scale implements the control loop of a single load-cell weighing
// device. It contains:
//
//   - State: the four operating states and the table of allowed transitions
//   - Calibration: the two-point linear model and the arithmetic around it
//   - Stopwatch: the elapsed-time source used for alarm clearing and blinking
//   - ResetSignal: the flag an interrupt handler raises to request a reset
//   - Controller: the state machine that ties the above to the hardware
//
// Hardware is reached only through the small interfaces in hardware.go, so
// the whole package runs unchanged on a microcontroller, in the desktop
// simulator and in tests.
package scale
