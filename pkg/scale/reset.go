package scale

import "sync/atomic"

// ResetSignal carries reset requests from an interrupt handler (or any other
// goroutine) to the control loop. The writer only raises the flag; the loop
// clears it and does the actual reset in its own context.
type ResetSignal struct {
	requested atomic.Bool
}

// Request raises the flag. It is safe to call from an interrupt handler.
// It returns false if a reset was already pending.
func (r *ResetSignal) Request() bool {
	return r.requested.CompareAndSwap(false, true)
}

// Pending reports whether a reset is waiting to be serviced.
func (r *ResetSignal) Pending() bool {
	return r.requested.Load()
}

// take clears the flag and reports whether it was set.
func (r *ResetSignal) take() bool {
	return r.requested.Swap(false)
}
