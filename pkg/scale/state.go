package scale

// State is an operating state of the controller.
type State string

const (
	StateIdle        State = "Idle"
	StateCalibrating State = "Calibrating"
	StateMeasuring   State = "Measuring"
	StateAlarming    State = "Alarming"
)

// States lists every state in declaration order.
var States = []State{StateIdle, StateCalibrating, StateMeasuring, StateAlarming}

// transitions holds the edges a state handler may take. Reset is handled
// separately and may force Idle from anywhere.
var transitions = map[State][]State{
	StateIdle:        {StateCalibrating},
	StateCalibrating: {StateMeasuring},
	StateMeasuring:   {StateAlarming, StateIdle},
	StateAlarming:    {StateIdle},
}

// CanTransition reports whether a handler in state from may move to state to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// calPhase tracks progress inside Calibrating.
type calPhase int

const (
	phaseCaptureZero calPhase = iota // zero point not yet committed
	phaseAwaitReference              // zero committed, waiting for the second press
)
