package entities

// PumpAction: 1 = activate irrigation pump, 0 = leave it off.
type PumpAction int

const (
	PumpOff PumpAction = 0
	PumpOn  PumpAction = 1
)

// Decision is the only output of the decision engine.
type Decision struct {
	PumpAction PumpAction `json:"pump_action"`
	Reason     string     `json:"reason"`
	Gate       string     `json:"-"` // gate that produced the decision (audit only)
}
