package session

type State int

const (
	Idle State = iota
	Reserved
	Charging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Reserved:
		return "reserved"
	case Charging:
		return "charging"
	}
	return "unknown"
}

// Snapshot is an immutable copy of a controller's reservation and charge session
type Snapshot struct {
	StationID    string
	State        State
	Reserved     bool
	ClaimTimeout int
	Active       bool
	// Speed is the charging power in kW
	Speed float64
	// Consumption is the energy charged so far in kWh
	Consumption float64
	Price       float64
	// Duration is the elapsed session time in seconds
	Duration int64
}
