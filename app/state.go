package app

// State is the application lifecycle state. It only moves forward.
type State int32

const (
	StateNotStarted State = iota
	StateStarting
	StateRunning
	StateShuttingDown
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}
