package controller

import "time"

// State is the controller lifecycle state.
type State int

const (
	Idle State = iota
	Starting
	Running
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	default:
		return "idle"
	}
}

// Status is a point-in-time view of the controller, published to status
// listeners.
type Status struct {
	State         State
	SessionID     string
	Target        string
	Stable        bool
	Paused        bool
	LastPresentAt time.Time // zero before the first presence
	StartedAt     time.Time
	LastError     string
	UpdatedAt     time.Time
}
