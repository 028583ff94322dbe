package task

// State represents the lifecycle state of a task
type State string

const (
	StateNew        State = "New"
	StateReady      State = "Ready"
	StateBlocked    State = "Blocked"
	StateSuspended  State = "Suspended"
	StateProcessing State = "Processing"
	StateTerminated State = "Terminated"
)

// IsWaiting reports whether the task sits in the blocked queue. Blocked and
// Suspended share the queue and differ only by label.
func (s State) IsWaiting() bool {
	return s == StateBlocked || s == StateSuspended
}

// IsLive reports whether the state belongs to a task still held by the table.
func (s State) IsLive() bool {
	switch s {
	case StateNew, StateReady, StateBlocked, StateSuspended, StateProcessing:
		return true
	}
	return false
}
