package session

// State is the lifecycle position of one outgoing turn.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// InFlight reports whether s is Sending or Streaming.
func (s State) InFlight() bool {
	return s == StateSending || s == StateStreaming
}

// EventType tags the events a turn delivers.
type EventType string

const (
	EventChunk     EventType = "chunk"
	EventComplete  EventType = "complete"
	EventError     EventType = "error"
	EventCancelled EventType = "cancelled"
)

// Terminal reports whether t ends the event sequence of a turn.
func (t EventType) Terminal() bool {
	return t != EventChunk
}
