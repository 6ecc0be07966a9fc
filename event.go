package docchat

// EventType discriminates Event values.
type EventType string

// EventType constants.
const (
	EventStatus EventType = "status"
	EventDelta  EventType = "delta"
	EventError  EventType = "error"
)

// Event is one element of a relay run's output. Events carry no identity
// beyond their order.
type Event struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
}

// StatusEvent returns a progress marker event.
func StatusEvent(content string) Event {
	return Event{Type: EventStatus, Content: content}
}

// DeltaEvent returns an incremental answer fragment event.
func DeltaEvent(content string) Event {
	return Event{Type: EventDelta, Content: content}
}

// ErrorEvent returns a terminal failure event.
func ErrorEvent(content string) Event {
	return Event{Type: EventError, Content: content}
}
