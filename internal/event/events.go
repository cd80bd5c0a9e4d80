package event

// EventType identifies the kind of an inbound event.
type EventType int

const (
	EventTypeBar EventType = iota + 1
)

// String returns the string representation of EventType
func (t EventType) String() string {
	switch t {
	case EventTypeBar:
		return "BAR"
	default:
		return "UNKNOWN"
	}
}

// Event is the unit of work consumed by the Sequencer hotpath.
type Event interface {
	GetSeq() uint64
	GetType() EventType
}

// BaseEvent carries the fields common to all events.
type BaseEvent struct {
	Seq uint64
	Ts  int64 // Unix milliseconds
}

// GetSeq returns the monotonic sequence number assigned by the gateway.
func (e *BaseEvent) GetSeq() uint64 {
	return e.Seq
}

// BarEvent is one market sample: price plus traded volume for a bar.
type BarEvent struct {
	BaseEvent
	Symbol string
	Price  float64
	Volume float64
}

// GetType returns EventTypeBar.
func (e *BarEvent) GetType() EventType {
	return EventTypeBar
}
