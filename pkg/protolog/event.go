package protolog

import "time"

// Direction indicates whether bytes were sent to or received from a device.
type Direction int

// Directions.
const (
	DirectionOut Direction = iota
	DirectionIn
)

// String returns the direction as a short label.
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionIn:
		return "in"
	default:
		return "unknown"
	}
}

// MaxLogFrameSize is the maximum number of frame bytes included in an event.
// LEDNET frames are tiny, so truncation only happens on garbage input.
const MaxLogFrameSize = 64

// Event is a single protocol occurrence. Exactly one of the detail fields
// (Frame, Discovery, Error) is set.
type Event struct {
	// Time the event was recorded.
	Time time.Time

	// ExchangeID correlates the events of one command/reply exchange.
	ExchangeID string

	// Device is the remote address, when known.
	Device string

	// Direction of the bytes, for frame events.
	Direction Direction

	Frame     *FrameEvent
	Discovery *DiscoveryEvent
	Error     *ErrorEvent
}

// FrameEvent describes a frame written to or read from a device.
type FrameEvent struct {
	// Size is the full frame size in bytes.
	Size int

	// Data holds the frame bytes, truncated to MaxLogFrameSize.
	Data []byte

	// Truncated indicates Data does not hold the full frame.
	Truncated bool
}

// DiscoveryEvent describes a discovery probe or reply.
type DiscoveryEvent struct {
	// Target is the probed address for outbound events.
	Target string

	// Payload is the datagram as text.
	Payload string

	// Model is the model identifier parsed from a reply, if any.
	Model string

	// Skipped is set when a reply was ignored (unsupported model,
	// unparseable payload).
	Skipped bool
}

// ErrorEvent describes a protocol-level failure.
type ErrorEvent struct {
	// Op names the operation that failed (refresh, write, scan...).
	Op string

	// Message is the error text.
	Message string
}

// NewFrameEvent builds a frame event, truncating oversized data.
func NewFrameEvent(exchangeID, device string, dir Direction, data []byte) Event {
	fe := &FrameEvent{Size: len(data), Data: data}
	if len(data) > MaxLogFrameSize {
		fe.Data = data[:MaxLogFrameSize]
		fe.Truncated = true
	}
	return Event{
		Time:       time.Now(),
		ExchangeID: exchangeID,
		Device:     device,
		Direction:  dir,
		Frame:      fe,
	}
}

// NewErrorEvent builds an error event.
func NewErrorEvent(exchangeID, device, op string, err error) Event {
	return Event{
		Time:       time.Now(),
		ExchangeID: exchangeID,
		Device:     device,
		Error:      &ErrorEvent{Op: op, Message: err.Error()},
	}
}
