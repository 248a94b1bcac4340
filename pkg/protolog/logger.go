// Package protolog provides protocol event logging for the LEDNET layers.
//
// The device session, discovery scanner and frame exchange report what goes
// over the wire as structured events. Applications plug in a Logger to see
// them; the zero-configuration default is to discard everything.
package protolog

// Logger is the interface applications implement to receive protocol events.
// Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records a protocol event. Implementations must be safe for
	// concurrent use.
	Log(event Event)
}

// NoopLogger discards all events. Usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
