package hub

import "github.com/AmanShaikh33/HUDDLENEW/internal/event"

// Session is one authenticated live connection. The presence registry,
// room router, delivery pipeline and relay all address connections
// through this interface; the gorilla-backed Client is the only
// production implementation.
type Session interface {
	// ID is the connection handle, unique per accepted connection.
	ID() string
	// UserID is the authenticated identity bound at the gateway.
	UserID() string
	// Send enqueues an event for delivery. It returns false when the
	// session is closed or its queue stayed full past the send timeout;
	// a missed push is not an error, the message lives in the store.
	Send(env event.Envelope) bool
	// Close tears the connection down. Safe to call more than once.
	Close()
}
