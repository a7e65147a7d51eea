// Package realtime pushes named events to connected admin clients.
//
// Handlers publish through the Publisher interface after a successful write.
// Delivery is best-effort: there is no ack, retry or replay, and a client
// that misses an event is expected to re-fetch.
package realtime

import (
	"context"
	"encoding/json"
)

// Event names sent to clients.
const (
	EventConnected           = "connected"
	EventNewQuote            = "newQuote"
	EventDeleteQuote         = "deleteQuote"
	EventNewMessage          = "newMessage"
	EventNewBooking          = "newBooking"
	EventUpdateBookingStatus = "updateBookingStatus"
	EventDeleteBooking       = "deleteBooking"
)

// Frame is the wire shape of every server message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Publisher emits a named event. Implementations must not block on slow
// receivers and never report delivery failures to the caller.
type Publisher interface {
	Publish(ctx context.Context, event string, data any)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) {}

func encode(event string, data any) ([]byte, error) {
	return json.Marshal(Frame{Event: event, Data: data})
}
