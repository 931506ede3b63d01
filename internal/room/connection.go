// internal/room/connection.go
package room

import (
	log "github.com/sirupsen/logrus"
)

// Event is one outbound message: a flat JSON object keyed by "type".
type Event map[string]interface{}

// Connection is a single session's live presence on the server. The write
// pump owned by the gateway drains OutChan back to the websocket; the
// gateway also owns the socket lifetime, so leaving a room never closes the
// connection.
type Connection struct {
	SessionID string
	OutChan   chan Event
}

// Write pushes an event onto the session's OutChan non-blockingly. Logs if
// the channel is closed or full and the event had to be dropped.
func (c *Connection) Write(ev Event) {
	select {
	case c.OutChan <- ev:
	default:
		evType, _ := ev["type"].(string)
		log.Warnf("session %s: OutChan closed or full, dropped event %q", c.SessionID, evType)
	}
}

// WriteError is a convenience to send an advisory error event.
func (c *Connection) WriteError(msg string) {
	c.Write(Event{
		"type":    "error",
		"message": msg,
	})
}
