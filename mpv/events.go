package mpv

import (
	"context"

	"github.com/tr1v3r/pkg/log"
)

// Listen blocks until an event is available. Events queued by earlier
// Execute calls are returned first, oldest first. Objects without an
// "event" field are skipped.
func (c *Conn) Listen(ctx context.Context) (Event, error) {
	if len(c.pending) > 0 {
		e := c.pending[0]
		c.pending[0] = nil
		c.pending = c.pending[1:]
		c.metrics.RecordEventDelivered()
		return e, nil
	}

	defer c.withDeadline(ctx)()
	for {
		msg, err := c.readMessage(ctx)
		if err != nil {
			return nil, err
		}
		if !isEvent(msg) {
			log.CtxDebug(ctx, "[%s] bad response: %v", c.id, msg)
			c.metrics.RecordDiscard()
			continue
		}
		c.metrics.RecordEventDelivered()
		return Event(msg), nil
	}
}

// ListenRaw returns the next line from the socket as is, minus trailing
// whitespace.
//
// ListenRaw bypasses the event queue: events queued by Execute are not
// returned, and mixing ListenRaw with Listen on one Conn can hand lines to
// either reader in any order.
func (c *Conn) ListenRaw(ctx context.Context) (string, error) {
	defer c.withDeadline(ctx)()
	return c.readLine(ctx)
}

// WaitForEvent listens until an event called name arrives. Other events
// are consumed.
func (c *Conn) WaitForEvent(ctx context.Context, name string) (Event, error) {
	for {
		e, err := c.Listen(ctx)
		if err != nil {
			return nil, err
		}
		if e.Name() == name {
			return e, nil
		}
	}
}

// Pending returns the number of queued events.
func (c *Conn) Pending() int { return len(c.pending) }
