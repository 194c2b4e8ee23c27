package registry

import (
	"context"
	"errors"
	"sync"
)

// EventKind classifies a change event.
type EventKind int

const (
	// EventSubmitted is published after a new notification was appended.
	EventSubmitted EventKind = iota
	// EventReplaced is published after a notification was replaced in place.
	EventReplaced
	// EventClosed is published after a notification was removed.
	EventClosed
	// EventNavigated is published after the cursor moved.
	EventNavigated
	// EventExpanded asks the renderer to show the full view of the current entry.
	EventExpanded
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventSubmitted:
		return "submitted"
	case EventReplaced:
		return "replaced"
	case EventClosed:
		return "closed"
	case EventNavigated:
		return "navigated"
	case EventExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}

// Event is a single change notification.
type Event struct {
	Kind EventKind
	ID   uint32 // Notification the change applies to, 0 if none
}

// ErrChangesClosed is returned by Next once the stream is closed and drained.
var ErrChangesClosed = errors.New("change stream closed")

// Changes is an unbounded multi-producer, single-consumer event queue.
// Publish never blocks and every published event is delivered once; bursts
// are not coalesced.
type Changes struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	wake   chan struct{}
}

// NewChanges creates an empty change stream.
func NewChanges() *Changes {
	return &Changes{wake: make(chan struct{}, 1)}
}

// Publish appends an event. Events published after Close are dropped.
func (c *Changes) Publish(ev Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available, the stream is closed and
// drained, or ctx is done.
func (c *Changes) Next(ctx context.Context) (Event, error) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			ev := c.queue[0]
			c.queue[0] = Event{}
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return ev, nil
		}
		closed := c.closed
		c.mu.Unlock()

		if closed {
			return Event{}, ErrChangesClosed
		}

		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-c.wake:
		}
	}
}

// Pending returns the number of undelivered events.
func (c *Changes) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Close stops accepting events. Events already queued are still delivered.
func (c *Changes) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}
