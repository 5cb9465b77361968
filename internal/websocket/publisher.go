package websocket

import "sync"

// HubPublisher pushes events to a user's live connections as soon as
// they are published. A nil hub turns every publish into a no-op, which
// lets callers run without a realtime layer (CLI tools, tests).
type HubPublisher struct {
	hub *Hub
}

// NewHubPublisher creates a publisher backed by the given hub.
func NewHubPublisher(hub *Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

// PublishToUser sends an event to all of the user's connections.
func (p *HubPublisher) PublishToUser(userID string, event string, payload interface{}) {
	if p == nil || p.hub == nil {
		return
	}
	p.hub.SendToUser(userID, NewMessage(event, payload))
}

// DeferredPublisher queues events during a request and delivers them
// only when Flush is called, after the database work has committed.
// Clients therefore never receive a push for state that was rolled
// back. Not safe for use across requests; create one per request.
type DeferredPublisher struct {
	hub *Hub

	mu      sync.Mutex
	pending []*queuedEvent
}

type queuedEvent struct {
	userID  string
	message *Message
}

// NewDeferredPublisher creates an empty queue backed by the given hub.
// A nil hub is allowed; Flush then simply discards the queue.
func NewDeferredPublisher(hub *Hub) *DeferredPublisher {
	return &DeferredPublisher{hub: hub}
}

// PublishToUser queues an event for delivery at Flush time.
func (p *DeferredPublisher) PublishToUser(userID string, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, &queuedEvent{
		userID:  userID,
		message: NewMessage(event, payload),
	})
}

// Flush delivers all queued events in publish order and empties the
// queue. Call it after the transaction commits.
func (p *DeferredPublisher) Flush() {
	p.mu.Lock()
	events := p.pending
	p.pending = nil
	p.mu.Unlock()

	if p.hub == nil {
		return
	}
	for _, ev := range events {
		p.hub.SendToUser(ev.userID, ev.message)
	}
}

// Discard drops all queued events without delivering them. Call it when
// the transaction rolls back.
func (p *DeferredPublisher) Discard() {
	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
}

// Len reports how many events are waiting for Flush.
func (p *DeferredPublisher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
