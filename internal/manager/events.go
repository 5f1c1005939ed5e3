package manager

import (
	"slices"
	"sync"
)

// Event is a manager lifecycle notification: a name, the endpoint it
// concerns, and optional key/value detail.
type Event struct {
	Name       string
	EndpointID string
	Fields     map[string]any
}

// EventPublisher receives events from the manager. Publish is called with
// internal locks held, so implementations must be fast and must not call
// back into the manager.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher collects events in memory. Used by tests to observe the
// lifecycle without a real event sink.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}
