// Package notify is the outbound event port. Emission is fire-and-forget:
// sinks log their own failures and never propagate them into the mutation
// that triggered the event.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Event types published by the workflow.
const (
	EventListingCreated  = "listing.created"
	EventListingApproved = "listing.approved"
	EventListingRejected = "listing.rejected"
	EventListingVoted    = "listing.voted"
	EventUserBanned      = "user.banned"
)

// Event is a notification keyed by type + entity.
type Event struct {
	Type        string                 `json:"type"`
	EntityType  string                 `json:"entity_type"`
	EntityID    string                 `json:"entity_id"`
	TriggeredBy string                 `json:"triggered_by"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// Sink receives events after the triggering transaction has committed.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// LogSink writes events to the structured log. Used when no broker is
// configured.
type LogSink struct{}

func (LogSink) Emit(_ context.Context, event Event) {
	slog.Info("notification",
		"event", event.Type,
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"triggered_by", event.TriggeredBy,
	)
}

// MemorySink records events for assertions in tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func (m *MemorySink) Emit(_ context.Context, event Event) {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
}

func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MemorySink) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
