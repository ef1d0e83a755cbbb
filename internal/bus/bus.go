// Package bus provides the event bus carrying benchmark run and query
// lifecycle events, with in-memory and Kafka backends.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations. Publishing is
// fire-and-forget: benchmark progress never blocks on a subscriber.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type, matching the topic it is published on.
	Type string `json:"type"`

	// Source is the component that generated the event.
	Source string `json:"source"`

	// Timestamp is when the event was created.
	Timestamp time.Time `json:"timestamp"`

	// RunID links all events of one benchmark run.
	RunID string `json:"run_id,omitempty"`

	// Payload contains the event data.
	Payload any `json:"payload,omitempty"`
}

// NewEvent creates an event with a fresh id and the current time.
func NewEvent(eventType, source, runID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		Payload:   payload,
	}
}

// Run lifecycle topics.
const (
	TopicRunStarted        = "run.started"
	TopicRunCompleted      = "run.completed"
	TopicQueryStateChanged = "query.state_changed"
	TopicQueryCompleted    = "query.completed"
	TopicIndexBuilt        = "index.built"
)
