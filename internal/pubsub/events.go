// Package pubsub fans typed events out to Bubble Tea listeners.
package pubsub

import (
	"context"
	"time"
)

// EventType classifies a published event.
type EventType string

const (
	// ChangedEvent reports that a watched resource changed.
	ChangedEvent EventType = "changed"
	// ReloadedEvent reports that a resource was re-read successfully.
	ReloadedEvent EventType = "reloaded"
	// FailedEvent reports an error while producing a resource.
	FailedEvent EventType = "failed"
	// LoggedEvent carries a formatted log line.
	LoggedEvent EventType = "logged"
)

// Event is a published payload with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes typed payloads.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
