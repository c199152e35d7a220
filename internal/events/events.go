// Package events publishes recorded domain events onto the inter-service bus
// so sibling services (billing, analytics, search) can consume the same
// stream the live transport sees.
package events

import (
	"context"

	"github.com/threadcraft/pulse/internal/model"
)

// Publisher is the interface for emitting recorded events onto the bus. The
// implementation derives the subject from the event's entity type.
type Publisher interface {
	Publish(ctx context.Context, ev *model.Event) error
	Close() error
}

// Subscriber receives events from the bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(subject string) (<-chan []byte, func(), error)
	Close() error
}
