package events

import (
	"context"

	"github.com/threadcraft/pulse/internal/model"
)

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, ev *model.Event) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
