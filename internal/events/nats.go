package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/threadcraft/pulse/internal/model"
)

// Bus subjects, one per entity type. Wildcard consumers subscribe to
// "pulse.events.>".
const (
	SubjectOrder         = "pulse.events.order"
	SubjectOrderItem     = "pulse.events.order_item"
	SubjectDesignJob     = "pulse.events.design_job"
	SubjectWorkOrder     = "pulse.events.work_order"
	SubjectPurchaseOrder = "pulse.events.purchase_order"
	SubjectFulfillment   = "pulse.events.fulfillment"
	SubjectGeneric       = "pulse.events.generic"
)

// SubjectForEntity maps an entity type to its bus subject.
func SubjectForEntity(e model.EntityType) string {
	switch e {
	case model.EntityOrder:
		return SubjectOrder
	case model.EntityOrderItem:
		return SubjectOrderItem
	case model.EntityDesignJob:
		return SubjectDesignJob
	case model.EntityWorkOrder:
		return SubjectWorkOrder
	case model.EntityPurchaseOrder:
		return SubjectPurchaseOrder
	case model.EntityFulfillment:
		return SubjectFulfillment
	default:
		return SubjectGeneric
	}
}

// NATSPublisher publishes recorded events to NATS, one subject per entity
// type. Connects to PULSE_NATS_URL and publishes JSON-encoded events.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, ev *model.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	return p.conn.Publish(SubjectForEntity(ev.EntityType), data)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NATSSubscriber subscribes to events from NATS subjects.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber connects to NATS with automatic reconnection support.
// Extra nats.Option values (e.g. disconnect/reconnect handlers) can be appended.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	defaults := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: nc}, nil
}

// Subscribe returns a channel that receives raw event payloads for the given
// subject (supports NATS wildcards like "pulse.events.>"). Call the returned
// cancel function to unsubscribe and close the channel.
func (s *NATSSubscriber) Subscribe(subject string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, 64)

	var (
		mu     sync.Mutex
		closed bool
		once   sync.Once
	)

	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- msg.Data:
		default:
			// Drop message if channel is full to avoid blocking the NATS client.
		}
	})
	if err != nil {
		close(ch)
		return nil, nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	// Flush ensures the subscription is registered on the server before
	// returning, so that messages published on other connections are routed.
	if err := s.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		close(ch)
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}

	cancel := func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			mu.Lock()
			closed = true
			mu.Unlock()
			// Drain remaining messages so senders don't block, then close.
			for {
				select {
				case <-ch:
				default:
					close(ch)
					return
				}
			}
		})
	}

	return ch, cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
