package notify

import (
	"encoding/json"
	"time"

	"github.com/threadcraft/pulse/internal/model"
)

// Message is the wire envelope delivered to live client connections. It is an
// internal contract between the broadcast router and the transport, not a
// public protocol.
type Message struct {
	Type      string         `json:"type"`
	Payload   MessagePayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
	TenantID  string         `json:"tenant_id"`
}

// MessagePayload carries the event details inside a Message.
type MessagePayload struct {
	Event       string           `json:"event"` // originating event type code
	EntityType  model.EntityType `json:"entity_type"`
	EntityID    string           `json:"entity_id"`
	Data        json.RawMessage  `json:"data,omitempty"`
	ActorUserID string           `json:"actor_user_id,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Transport delivers messages to live client connections. Both methods are
// fire-and-forget: no delivery acknowledgment is observed, and sending to a
// user with no open session is a no-op, not an error. Implementations must be
// safe for concurrent use.
type Transport interface {
	SendToUser(tenantID, userID string, msg *Message) error
	SendToTenant(tenantID string, msg *Message) error
}

// NopTransport discards all messages (used when no live transport is wired).
type NopTransport struct{}

func (NopTransport) SendToUser(tenantID, userID string, msg *Message) error { return nil }
func (NopTransport) SendToTenant(tenantID string, msg *Message) error       { return nil }

// MessageTypeForEntity maps an entity type to the wire message type clients
// switch on. Unknown entity types fall back to the generic "notification".
func MessageTypeForEntity(e model.EntityType) string {
	switch e {
	case model.EntityOrder:
		return "order_update"
	case model.EntityOrderItem:
		return "order_item_update"
	case model.EntityDesignJob:
		return "design_job_update"
	case model.EntityWorkOrder:
		return "work_order_update"
	case model.EntityPurchaseOrder:
		return "purchase_order_update"
	case model.EntityFulfillment:
		return "fulfillment_update"
	default:
		return "notification"
	}
}

// NewMessage builds the wire envelope for an event.
func NewMessage(ev *model.Event) *Message {
	now := time.Now().UTC()
	return &Message{
		Type: MessageTypeForEntity(ev.EntityType),
		Payload: MessagePayload{
			Event:       ev.EventType,
			EntityType:  ev.EntityType,
			EntityID:    ev.EntityID,
			Data:        ev.Payload,
			ActorUserID: ev.ActorUserID,
			Timestamp:   now,
		},
		Timestamp: now,
		TenantID:  ev.TenantID,
	}
}
