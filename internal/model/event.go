package model

import (
	"encoding/json"
	"time"
)

// EntityType identifies the kind of business entity an event refers to.
type EntityType string

const (
	EntityOrder         EntityType = "order"
	EntityOrderItem     EntityType = "order_item"
	EntityDesignJob     EntityType = "design_job"
	EntityWorkOrder     EntityType = "work_order"
	EntityPurchaseOrder EntityType = "purchase_order"
	EntityFulfillment   EntityType = "fulfillment"
)

// IsValid reports whether the entity type is a known enum value.
func (e EntityType) IsValid() bool {
	switch e {
	case EntityOrder, EntityOrderItem, EntityDesignJob, EntityWorkOrder,
		EntityPurchaseOrder, EntityFulfillment:
		return true
	}
	return false
}

// Event is an append-only record of a domain state change. Rows are never
// mutated after insert except for the single processed_at write.
type Event struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
	EventType        string          `json:"event_type"` // free-form code, e.g. "order_updated"
	EntityType       EntityType      `json:"entity_type"`
	EntityID         string          `json:"entity_id"`
	ActorUserID      string          `json:"actor_user_id,omitempty"` // empty for system-generated events
	Payload          json.RawMessage `json:"payload,omitempty"`
	BroadcastToUsers []string        `json:"broadcast_to_users,omitempty"`
	BroadcastToRoles []string        `json:"broadcast_to_roles,omitempty"`
	IsBroadcast      bool            `json:"is_broadcast"`
	ProcessedAt      *time.Time      `json:"processed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// EventFilter narrows event listings. TenantID is always required; the store
// never returns rows outside it.
type EventFilter struct {
	TenantID   string
	EntityType EntityType // zero value = all entity types
	EntityID   string
	Processed  *bool // nil = both processed and unprocessed
	Limit      int
	Offset     int
}
