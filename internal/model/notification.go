package model

import (
	"encoding/json"
	"time"
)

// Category groups notifications in the inbox UI.
type Category string

const (
	CategoryOrder         Category = "order"
	CategoryDesign        Category = "design"
	CategoryManufacturing Category = "manufacturing"
	CategoryFulfillment   Category = "fulfillment"
	CategoryGeneral       Category = "general"
)

// IsValid reports whether the category is a known enum value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryOrder, CategoryDesign, CategoryManufacturing,
		CategoryFulfillment, CategoryGeneral:
		return true
	}
	return false
}

// CategoryForEntity maps an entity type to its inbox category.
// Unknown entity types fall back to CategoryGeneral.
func CategoryForEntity(e EntityType) Category {
	switch e {
	case EntityOrder, EntityOrderItem:
		return CategoryOrder
	case EntityDesignJob:
		return CategoryDesign
	case EntityWorkOrder:
		return CategoryManufacturing
	case EntityPurchaseOrder, EntityFulfillment:
		return CategoryFulfillment
	default:
		return CategoryGeneral
	}
}

// Priority orders notifications within the inbox.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether the priority is a known enum value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Notification is a per-user, per-tenant inbox entry. Only the read state
// mutates after insert; rows are removed by the retention sweeper or an
// explicit delete.
//
// Invariant: ReadAt is non-nil if and only if IsRead is true.
type Notification struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"` // semantic kind, e.g. "order_update"
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Category  Category        `json:"category"`
	Priority  Priority        `json:"priority"`
	ActionURL string          `json:"action_url,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationFilter narrows inbox queries. TenantID and UserID are always
// required; every query is scoped to exactly one inbox.
type NotificationFilter struct {
	TenantID string
	UserID   string
	Category Category // zero value = all categories
	Priority Priority // zero value = all priorities
	IsRead   *bool    // nil = both read and unread
	Limit    int      // 0 = DefaultPageSize
	Offset   int
}

// DefaultPageSize is applied when a filter does not set an explicit limit.
const DefaultPageSize = 50
