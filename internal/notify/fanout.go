package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/threadcraft/pulse/internal/idgen"
	"github.com/threadcraft/pulse/internal/model"
)

// FanOutResult aggregates the per-recipient outcomes of one fan-out run.
// Partial success is normal; the counts exist for observability, not error
// propagation.
type FanOutResult struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// fanOutAttempt records the settled outcome of one recipient's write.
type fanOutAttempt struct {
	userID string
	err    error
}

// FanOut resolves the event's audience and writes one inbox notification per
// recipient. Each write is an independent attempt: outcomes are settled
// per-recipient and one failure never short-circuits the rest. Resolver
// failures are treated as an empty audience.
func (e *Engine) FanOut(ctx context.Context, ev *model.Event) FanOutResult {
	users, err := e.resolver.Resolve(ctx, ev)
	if err != nil {
		e.logger.Warn("audience resolution failed, fanning out to nobody",
			"event_id", ev.ID, "tenant_id", ev.TenantID, "error", err)
		users = nil
	}

	attempts := make([]fanOutAttempt, 0, len(users))
	for _, userID := range users {
		attempts = append(attempts, fanOutAttempt{
			userID: userID,
			err:    e.createNotification(ctx, ev, userID),
		})
	}

	var res FanOutResult
	for _, a := range attempts {
		if a.err != nil {
			res.Failed++
			e.logger.Warn("notification write failed",
				"event_id", ev.ID, "tenant_id", ev.TenantID, "user_id", a.userID, "error", a.err)
			continue
		}
		res.Created++
	}

	if res.Failed > 0 {
		e.logger.Info("fan-out completed with failures",
			"event_id", ev.ID, "created", res.Created, "failed", res.Failed)
	}
	return res
}

func (e *Engine) createNotification(ctx context.Context, ev *model.Event, userID string) error {
	n, err := buildNotification(ev, userID)
	if err != nil {
		return err
	}
	return e.store.CreateNotification(ctx, n)
}

// buildNotification derives an inbox notification from an event using the
// fixed derivation rules: semantic type from event-type keywords, category
// from entity type, priority from severity keywords, templated title and
// message, and an entity-specific action link.
func buildNotification(ev *model.Event, userID string) (*model.Notification, error) {
	id, err := idgen.NewNotificationID()
	if err != nil {
		return nil, err
	}

	title, message := titleAndMessage(ev)
	data, err := json.Marshal(map[string]string{
		"event_id":    ev.ID,
		"event_type":  ev.EventType,
		"entity_type": string(ev.EntityType),
		"entity_id":   ev.EntityID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal notification data: %w", err)
	}

	return &model.Notification{
		ID:        id,
		TenantID:  ev.TenantID,
		UserID:    userID,
		Type:      TypeForEvent(ev.EventType),
		Title:     title,
		Message:   message,
		Category:  model.CategoryForEntity(ev.EntityType),
		Priority:  PriorityForEvent(ev.EventType),
		ActionURL: ActionURL(ev),
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// TypeForEvent derives the notification's semantic kind from the event type
// code. First keyword match wins.
func TypeForEvent(eventType string) string {
	switch {
	case strings.Contains(eventType, "order"):
		return "order_update"
	case strings.Contains(eventType, "design"):
		return "design_update"
	case strings.Contains(eventType, "manufacturing"):
		return "manufacturing_update"
	case strings.Contains(eventType, "fulfillment"):
		return "fulfillment_update"
	default:
		return "info"
	}
}

// PriorityForEvent derives urgency from severity keywords in the event type.
func PriorityForEvent(eventType string) model.Priority {
	switch {
	case strings.Contains(eventType, "urgent"), strings.Contains(eventType, "error"):
		return model.PriorityUrgent
	case strings.Contains(eventType, "warning"), strings.Contains(eventType, "delay"):
		return model.PriorityHigh
	default:
		return model.PriorityNormal
	}
}

// entityLabels maps entity types to their human-readable names.
var entityLabels = map[model.EntityType]string{
	model.EntityOrder:         "order",
	model.EntityOrderItem:     "order item",
	model.EntityDesignJob:     "design job",
	model.EntityWorkOrder:     "work order",
	model.EntityPurchaseOrder: "purchase order",
	model.EntityFulfillment:   "fulfillment",
}

func entityLabel(e model.EntityType) string {
	if label, ok := entityLabels[e]; ok {
		return label
	}
	return "item"
}

// eventVerb extracts the trailing action word from an event type code
// ("order_shipped" -> "shipped"). Defaults to "updated".
func eventVerb(eventType string) string {
	if i := strings.LastIndex(eventType, "_"); i >= 0 && i < len(eventType)-1 {
		return eventType[i+1:]
	}
	if eventType != "" {
		return eventType
	}
	return "updated"
}

func titleAndMessage(ev *model.Event) (string, string) {
	label := entityLabel(ev.EntityType)
	verb := eventVerb(ev.EventType)

	var title string
	if verb == "created" {
		title = "New " + label + " created"
	} else {
		title = capitalize(label) + " " + verb
	}
	message := fmt.Sprintf("%s %s %s", label, ev.EntityID, verb)
	return title, message
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ActionURL builds the deep link a notification points at. Entity types with
// a parent order link into the order when the event payload carries order_id;
// anything unmapped falls back to the dashboard.
func ActionURL(ev *model.Event) string {
	switch ev.EntityType {
	case model.EntityOrder:
		return "/orders/" + ev.EntityID
	case model.EntityOrderItem:
		if orderID := orderIDFromPayload(ev.Payload); orderID != "" {
			return "/orders/" + orderID + "/items/" + ev.EntityID
		}
		return "/orders"
	case model.EntityDesignJob:
		return "/design-jobs/" + ev.EntityID
	case model.EntityWorkOrder:
		return "/work-orders/" + ev.EntityID
	case model.EntityPurchaseOrder:
		return "/purchase-orders/" + ev.EntityID
	case model.EntityFulfillment:
		if orderID := orderIDFromPayload(ev.Payload); orderID != "" {
			return "/orders/" + orderID + "/fulfillment"
		}
		return "/fulfillments/" + ev.EntityID
	default:
		return "/dashboard"
	}
}

// orderIDFromPayload extracts a related order_id carried in the event
// payload, if any.
func orderIDFromPayload(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}
	var p struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return ""
	}
	return p.OrderID
}
