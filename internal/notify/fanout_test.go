package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/threadcraft/pulse/internal/audience"
	"github.com/threadcraft/pulse/internal/model"
)

// One recipient's storage failure must not prevent any other recipient from
// getting their row.
func TestFanOut_PerRecipientIsolation(t *testing.T) {
	ms := newMockStore()
	ms.notifErrFor = map[string]error{"u2": errors.New("disk full")}
	eng := NewEngine(ms, NopTransport{}, staticResolver("u1", "u2", "u3"), nil, nil)

	ev := orderEvent()
	ev.ID = "evt-iso"

	res := eng.FanOut(context.Background(), ev)
	if res.Created != 2 || res.Failed != 1 {
		t.Fatalf("got %+v, want {created:2 failed:1}", res)
	}
	for _, uid := range []string{"u1", "u3"} {
		if got := ms.notificationsFor("t1", uid); len(got) != 1 {
			t.Errorf("user %s: got %d notifications, want 1", uid, len(got))
		}
	}
	if got := ms.notificationsFor("t1", "u2"); len(got) != 0 {
		t.Errorf("u2 should have no rows, got %d", len(got))
	}
}

func TestFanOut_ResolverFailureMeansZeroRecipients(t *testing.T) {
	ms := newMockStore()
	failing := audience.Func(func(context.Context, *model.Event) ([]string, error) {
		return nil, errors.New("policy service down")
	})
	eng := NewEngine(ms, NopTransport{}, failing, nil, nil)

	res := eng.FanOut(context.Background(), orderEvent())
	if res.Created != 0 || res.Failed != 0 {
		t.Fatalf("got %+v, want {0 0}", res)
	}
}

func TestFanOut_DerivedFields(t *testing.T) {
	ms := newMockStore()
	eng := NewEngine(ms, NopTransport{}, staticResolver("u1"), nil, nil)

	ev := &model.Event{
		ID:          "evt-d1",
		TenantID:    "t1",
		EventType:   "design_approval_delay",
		EntityType:  model.EntityDesignJob,
		EntityID:    "dj-9",
		IsBroadcast: false,
	}

	res := eng.FanOut(context.Background(), ev)
	if res.Created != 1 {
		t.Fatalf("got %+v", res)
	}

	got := ms.notificationsFor("t1", "u1")[0]
	if got.Type != "design_update" {
		t.Errorf("type = %q, want design_update", got.Type)
	}
	if got.Category != model.CategoryDesign {
		t.Errorf("category = %q, want design", got.Category)
	}
	if got.Priority != model.PriorityHigh {
		t.Errorf("priority = %q, want high (event type contains \"delay\")", got.Priority)
	}
	if got.ActionURL != "/design-jobs/dj-9" {
		t.Errorf("action url = %q", got.ActionURL)
	}
	if got.IsRead || got.ReadAt != nil {
		t.Error("new notifications must start unread")
	}

	var data map[string]string
	if err := json.Unmarshal(got.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["event_id"] != "evt-d1" || data["entity_id"] != "dj-9" {
		t.Errorf("data does not reference the originating event: %v", data)
	}
}

func TestTypeForEvent(t *testing.T) {
	for _, tc := range []struct {
		eventType string
		want      string
	}{
		{"order_created", "order_update"},
		{"order_item_shipped", "order_update"},
		{"design_approved", "design_update"},
		{"manufacturing_started", "manufacturing_update"},
		{"fulfillment_completed", "fulfillment_update"},
		{"user_invited", "info"},
	} {
		if got := TypeForEvent(tc.eventType); got != tc.want {
			t.Errorf("TypeForEvent(%q) = %q, want %q", tc.eventType, got, tc.want)
		}
	}
}

func TestPriorityForEvent(t *testing.T) {
	for _, tc := range []struct {
		eventType string
		want      model.Priority
	}{
		{"order_urgent_change", model.PriorityUrgent},
		{"payment_error", model.PriorityUrgent},
		{"stock_warning", model.PriorityHigh},
		{"shipping_delay", model.PriorityHigh},
		{"order_updated", model.PriorityNormal},
	} {
		if got := PriorityForEvent(tc.eventType); got != tc.want {
			t.Errorf("PriorityForEvent(%q) = %q, want %q", tc.eventType, got, tc.want)
		}
	}
}

func TestMessageTypeForEntity(t *testing.T) {
	for _, tc := range []struct {
		entity model.EntityType
		want   string
	}{
		{model.EntityOrder, "order_update"},
		{model.EntityOrderItem, "order_item_update"},
		{model.EntityDesignJob, "design_job_update"},
		{model.EntityWorkOrder, "work_order_update"},
		{model.EntityPurchaseOrder, "purchase_order_update"},
		{model.EntityFulfillment, "fulfillment_update"},
		{model.EntityType("something_else"), "notification"},
	} {
		if got := MessageTypeForEntity(tc.entity); got != tc.want {
			t.Errorf("MessageTypeForEntity(%q) = %q, want %q", tc.entity, got, tc.want)
		}
	}
}

func TestActionURL(t *testing.T) {
	withOrder := json.RawMessage(`{"order_id":"o7"}`)
	for _, tc := range []struct {
		name    string
		ev      *model.Event
		want    string
	}{
		{"order", &model.Event{EntityType: model.EntityOrder, EntityID: "o1"}, "/orders/o1"},
		{"item with parent", &model.Event{EntityType: model.EntityOrderItem, EntityID: "i1", Payload: withOrder}, "/orders/o7/items/i1"},
		{"item without parent", &model.Event{EntityType: model.EntityOrderItem, EntityID: "i1"}, "/orders"},
		{"work order", &model.Event{EntityType: model.EntityWorkOrder, EntityID: "w1"}, "/work-orders/w1"},
		{"purchase order", &model.Event{EntityType: model.EntityPurchaseOrder, EntityID: "p1"}, "/purchase-orders/p1"},
		{"fulfillment with parent", &model.Event{EntityType: model.EntityFulfillment, EntityID: "f1", Payload: withOrder}, "/orders/o7/fulfillment"},
		{"fulfillment without parent", &model.Event{EntityType: model.EntityFulfillment, EntityID: "f1"}, "/fulfillments/f1"},
		{"unknown", &model.Event{EntityType: "mystery", EntityID: "x"}, "/dashboard"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := ActionURL(tc.ev); got != tc.want {
				t.Errorf("ActionURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTitleAndMessage(t *testing.T) {
	created := &model.Event{EventType: "order_created", EntityType: model.EntityOrder, EntityID: "o1"}
	title, msg := titleAndMessage(created)
	if title != "New order created" {
		t.Errorf("title = %q, want %q", title, "New order created")
	}
	if msg != "order o1 created" {
		t.Errorf("message = %q", msg)
	}

	updated := &model.Event{EventType: "work_order_updated", EntityType: model.EntityWorkOrder, EntityID: "w2"}
	title, msg = titleAndMessage(updated)
	if title != "Work order updated" {
		t.Errorf("title = %q, want %q", title, "Work order updated")
	}
	if msg != "work order w2 updated" {
		t.Errorf("message = %q", msg)
	}
}
