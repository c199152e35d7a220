package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/threadcraft/pulse/internal/model"
)

func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestSubjectForEntity(t *testing.T) {
	for _, tc := range []struct {
		entity model.EntityType
		want   string
	}{
		{model.EntityOrder, SubjectOrder},
		{model.EntityOrderItem, SubjectOrderItem},
		{model.EntityDesignJob, SubjectDesignJob},
		{model.EntityWorkOrder, SubjectWorkOrder},
		{model.EntityPurchaseOrder, SubjectPurchaseOrder},
		{model.EntityFulfillment, SubjectFulfillment},
		{model.EntityType("mystery"), SubjectGeneric},
	} {
		if got := SubjectForEntity(tc.entity); got != tc.want {
			t.Errorf("SubjectForEntity(%q) = %q, want %q", tc.entity, got, tc.want)
		}
	}
}

func TestNoopPublisher(t *testing.T) {
	var _ Publisher = (*NoopPublisher)(nil)

	pub := &NoopPublisher{}
	if err := pub.Publish(context.Background(), &model.Event{}); err != nil {
		t.Fatalf("NoopPublisher.Publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("NoopPublisher.Close: %v", err)
	}
}

func TestNATSPublisher_Publish(t *testing.T) {
	var _ Publisher = (*NATSPublisher)(nil)

	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	// Subscribe to capture published messages.
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(SubjectOrder, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	event := &model.Event{ID: "evt-pub1", TenantID: "t1", EventType: "order_updated", EntityType: model.EntityOrder, EntityID: "o1"}
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		if msg.Subject != SubjectOrder {
			t.Errorf("published on %q, want %q", msg.Subject, SubjectOrder)
		}
		var got model.Event
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.ID != "evt-pub1" || got.TenantID != "t1" {
			t.Errorf("got event id=%q tenant=%q", got.ID, got.TenantID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNATSSubscriber_ReceivesMessages(t *testing.T) {
	var _ Subscriber = (*NATSSubscriber)(nil)

	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("pulse.events.>")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	event := &model.Event{ID: "evt-sub1", TenantID: "t1", EventType: "design_approved", EntityType: model.EntityDesignJob, EntityID: "d1"}
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	pub.conn.Flush()

	select {
	case data := <-ch:
		var got model.Event
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.ID != "evt-sub1" {
			t.Errorf("got event id=%q, want evt-sub1", got.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNATSSubscriber_CancelClosesChannel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(SubjectGeneric)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	cancel()
	// Cancel twice is safe.
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
