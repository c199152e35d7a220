package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/threadcraft/pulse/internal/model"
)

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func seedEvent(ms *mockStore, tenantID, id string) {
	_ = ms.CreateEvent(context.Background(), &model.Event{
		ID:         id,
		TenantID:   tenantID,
		EventType:  "order_created",
		EntityType: model.EntityOrder,
		EntityID:   "o-1",
		CreatedAt:  time.Now().UTC(),
	})
}

func TestExportJSONL_Empty(t *testing.T) {
	ms := newMockStore()
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, "t1", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != "header" || h.TenantID != "t1" || h.EventCount != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_TenantScoped(t *testing.T) {
	ms := newMockStore()
	seedEvent(ms, "t1", "evt-a")
	seedEvent(ms, "t1", "evt-b")
	seedEvent(ms, "t2", "evt-c")

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, "t1", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	// 1 header + 2 events = 3
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	if strings.Contains(buf.String(), "evt-c") {
		t.Error("t2's event leaked into t1's archive")
	}

	var rec struct {
		Type string       `json:"type"`
		Data *model.Event `json:"data"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if rec.Type != "event" || rec.Data.ID != "evt-a" {
		t.Fatalf("unexpected first record: %+v", rec)
	}
}

func TestExportJSONL_Paginates(t *testing.T) {
	ms := newMockStore()
	total := exportPageSize + 25
	for i := range total {
		seedEvent(ms, "t1", fmt.Sprintf("evt-%06d", i))
	}

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, "t1", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != total+1 {
		t.Fatalf("expected %d lines, got %d", total+1, len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.EventCount != total {
		t.Fatalf("expected event_count=%d, got %d", total, h.EventCount)
	}
}
