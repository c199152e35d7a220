// Package archive exports a tenant's event log to long-term storage.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/threadcraft/pulse/internal/model"
	"github.com/threadcraft/pulse/internal/store"
)

// exportPageSize is how many events each store round-trip fetches.
const exportPageSize = 500

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	TenantID   string    `json:"tenant_id"`
	EventCount int       `json:"event_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes one tenant's full event log as JSONL to w: a header
// record followed by one record per event. Events are fetched in pages so an
// archive run never holds a tenant's whole history in a single query.
func ExportJSONL(ctx context.Context, s store.Store, tenantID string, w io.Writer) error {
	var events []*model.Event
	offset := 0
	for {
		page, total, err := s.ListEvents(ctx, model.EventFilter{
			TenantID: tenantID,
			Limit:    exportPageSize,
			Offset:   offset,
		})
		if err != nil {
			return fmt.Errorf("list events for %s: %w", tenantID, err)
		}
		events = append(events, page...)
		offset += len(page)
		if len(page) == 0 || offset >= total {
			break
		}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		TenantID:   tenantID,
		EventCount: len(events),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, ev := range events {
		if err := enc.Encode(record{Type: "event", Data: ev}); err != nil {
			return fmt.Errorf("encode event %s: %w", ev.ID, err)
		}
	}

	return nil
}
