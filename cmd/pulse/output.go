package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/threadcraft/pulse/internal/model"
	"github.com/threadcraft/pulse/internal/sessions"
	"github.com/threadcraft/pulse/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printEventTable(ev *model.Event) {
	fmt.Printf("ID:          %s\n", ev.ID)
	fmt.Printf("Tenant:      %s\n", ev.TenantID)
	fmt.Printf("Event Type:  %s\n", ev.EventType)
	fmt.Printf("Entity:      %s/%s\n", ev.EntityType, ev.EntityID)
	if ev.ActorUserID != "" {
		fmt.Printf("Actor:       %s\n", ev.ActorUserID)
	}
	fmt.Printf("Broadcast:   %t\n", ev.IsBroadcast)
	if len(ev.BroadcastToUsers) > 0 {
		fmt.Printf("To Users:    %v\n", ev.BroadcastToUsers)
	}
	if len(ev.BroadcastToRoles) > 0 {
		fmt.Printf("To Roles:    %v\n", ev.BroadcastToRoles)
	}
	if len(ev.Payload) > 0 {
		fmt.Printf("Payload:     %s\n", string(ev.Payload))
	}
	if ev.ProcessedAt != nil {
		fmt.Printf("Processed:   %s\n", ev.ProcessedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("Processed:   pending\n")
	}
	fmt.Printf("Created At:  %s\n", ev.CreatedAt.Format("2006-01-02 15:04:05"))
}

func printEventListTable(events []*model.Event, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEVENT TYPE\tENTITY\tACTOR\tPROCESSED\tCREATED")
	for _, ev := range events {
		processed := "pending"
		if ev.ProcessedAt != nil {
			processed = ev.ProcessedAt.Format("15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\t%s\t%s\n",
			ev.ID,
			ev.EventType,
			ev.EntityType,
			ev.EntityID,
			ev.ActorUserID,
			processed,
			ev.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d events (%d total)\n", len(events), total)
}

func printNotificationListTable(notifications []*model.Notification, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tCATEGORY\tTITLE\tREAD\tCREATED")
	for _, n := range notifications {
		title := n.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		read := ""
		if n.IsRead {
			read = "read"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			n.ID,
			ui.RenderPriority(string(n.Priority)),
			n.Category,
			title,
			read,
			n.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d notifications (%d total)\n", len(notifications), total)
}

func printNotificationTable(n *model.Notification) {
	fmt.Printf("ID:        %s\n", n.ID)
	fmt.Printf("Type:      %s\n", n.Type)
	fmt.Printf("Title:     %s\n", n.Title)
	fmt.Printf("Message:   %s\n", n.Message)
	fmt.Printf("Category:  %s\n", n.Category)
	fmt.Printf("Priority:  %s\n", ui.RenderPriority(string(n.Priority)))
	if n.ActionURL != "" {
		fmt.Printf("Action:    %s\n", n.ActionURL)
	}
	if n.IsRead && n.ReadAt != nil {
		fmt.Printf("Read At:   %s\n", n.ReadAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Created:   %s\n", n.CreatedAt.Format("2006-01-02 15:04:05"))
}

func printSessionTable(entries []sessions.Entry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tTENANT\tUSER\tIDLE\tDURATION\tSENT")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%.0fs\t%d\n",
			e.SessionID,
			e.TenantID,
			e.UserID,
			e.IdleSecs,
			e.DurationSecs,
			e.MessagesSent,
		)
	}
	w.Flush()
	fmt.Printf("\n%d sessions\n", len(entries))
}
