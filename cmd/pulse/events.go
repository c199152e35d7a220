package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/threadcraft/pulse/internal/client"
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Short:   "Browse the event audit log",
	GroupID: "events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, _ := cmd.Flags().GetString("entity-type")
		entityID, _ := cmd.Flags().GetString("entity-id")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		req := &client.ListEventsRequest{
			EntityType: entityType,
			EntityID:   entityID,
			Limit:      limit,
			Offset:     offset,
		}
		if cmd.Flags().Changed("processed") {
			processed, _ := cmd.Flags().GetBool("processed")
			req.Processed = &processed
		}

		resp, err := pulseClient.ListEvents(context.Background(), req)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}

		if jsonOutput {
			printJSON(resp.Events)
		} else {
			printEventListTable(resp.Events, resp.Total)
		}
		return nil
	},
}

var eventsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := pulseClient.GetEvent(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching event: %w", err)
		}

		if jsonOutput {
			printJSON(ev)
		} else {
			printEventTable(ev)
		}
		return nil
	},
}

func init() {
	eventsListCmd.Flags().String("entity-type", "", "filter by entity type")
	eventsListCmd.Flags().String("entity-id", "", "filter by entity ID")
	eventsListCmd.Flags().Bool("processed", false, "filter by processed state")
	eventsListCmd.Flags().Int("limit", 20, "maximum number of events to return")
	eventsListCmd.Flags().Int("offset", 0, "offset for pagination")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsShowCmd)
}
