package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/threadcraft/pulse/internal/client"
)

var publishCmd = &cobra.Command{
	Use:     "publish <event-type>",
	Short:   "Publish a business event",
	GroupID: "events",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eventType := args[0]

		entityType, _ := cmd.Flags().GetString("entity-type")
		entityID, _ := cmd.Flags().GetString("entity-id")
		payload, _ := cmd.Flags().GetString("payload")
		users, _ := cmd.Flags().GetStringSlice("users")
		roles, _ := cmd.Flags().GetStringSlice("roles")
		noBroadcast, _ := cmd.Flags().GetBool("no-broadcast")

		req := &client.PublishEventRequest{
			EventType:        eventType,
			EntityType:       entityType,
			EntityID:         entityID,
			BroadcastToUsers: users,
			BroadcastToRoles: roles,
		}
		if payload != "" {
			if !json.Valid([]byte(payload)) {
				return fmt.Errorf("invalid payload: expected a JSON object")
			}
			req.Payload = json.RawMessage(payload)
		}
		if noBroadcast {
			f := false
			req.IsBroadcast = &f
		}

		resp, err := pulseClient.PublishEvent(context.Background(), req)
		if err != nil {
			return fmt.Errorf("publishing event: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			fmt.Printf("Published %s (%d notified, %d failed)\n",
				resp.Event.ID, resp.FanOut.Created, resp.FanOut.Failed)
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().String("entity-type", "", "entity type (order, work_order, fulfillment, design, system)")
	publishCmd.Flags().String("entity-id", "", "entity ID the event refers to")
	publishCmd.Flags().String("payload", "", "event payload as a JSON object")
	publishCmd.Flags().StringSlice("users", nil, "target specific user IDs (repeatable)")
	publishCmd.Flags().StringSlice("roles", nil, "target role names (repeatable)")
	publishCmd.Flags().Bool("no-broadcast", false, "skip the live SSE broadcast")
	publishCmd.MarkFlagRequired("entity-type")
	publishCmd.MarkFlagRequired("entity-id")
}
