package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/threadcraft/pulse/internal/client"
)

var inboxCmd = &cobra.Command{
	Use:     "inbox",
	Short:   "List notifications in your inbox",
	GroupID: "inbox",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		priority, _ := cmd.Flags().GetString("priority")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		req := &client.ListNotificationsRequest{
			Category: category,
			Priority: priority,
			Limit:    limit,
			Offset:   offset,
		}
		if unread, _ := cmd.Flags().GetBool("unread"); unread {
			t := true
			req.Unread = &t
		}

		resp, err := pulseClient.ListNotifications(context.Background(), req)
		if err != nil {
			return fmt.Errorf("listing notifications: %w", err)
		}

		if jsonOutput {
			printJSON(resp.Notifications)
		} else {
			printNotificationListTable(resp.Notifications, resp.Total)
		}
		return nil
	},
}

var unreadCmd = &cobra.Command{
	Use:     "unread",
	Short:   "Show the unread notification count",
	GroupID: "inbox",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		n, err := pulseClient.UnreadCount(context.Background(), category)
		if err != nil {
			return fmt.Errorf("fetching unread count: %w", err)
		}

		if jsonOutput {
			data, _ := json.Marshal(map[string]int{"unread": n})
			fmt.Println(string(data))
		} else {
			fmt.Printf("%d unread\n", n)
		}
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:     "read <id>",
	Short:   "Mark a notification as read",
	GroupID: "inbox",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := pulseClient.MarkRead(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("marking read: %w", err)
		}

		if jsonOutput {
			printJSON(n)
		} else {
			printNotificationTable(n)
		}
		return nil
	},
}

var readAllCmd = &cobra.Command{
	Use:     "read-all",
	Short:   "Mark all notifications as read",
	GroupID: "inbox",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		updated, err := pulseClient.MarkAllRead(context.Background(), category)
		if err != nil {
			return fmt.Errorf("marking all read: %w", err)
		}

		if jsonOutput {
			data, _ := json.Marshal(map[string]int{"updated": updated})
			fmt.Println(string(data))
		} else {
			fmt.Printf("%d notifications marked read\n", updated)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Delete a notification",
	GroupID: "inbox",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pulseClient.DeleteNotification(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting notification: %w", err)
		}
		fmt.Printf("notification %s deleted\n", args[0])
		return nil
	},
}

func init() {
	inboxCmd.Flags().String("category", "", "filter by category (order, production, fulfillment, design, system)")
	inboxCmd.Flags().String("priority", "", "filter by priority (low, normal, high, urgent)")
	inboxCmd.Flags().Bool("unread", false, "only unread notifications")
	inboxCmd.Flags().Int("limit", 20, "maximum number of notifications to return")
	inboxCmd.Flags().Int("offset", 0, "offset for pagination")

	unreadCmd.Flags().String("category", "", "count only this category")
	readAllCmd.Flags().String("category", "", "mark read only this category")
}
