package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Short:   "List live SSE sessions for your tenant",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := pulseClient.SessionRoster(context.Background())
		if err != nil {
			return fmt.Errorf("fetching session roster: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printSessionTable(resp.Sessions)
		}
		return nil
	},
}
