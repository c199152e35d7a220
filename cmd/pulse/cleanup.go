package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:     "cleanup",
	Short:   "Delete notifications past the retention window",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deleted, err := pulseClient.Cleanup(context.Background())
		if err != nil {
			return fmt.Errorf("running cleanup: %w", err)
		}

		if jsonOutput {
			data, _ := json.Marshal(map[string]int64{"deleted": deleted})
			fmt.Println(string(data))
		} else {
			fmt.Printf("%d notifications deleted\n", deleted)
		}
		return nil
	},
}
