package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/threadcraft/pulse/internal/client"
	"github.com/threadcraft/pulse/internal/ui"
)

var (
	httpURL    string
	authToken  string
	tenantID   string
	userID     string
	jsonOutput bool

	pulseClient client.PulseClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("PULSE_HTTP_URL"); s != "" {
		return s
	}
	if u := activeProfileURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if s := os.Getenv("PULSE_TOKEN"); s != "" {
		return s
	}
	return activeProfileToken()
}

func defaultTenant() string {
	if s := os.Getenv("PULSE_TENANT"); s != "" {
		return s
	}
	return activeProfileTenant()
}

func defaultUser() string {
	if s := os.Getenv("PULSE_USER"); s != "" {
		return s
	}
	return activeProfileUser()
}

var rootCmd = &cobra.Command{
	Use:   "pulse <command>",
	Short: "CLI client for the Pulse notification service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		// Piped output defaults to JSON so scripts get something parseable.
		if !jsonOutput && !ui.IsInteractive() {
			jsonOutput = true
		}
		pulseClient = client.NewHTTPClient(httpURL, authToken, tenantID, userID)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pulseClient != nil {
			pulseClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authentication")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", defaultTenant(), "tenant ID for request scoping")
	rootCmd.PersistentFlags().StringVar(&userID, "user", defaultUser(), "user ID for inbox operations")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "events", Title: "Events:"},
		&cobra.Group{ID: "inbox", Title: "Inbox:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Events
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(eventsCmd)

	// Inbox
	rootCmd.AddCommand(inboxCmd)
	rootCmd.AddCommand(unreadCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(readAllCmd)
	rootCmd.AddCommand(deleteCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
