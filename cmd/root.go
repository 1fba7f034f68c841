package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "field-service-portal",
	Short: "Field service portal: training agenda, bookings, service calls",
	Long:  `HTTP + WebSocket API. Commands: serve, migrate, seed.`,
	RunE:  runServe, // default: run the API (same as "field-service-portal serve")
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// Execute runs the root command and returns the error (for main to log.Fatal).
func Execute() error {
	return rootCmd.Execute()
}
