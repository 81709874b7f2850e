// Package cmd defines the stride CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Stride - AI coaching service for endurance athletes",
	Long: `Stride is the AI coaching backend for the Stride mobile app.

It answers athletes' training questions through a tool-using AI coach
grounded in their profile, goals, constraints and recent training data.

Run "stride serve" to start the HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
