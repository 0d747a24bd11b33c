// Package cmd implements the regnotify command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "regnotify",
	Short: "Food business registration notification service",
	Long:  "A service that accepts food business registrations and dispatches the notification emails owed to councils, operators and feedback recipients.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resendCmd)
}
