// Package cli implements the thawk-notify operator command line.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "0.1.0"

// NewRootCmd builds the thawk-notify command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "thawk-notify",
		Short: "TelHawk workflow failure notifier",
		Long: `thawk-notify renders workflow failure events into Google Chat cards
and delivers them to the configured webhook.

Use it to preview a card before wiring a pipeline, or to push a
notification by hand when the automated trigger is unavailable.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (default: environment only)")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newSendCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
