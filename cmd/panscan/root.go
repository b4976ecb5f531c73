package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for panscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panscan",
		Short: "Room scanner for a pan-mounted camera",
		Long: `panscan drives a pan/tilt camera bracket through a planned sweep,
captures object detections at each stop, and merges repeated sightings
of the same physical object into a single record.

The servo daemon and capture device are configured through flags or a
.panscan file in the current or home directory.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .panscan in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewPositionsCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
