package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPositionsCmd creates the positions command.
func NewPositionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Print the planned scan positions without moving anything",
		Long: `Positions computes the pan angles a scan would visit for the current
configuration. No hardware is touched, so it is safe to run anywhere.

Examples:
  # Positions for the calibrated defaults
  panscan positions

  # What a tighter overlap would do
  panscan positions --overlap 20`,
		Args: cobra.NoArgs,
		RunE: runPositionsCmd,
	}

	addGeometryFlags(cmd)

	return cmd
}

// runPositionsCmd executes the positions command.
func runPositionsCmd(cmd *cobra.Command, _ []string) error {
	cf, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	cfg := cf.ScanConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	positions, err := cfg.Positions()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "FOV %.1f deg, overlap %.1f deg, range [%.1f, %.1f]: %d positions\n",
		cfg.FOVDegrees, cfg.OverlapDegrees, cfg.PanMin, cfg.PanMax, len(positions))
	for i, pan := range positions {
		fmt.Fprintf(out, "  %2d: %6.1f deg\n", i, pan)
	}
	return nil
}
