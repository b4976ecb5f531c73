package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-panscan/internal/log"
	"github.com/teslashibe/go-panscan/internal/report"
	"github.com/teslashibe/go-panscan/pkg/scan"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one full sweep and report the objects found",
		Long: `Scan sweeps the pan range, pausing at each planned position to let the
servo settle and the detector accumulate samples, then merges repeated
sightings of the same object and prints the result.

Interrupting a running scan (Ctrl-C) keeps whatever was captured: the
merge stages still run over the partial sweep and the camera returns to
center.

Examples:
  # Scan with the calibrated defaults
  panscan scan

  # Narrower sweep with more samples per stop
  panscan scan --pan-min 45 --pan-max 135 --frames 10

  # Export for a spreadsheet
  panscan scan --csv -o scans/livingroom.csv

  # Machine-readable output
  panscan scan --json`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	addHardwareFlags(cmd)

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown and --csv)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --csv)")
	cmd.Flags().Bool("csv", false,
		"Output CSV report (mutually exclusive with --json and --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	cf, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	r, err := buildRig(cf)
	if err != nil {
		return err
	}
	defer r.tracker.Stop()

	// Cancel the sweep on interrupt; partial captures survive.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		log.Info("received shutdown signal, finishing scan early")
		cancel()
	}()

	result, scanErr := r.scanner.Scan(ctx)
	if result == nil {
		return scanErr
	}

	if err := writeReport(cmd, result); err != nil {
		return err
	}
	return scanErr
}

// writeReport renders the result in the selected format.
func writeReport(cmd *cobra.Command, result *scan.Result) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	asMarkdown, _ := cmd.Flags().GetBool("markdown")
	asCSV, _ := cmd.Flags().GetBool("csv")

	selected := 0
	for _, flag := range []bool{asJSON, asMarkdown, asCSV} {
		if flag {
			selected++
		}
	}
	if selected > 1 {
		return fmt.Errorf("--json, --markdown, and --csv are mutually exclusive")
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch {
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case asMarkdown:
		return report.NewMarkdownWriter(out).Write(result)
	case asCSV:
		return report.NewCSVWriter(out).Write(result)
	default:
		printSummary(out, result)
		return nil
	}
}

// printSummary writes the human-readable default output.
func printSummary(out io.Writer, result *scan.Result) {
	status := "complete"
	if result.Interrupted {
		status = "interrupted, partial results"
	}
	fmt.Fprintf(out, "Scan %s (%s)\n", result.ID, status)
	fmt.Fprintf(out, "Positions: %d  Raw detections: %d  Unique objects: %d\n\n",
		len(result.Positions), result.RawDetections, len(result.Objects))

	for _, obj := range result.Objects {
		fmt.Fprintf(out, "  %-14s %.2f  at %6.1f deg (position %d)\n",
			obj.Label, obj.Confidence, obj.WorldAngle, obj.PositionIndex)
	}
}
