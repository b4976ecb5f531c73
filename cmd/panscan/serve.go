package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-panscan/internal/log"
	"github.com/teslashibe/go-panscan/pkg/web"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scanner as an HTTP service",
		Long: `Serve keeps the camera tracking continuously and exposes the scanner
over HTTP:

  GET  /api/state        scanner lifecycle state
  GET  /api/positions    planned scan positions
  POST /api/scan         start a scan (409 while one is running)
  GET  /api/scan/latest  most recent completed result
  GET  /api/objects      live tracked-object store
  WS   /ws/progress      scan progress stream

Examples:
  panscan serve
  panscan serve --port 9090 --servo-host scanner.local`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addHardwareFlags(cmd)
	cmd.Flags().StringP("port", "p", "", "HTTP listen port (overrides config)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cf, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cf.Web.Port, _ = cmd.Flags().GetString("port")
	}

	r, err := buildRig(cf)
	if err != nil {
		return err
	}
	defer r.tracker.Stop()

	// The service tracks continuously so /api/objects is live between
	// scans.
	if err := r.tracker.Start(); err != nil {
		return err
	}

	server := web.NewServer(cf.Web.Port, r.scanner, r.tracker)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received shutdown signal, stopping server")
		if err := server.Shutdown(); err != nil {
			log.Warn("server shutdown", "error", err)
		}
	}()

	return server.Start()
}
