package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-panscan/pkg/scan"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the progress stream of a running panscan service",
		Long: `Watch connects to a panscan service's websocket progress stream and
prints each state transition as it happens.

Examples:
  panscan watch
  panscan watch --addr scanner.local:8080`,
		Args: cobra.NoArgs,
		RunE: runWatchCmd,
	}

	cmd.Flags().String("addr", "127.0.0.1:8080", "Service address (host:port)")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws/progress"}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", u.String(), err)
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "watching %s\n", u.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		// A close frame lets the server unregister cleanly.
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		printProgress(out, message)
	}
}

// printProgress renders one progress message, falling back to the raw
// JSON for messages that are not state transitions.
func printProgress(out io.Writer, message []byte) {
	var p scan.Progress
	if err := json.Unmarshal(message, &p); err != nil || p.State == "" {
		fmt.Fprintf(out, "%s\n", message)
		return
	}
	fmt.Fprintf(out, "[%s] %-14s position %d/%d at %.1f deg, %d detections\n",
		p.ScanID, p.State, p.PositionIndex+1, p.PositionCount, p.PanAngle, p.Detections)
}
