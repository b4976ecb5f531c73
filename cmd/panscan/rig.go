package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-panscan/internal/config"
	"github.com/teslashibe/go-panscan/internal/log"
	"github.com/teslashibe/go-panscan/pkg/camera"
	"github.com/teslashibe/go-panscan/pkg/detection"
	"github.com/teslashibe/go-panscan/pkg/scan"
	"github.com/teslashibe/go-panscan/pkg/servo"
)

// addHardwareFlags registers the flags shared by commands that touch the
// camera and servos.
func addHardwareFlags(cmd *cobra.Command) {
	cmd.Flags().String("servo-host", "", "Servo daemon host (overrides config)")
	cmd.Flags().Int("device", -1, "Capture device index (overrides config)")
	cmd.Flags().String("model", "", "Path to the YOLO ONNX model (overrides config)")
	addGeometryFlags(cmd)
	cmd.Flags().Int("frames", 0, "Samples per scan position (overrides config)")
	cmd.Flags().Float64("confidence", -1, "Minimum detection confidence (overrides config)")
}

// addGeometryFlags registers the sweep geometry flags.
func addGeometryFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("fov", 0, "Camera horizontal field of view in degrees (overrides config)")
	cmd.Flags().Float64("overlap", 0, "Angular overlap between positions in degrees (overrides config)")
	cmd.Flags().Float64("pan-min", -1, "Sweep lower bound in degrees (overrides config)")
	cmd.Flags().Float64("pan-max", -1, "Sweep upper bound in degrees (overrides config)")
}

// loadSettings reads the configuration file and applies flag overrides.
func loadSettings(cmd *cobra.Command) (*config.File, error) {
	path, _ := cmd.Flags().GetString("config")
	cf, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("servo-host") {
		cf.Servo.Host, _ = flags.GetString("servo-host")
	}
	if flags.Changed("device") {
		cf.Camera.Device, _ = flags.GetInt("device")
	}
	if flags.Changed("model") {
		cf.Camera.ModelPath, _ = flags.GetString("model")
	}
	if flags.Changed("fov") {
		cf.Scan.FOVDegrees, _ = flags.GetFloat64("fov")
	}
	if flags.Changed("overlap") {
		cf.Scan.OverlapDegrees, _ = flags.GetFloat64("overlap")
	}
	if flags.Changed("pan-min") {
		cf.Scan.PanMin, _ = flags.GetFloat64("pan-min")
	}
	if flags.Changed("pan-max") {
		cf.Scan.PanMax, _ = flags.GetFloat64("pan-max")
	}
	if flags.Changed("frames") {
		cf.Scan.FramesPerPosition, _ = flags.GetInt("frames")
	}
	if flags.Changed("confidence") {
		cf.Scan.ConfidenceThreshold, _ = flags.GetFloat64("confidence")
	}

	if verbose, _ := flags.GetBool("verbose"); verbose {
		cf.LogLevel = "debug"
	}
	return cf, nil
}

// rig bundles the assembled hardware stack.
type rig struct {
	scanner *scan.Scanner
	tracker *camera.Tracker
}

// buildRig opens the capture device, loads the detector, and wires the
// scanner to the servo daemon.
func buildRig(cf *config.File) (*rig, error) {
	log.Init(cf.LogLevel)

	yoloCfg := detection.DefaultYOLOConfig()
	yoloCfg.ModelPath = cf.Camera.ModelPath
	detector, err := detection.NewYOLO(yoloCfg)
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}

	camCfg := cf.CameraConfig()
	source, err := camera.OpenVideoSource(camCfg)
	if err != nil {
		detector.Close()
		return nil, fmt.Errorf("open camera: %w", err)
	}

	tracker, err := camera.NewTracker(source, detector, camCfg)
	if err != nil {
		source.Close()
		detector.Close()
		return nil, err
	}

	controller := servo.NewHTTPController(cf.Servo.Host)
	scanner, err := scan.New(tracker, controller, cf.ScanConfig(), cf.DedupConfig())
	if err != nil {
		return nil, err
	}

	return &rig{scanner: scanner, tracker: tracker}, nil
}
