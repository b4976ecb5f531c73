// Package config loads the .panscan configuration file and maps it onto
// the package-level configuration structs.
package config

import (
	"time"

	"github.com/teslashibe/go-panscan/pkg/camera"
	"github.com/teslashibe/go-panscan/pkg/scan"
)

// File is the full configuration file. Durations are expressed in
// seconds, matching the servo daemon's conventions.
type File struct {
	Scan     ScanSettings   `yaml:"scan"`
	Dedup    DedupSettings  `yaml:"dedup"`
	Camera   CameraSettings `yaml:"camera"`
	Servo    ServoSettings  `yaml:"servo"`
	Web      WebSettings    `yaml:"web"`
	LogLevel string         `yaml:"log_level"`
}

// ScanSettings configures the sweep geometry and capture timing.
type ScanSettings struct {
	FOVDegrees          float64 `yaml:"fov_degrees"`
	OverlapDegrees      float64 `yaml:"overlap_degrees"`
	PanMin              float64 `yaml:"pan_min"`
	PanMax              float64 `yaml:"pan_max"`
	ScanTilt            float64 `yaml:"scan_tilt"`
	FrameWidth          int     `yaml:"frame_width"`
	FramesPerPosition   int     `yaml:"frames_per_position"`
	FrameDelay          float64 `yaml:"frame_delay"`
	SettlingTime        float64 `yaml:"settling_time"`
	RefreshDelay        float64 `yaml:"refresh_delay"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	CenterPan           float64 `yaml:"center_pan"`
	CenterTilt          float64 `yaml:"center_tilt"`
}

// DedupSettings configures the duplicate-detection heuristics.
type DedupSettings struct {
	WorldAngleClustering bool    `yaml:"world_angle_clustering"`
	WorldAngleTolerance  float64 `yaml:"world_angle_tolerance"`
	YMatching            bool    `yaml:"y_matching"`
	YTolerance           float64 `yaml:"y_tolerance"`
	BoxOverlap           bool    `yaml:"box_overlap"`
	IoUThreshold         float64 `yaml:"iou_threshold"`
	SpatialSimilarity    bool    `yaml:"spatial_similarity"`
	SpatialThreshold     float64 `yaml:"spatial_threshold"`
	NearbyCenters        bool    `yaml:"nearby_centers"`
	NearbyMultiplier     float64 `yaml:"nearby_multiplier"`
	EdgeOverlap          bool    `yaml:"edge_overlap"`
	RightEdgeThreshold   float64 `yaml:"right_edge_threshold"`
	LeftEdgeThreshold    float64 `yaml:"left_edge_threshold"`
	MinFrames            int     `yaml:"min_frames"`
}

// CameraSettings configures frame acquisition.
type CameraSettings struct {
	Device     int     `yaml:"device"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Framerate  int     `yaml:"framerate"`
	Quality    int     `yaml:"quality"`
	Interval   float64 `yaml:"interval"`
	MinScore   float64 `yaml:"min_score"`
	StaleAfter float64 `yaml:"stale_after"`
	MatchIoU   float64 `yaml:"match_iou"`
	ModelPath  string  `yaml:"model_path"`
}

// ServoSettings points at the servo daemon.
type ServoSettings struct {
	Host string `yaml:"host"`
}

// WebSettings configures the HTTP front end.
type WebSettings struct {
	Port string `yaml:"port"`
}

// DefaultFile returns a File populated with the calibrated defaults.
// Loading unmarshals on top of this, so absent keys keep their defaults.
func DefaultFile() *File {
	sc := scan.DefaultConfig()
	dd := scan.DefaultDedupConfig()
	cam := camera.DefaultConfig()

	return &File{
		Scan: ScanSettings{
			FOVDegrees:          sc.FOVDegrees,
			OverlapDegrees:      sc.OverlapDegrees,
			PanMin:              sc.PanMin,
			PanMax:              sc.PanMax,
			ScanTilt:            sc.ScanTilt,
			FrameWidth:          sc.FrameWidth,
			FramesPerPosition:   sc.FramesPerPosition,
			FrameDelay:          sc.FrameDelay.Seconds(),
			SettlingTime:        sc.SettlingTime.Seconds(),
			RefreshDelay:        sc.RefreshDelay.Seconds(),
			ConfidenceThreshold: sc.ConfidenceThreshold,
			CenterPan:           sc.CenterPan,
			CenterTilt:          sc.CenterTilt,
		},
		Dedup: DedupSettings{
			WorldAngleClustering: dd.WorldAngleClustering,
			WorldAngleTolerance:  dd.WorldAngleTolerance,
			YMatching:            dd.YMatching,
			YTolerance:           dd.YTolerance,
			BoxOverlap:           dd.BoxOverlap,
			IoUThreshold:         dd.IoUThreshold,
			SpatialSimilarity:    dd.SpatialSimilarity,
			SpatialThreshold:     dd.SpatialThreshold,
			NearbyCenters:        dd.NearbyCenters,
			NearbyMultiplier:     dd.NearbyMultiplier,
			EdgeOverlap:          dd.EdgeOverlap,
			RightEdgeThreshold:   dd.RightEdgeThreshold,
			LeftEdgeThreshold:    dd.LeftEdgeThreshold,
			MinFrames:            dd.MinFrames,
		},
		Camera: CameraSettings{
			Device:     cam.Device,
			Width:      cam.Width,
			Height:     cam.Height,
			Framerate:  cam.Framerate,
			Quality:    cam.Quality,
			Interval:   cam.Interval.Seconds(),
			MinScore:   cam.MinScore,
			StaleAfter: cam.StaleAfter.Seconds(),
			MatchIoU:   cam.MatchIoU,
			ModelPath:  "models/yolov8n.onnx",
		},
		Servo:    ServoSettings{Host: "127.0.0.1"},
		Web:      WebSettings{Port: "8080"},
		LogLevel: "info",
	}
}

// ScanConfig maps the file onto a scan configuration.
func (f *File) ScanConfig() scan.Config {
	return scan.Config{
		FOVDegrees:          f.Scan.FOVDegrees,
		OverlapDegrees:      f.Scan.OverlapDegrees,
		PanMin:              f.Scan.PanMin,
		PanMax:              f.Scan.PanMax,
		ScanTilt:            f.Scan.ScanTilt,
		FrameWidth:          f.Scan.FrameWidth,
		FramesPerPosition:   f.Scan.FramesPerPosition,
		FrameDelay:          seconds(f.Scan.FrameDelay),
		SettlingTime:        seconds(f.Scan.SettlingTime),
		RefreshDelay:        seconds(f.Scan.RefreshDelay),
		ConfidenceThreshold: f.Scan.ConfidenceThreshold,
		CenterPan:           f.Scan.CenterPan,
		CenterTilt:          f.Scan.CenterTilt,
	}
}

// DedupConfig maps the file onto a deduplication configuration.
func (f *File) DedupConfig() scan.DedupConfig {
	return scan.DedupConfig{
		WorldAngleClustering: f.Dedup.WorldAngleClustering,
		WorldAngleTolerance:  f.Dedup.WorldAngleTolerance,
		YMatching:            f.Dedup.YMatching,
		YTolerance:           f.Dedup.YTolerance,
		BoxOverlap:           f.Dedup.BoxOverlap,
		IoUThreshold:         f.Dedup.IoUThreshold,
		SpatialSimilarity:    f.Dedup.SpatialSimilarity,
		SpatialThreshold:     f.Dedup.SpatialThreshold,
		RefFrameWidth:        scan.DefaultRefFrameWidth,
		RefFrameHeight:       scan.DefaultRefFrameHeight,
		NearbyCenters:        f.Dedup.NearbyCenters,
		NearbyMultiplier:     f.Dedup.NearbyMultiplier,
		EdgeOverlap:          f.Dedup.EdgeOverlap,
		RightEdgeThreshold:   f.Dedup.RightEdgeThreshold,
		LeftEdgeThreshold:    f.Dedup.LeftEdgeThreshold,
		MinFrames:            f.Dedup.MinFrames,
	}
}

// CameraConfig maps the file onto an acquisition configuration.
func (f *File) CameraConfig() camera.Config {
	return camera.Config{
		Device:     f.Camera.Device,
		Width:      f.Camera.Width,
		Height:     f.Camera.Height,
		Framerate:  f.Camera.Framerate,
		Quality:    f.Camera.Quality,
		Interval:   seconds(f.Camera.Interval),
		MinScore:   f.Camera.MinScore,
		StaleAfter: seconds(f.Camera.StaleAfter),
		MatchIoU:   f.Camera.MatchIoU,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
