package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// VideoSource reads JPEG frames from a V4L2 capture device through
// OpenCV.
type VideoSource struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	frame  gocv.Mat
	params []int
}

var _ FrameSource = (*VideoSource)(nil)

// OpenVideoSource opens the capture device described by the config.
func OpenVideoSource(cfg Config) (*VideoSource, error) {
	cap, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open capture device %d: %w", cfg.Device, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &VideoSource{
		cap:    cap,
		frame:  gocv.NewMat(),
		params: []int{gocv.IMWriteJpegQuality, cfg.Quality},
	}, nil
}

// Read grabs the next frame and encodes it as JPEG.
func (v *VideoSource) Read() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if ok := v.cap.Read(&v.frame); !ok {
		return nil, fmt.Errorf("capture device closed")
	}
	if v.frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, v.frame, v.params)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())
	return jpeg, nil
}

// Close releases the capture device.
func (v *VideoSource) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame.Close()
	return v.cap.Close()
}
