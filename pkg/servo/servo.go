// Package servo drives the pan/tilt bracket through the servo daemon's
// HTTP API.
package servo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-panscan/pkg/scan"
)

// Servo angle limits in degrees.
const (
	MinAngle = 0.0
	MaxAngle = 180.0
)

// httpClient is a shared HTTP client with timeout to prevent blocking.
// Used by all HTTPController instances.
var httpClient = &http.Client{
	Timeout: 2 * time.Second,
}

// HTTPController commands servos through the daemon running next to the
// PCA9685 driver board. Angles outside [0, 180] are clamped before being
// sent.
type HTTPController struct {
	BaseURL string
}

var (
	_ scan.ServoController = (*HTTPController)(nil)
	_ scan.SmoothMover     = (*HTTPController)(nil)
)

// NewHTTPController creates a controller for the daemon at the given
// host.
func NewHTTPController(host string) *HTTPController {
	return &HTTPController{
		BaseURL: fmt.Sprintf("http://%s:8040", host),
	}
}

// SetServoAngle moves one channel directly to an absolute angle.
func (c *HTTPController) SetServoAngle(channel int, angle float64) error {
	payload := map[string]interface{}{
		"channel": channel,
		"angle":   clampAngle(angle),
	}
	return c.post("/api/servo/angle", payload)
}

// SmoothMoveToAngle moves one channel to an absolute angle with daemon-side
// interpolation. Speed is in the daemon's native degrees-per-tick unit.
func (c *HTTPController) SmoothMoveToAngle(channel int, angle, speed float64) error {
	payload := map[string]interface{}{
		"channel": channel,
		"angle":   clampAngle(angle),
		"speed":   speed,
	}
	return c.post("/api/servo/smooth_move", payload)
}

// Angles returns the daemon's last commanded angle per channel.
func (c *HTTPController) Angles() (map[int]float64, error) {
	resp, err := httpClient.Get(c.BaseURL + "/api/servo/angles")
	if err != nil {
		return nil, fmt.Errorf("angles request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("angles request returned %s", resp.Status)
	}

	var body struct {
		Angles map[int]float64 `json:"angles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode angles: %w", err)
	}
	return body.Angles, nil
}

// post sends one command to the daemon API.
func (c *HTTPController) post(path string, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal servo payload: %w", err)
	}

	resp, err := httpClient.Post(
		c.BaseURL+path,
		"application/json",
		strings.NewReader(string(data)),
	)
	if err != nil {
		return fmt.Errorf("servo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("servo request returned %s", resp.Status)
	}
	return nil
}

func clampAngle(angle float64) float64 {
	if angle < MinAngle {
		return MinAngle
	}
	if angle > MaxAngle {
		return MaxAngle
	}
	return angle
}
