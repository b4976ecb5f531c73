package servo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestController points an HTTPController at a test server.
func newTestController(handler http.Handler) (*HTTPController, *httptest.Server) {
	server := httptest.NewServer(handler)
	return &HTTPController{BaseURL: server.URL}, server
}

func TestSetServoAngle(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	ctrl, server := newTestController(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer server.Close()

	if err := ctrl.SetServoAngle(0, 45); err != nil {
		t.Fatalf("SetServoAngle: %v", err)
	}

	if gotPath != "/api/servo/angle" {
		t.Errorf("path %q, want /api/servo/angle", gotPath)
	}
	if gotBody["channel"].(float64) != 0 {
		t.Errorf("channel = %v, want 0", gotBody["channel"])
	}
	if gotBody["angle"].(float64) != 45 {
		t.Errorf("angle = %v, want 45", gotBody["angle"])
	}
}

func TestSetServoAngle_Clamps(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  float64
	}{
		{name: "below minimum", angle: -10, want: 0},
		{name: "above maximum", angle: 200, want: 180},
		{name: "in range", angle: 90, want: 90},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotBody map[string]interface{}
			ctrl, server := newTestController(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewDecoder(r.Body).Decode(&gotBody)
			}))
			defer server.Close()

			if err := ctrl.SetServoAngle(0, tc.angle); err != nil {
				t.Fatalf("SetServoAngle: %v", err)
			}
			if got := gotBody["angle"].(float64); got != tc.want {
				t.Errorf("angle = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSmoothMoveToAngle(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	ctrl, server := newTestController(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer server.Close()

	if err := ctrl.SmoothMoveToAngle(1, 120, 1.0); err != nil {
		t.Fatalf("SmoothMoveToAngle: %v", err)
	}

	if gotPath != "/api/servo/smooth_move" {
		t.Errorf("path %q, want /api/servo/smooth_move", gotPath)
	}
	if gotBody["speed"].(float64) != 1.0 {
		t.Errorf("speed = %v, want 1.0", gotBody["speed"])
	}
}

func TestPost_ErrorStatus(t *testing.T) {
	ctrl, server := newTestController(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "channel out of range", http.StatusBadRequest)
	}))
	defer server.Close()

	err := ctrl.SetServoAngle(99, 90)
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error does not carry the status: %v", err)
	}
}

func TestAngles(t *testing.T) {
	ctrl, server := newTestController(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/servo/angles" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"angles": map[string]float64{"0": 90, "1": 45},
		})
	}))
	defer server.Close()

	angles, err := ctrl.Angles()
	if err != nil {
		t.Fatalf("Angles: %v", err)
	}
	if angles[0] != 90 || angles[1] != 45 {
		t.Errorf("angles = %v, want {0:90 1:45}", angles)
	}
}
