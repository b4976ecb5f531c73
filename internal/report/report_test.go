package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-panscan/pkg/scan"
)

func testResult() *scan.Result {
	started := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return &scan.Result{
		ID:        "f6f9a1f2-0000-4000-8000-000000000000",
		Positions: []float64{0, 56.3, 112.6, 168.9, 180},
		Objects: []scan.Detection{
			{
				Label:         "chair",
				Confidence:    0.91,
				Box:           scan.Box{X: 100, Y: 200, W: 80, H: 150},
				PanAngle:      56.3,
				WorldAngle:    52.7,
				PositionIndex: 1,
			},
			{
				Label:         "tv",
				Confidence:    0.84,
				Box:           scan.Box{X: 600, Y: 80, W: 200, H: 120},
				PanAngle:      112.6,
				WorldAngle:    115.1,
				PositionIndex: 2,
			},
			{
				Label:         "chair",
				Confidence:    0.72,
				Box:           scan.Box{X: 900, Y: 250, W: 70, H: 140},
				PanAngle:      168.9,
				WorldAngle:    170.2,
				PositionIndex: 3,
			},
		},
		RawDetections: 47,
		Started:       started,
		Completed:     started.Add(42 * time.Second),
	}
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(&buf).Write(testResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 3 objects

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"1", "chair", "0.9100", "56.30", "52.70", "100", "200", "180", "350"}, records[1])
	assert.Equal(t, "tv", records[2][1])
	assert.Equal(t, "3", records[3][0])
}

func TestCSVWriter_EmptyResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	result := testResult()
	result.Objects = nil
	require.NoError(t, NewCSVWriter(&buf).Write(result))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1) // header only
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewMarkdownWriter(&buf).Write(testResult()))

	out := buf.String()
	assert.Contains(t, out, "# Room Scan Report")
	assert.Contains(t, out, "## Objects by Label")
	assert.Contains(t, out, "## Detected Objects")
	assert.Contains(t, out, "f6f9a1f2-0000-4000-8000-000000000000")
	assert.Contains(t, out, "Complete")
	assert.Contains(t, out, "| chair")
	assert.Contains(t, out, "| tv")

	// Three unique objects in the summary total.
	assert.Contains(t, out, "**Total**")
	assert.Contains(t, out, "**3**")
}

func TestMarkdownWriter_Interrupted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	result := testResult()
	result.Interrupted = true
	require.NoError(t, NewMarkdownWriter(&buf).Write(result))

	assert.Contains(t, buf.String(), "Interrupted (partial results)")
}

func TestMarkdownWriter_NoObjects(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	result := testResult()
	result.Objects = nil
	require.NoError(t, NewMarkdownWriter(&buf).Write(result))

	assert.Contains(t, buf.String(), "No objects detected.")
}
