package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/teslashibe/go-panscan/pkg/scan"
)

// csvHeader is the column layout for CSV export.
var csvHeader = []string{
	"position", "label", "confidence", "pan_angle", "world_angle",
	"left", "top", "right", "bottom",
}

// CSVWriter outputs scan results as CSV, one row per unique object, for
// spreadsheet and downstream analysis.
type CSVWriter struct {
	output io.Writer
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{output: output}
}

// Write outputs the result's object list.
func (w *CSVWriter) Write(result *scan.Result) error {
	cw := csv.NewWriter(w.output)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, obj := range result.Objects {
		record := []string{
			strconv.Itoa(obj.PositionIndex),
			obj.Label,
			strconv.FormatFloat(obj.Confidence, 'f', 4, 64),
			strconv.FormatFloat(obj.PanAngle, 'f', 2, 64),
			strconv.FormatFloat(obj.WorldAngle, 'f', 2, 64),
			strconv.Itoa(obj.Box.X),
			strconv.Itoa(obj.Box.Y),
			strconv.Itoa(obj.Box.Right()),
			strconv.Itoa(obj.Box.Bottom()),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
