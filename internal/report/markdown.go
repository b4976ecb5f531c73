// Package report renders scan results for humans and downstream tools.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/teslashibe/go-panscan/pkg/scan"
)

// MarkdownWriter outputs scan results in Markdown format, for
// documentation and sharing.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write outputs the full result in Markdown format.
func (w *MarkdownWriter) Write(result *scan.Result) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeObjects(md, result)

	return md.Build()
}

// writeHeader writes the scan information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *scan.Result) {
	md.H1("Room Scan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scan ID", "`" + result.ID + "`"},
			{"Started", result.Started.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.Completed.Sub(result.Started).Round(100 * time.Millisecond).String()},
			{"Positions", strconv.Itoa(len(result.Positions))},
			{"Raw Detections", strconv.Itoa(result.RawDetections)},
			{"Status", statusText(result)},
		},
	})
	md.PlainText("")
}

func statusText(result *scan.Result) string {
	if result.Interrupted {
		return "Interrupted (partial results)"
	}
	return "Complete"
}

// writeSummary writes the per-label object counts.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *scan.Result) {
	md.H2("Objects by Label")
	md.PlainText("")

	summary := result.Summary()
	labels := make([]string, 0, len(summary))
	for label := range summary {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([][]string, 0, len(labels)+1)
	for _, label := range labels {
		rows = append(rows, []string{label, strconv.Itoa(summary[label])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(result.Objects)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Label", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeObjects writes the detail table, one row per unique object.
func (w *MarkdownWriter) writeObjects(md *markdown.Markdown, result *scan.Result) {
	md.H2("Detected Objects")
	md.PlainText("")

	if len(result.Objects) == 0 {
		md.PlainText("No objects detected.")
		return
	}

	rows := make([][]string, 0, len(result.Objects))
	for _, obj := range result.Objects {
		rows = append(rows, []string{
			obj.Label,
			fmt.Sprintf("%.2f", obj.Confidence),
			fmt.Sprintf("%.1f°", obj.WorldAngle),
			strconv.Itoa(obj.PositionIndex),
			fmt.Sprintf("(%d, %d) %dx%d", obj.Box.X, obj.Box.Y, obj.Box.W, obj.Box.H),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Label", "Confidence", "World Angle", "Position", "Box"},
		Rows:   rows,
	})
}
