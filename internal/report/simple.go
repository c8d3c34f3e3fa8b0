package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/wisdl/internal/model"
)

// SimpleWriter outputs a human-readable text summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// listFiles prints every saved file, not only the per-course totals.
	listFiles bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithFileList lists every saved file in the report.
func WithFileList(list bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.listFiles = list
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCourses(&sb, summary)
	if w.listFiles {
		w.writeFiles(&sb, summary)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         WIS DOWNLOAD REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "User:       %s\n", summary.Username)
	fmt.Fprintf(sb, "Output:     %s\n", summary.OutputDir)
	fmt.Fprintf(sb, "Started:    %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:   %s\n", summary.Duration().Round(1e6))
	fmt.Fprintf(sb, "Studies:    %s\n", studiesText(summary.Studies))
	fmt.Fprintf(sb, "Files:      %d (%s)\n", len(summary.Files), humanize.Bytes(uint64(summary.TotalBytes()))) //nolint:gosec // sizes are never negative
	fmt.Fprintf(sb, "Status:     %s\n", statusText(summary))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCourses(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("COURSES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.Courses) == 0 {
		sb.WriteString("  No courses found\n\n")
		return
	}

	for _, course := range summary.Courses {
		fmt.Fprintf(sb, "[study %d] %s: %d file(s)\n", course.Study, course.Abbreviation, course.Files())
		for _, task := range course.Tasks {
			if !task.HasFilesPage {
				fmt.Fprintf(sb, "  - %s (no submission)\n", task.Name)
				continue
			}
			fmt.Fprintf(sb, "  * %s: %d file(s)\n", task.Name, task.Files)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFiles(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FILES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, f := range summary.Files {
		fmt.Fprintf(sb, "  %s (%s)\n", f.Path, humanize.Bytes(uint64(f.Bytes))) //nolint:gosec // sizes are never negative
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by wisdl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
