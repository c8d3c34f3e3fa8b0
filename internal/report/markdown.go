package report

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/wisdl/internal/model"
)

// MarkdownWriter outputs the summary as GitHub-flavored Markdown, with one
// table per course.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeAlert(md, summary)
	w.writePieChart(md, summary)
	w.writeCourses(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("WIS Download Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"User", "`" + summary.Username + "`"},
			{"Output", "`" + summary.OutputDir + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration().Round(1e6).String()},
			{"Studies", studiesText(summary.Studies)},
			{"Files", strconv.Itoa(len(summary.Files))},
			{"Size", humanize.Bytes(uint64(summary.TotalBytes()))}, //nolint:gosec // sizes are never negative
			{"Status", statusText(summary)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary) {
	switch {
	case summary.Failed():
		md.Cautionf("The run stopped early: %s. Files listed below were saved before the failure.", summary.Error)
	case len(summary.Files) == 0:
		md.Note("No submitted files were found.")
	default:
		md.Tip("All discovered files were downloaded.")
	}
	md.PlainText("")
}

// writePieChart shows how files are spread over courses.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.Files) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Files per course"),
		piechart.WithShowData(true),
	)
	for _, course := range summary.Courses {
		if n := course.Files(); n > 0 {
			chart.LabelAndIntValue(course.Abbreviation, uint64(n)) //nolint:gosec // counts are never negative
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeCourses(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Courses")
	md.PlainText("")

	if len(summary.Courses) == 0 {
		md.PlainText("No courses found.")
		md.PlainText("")
		return
	}

	for _, course := range summary.Courses {
		md.H3(course.Abbreviation + " (study " + strconv.Itoa(course.Study) + ")")
		md.PlainText("")

		rows := make([][]string, 0)
		for _, f := range summary.Files {
			if f.Course != course.Abbreviation {
				continue
			}
			rows = append(rows, []string{f.Task, f.Year, f.Name, humanize.Bytes(uint64(f.Bytes))}) //nolint:gosec // sizes are never negative
		}
		for _, task := range course.Tasks {
			if !task.HasFilesPage {
				rows = append(rows, []string{task.Name, "-", "no submission", "-"})
			} else if task.Files == 0 {
				rows = append(rows, []string{task.Name, "-", "no files", "-"})
			}
		}

		if len(rows) == 0 {
			md.PlainText("No tasks.")
			md.PlainText("")
			continue
		}

		md.Table(markdown.TableSet{
			Header: []string{"Task", "Year", "File", "Size"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wisdl](https://github.com/nao1215/wisdl)*")
}
