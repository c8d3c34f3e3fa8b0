package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/wisdl/internal/model"
)

// Supported formats for NewWriter.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer writes a run summary.
type Writer interface {
	// Write outputs the summary and returns the number of bytes written.
	Write(summary *model.RunSummary) (int, error)
}

// NewWriter returns the Writer for format. JSON output is indented.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatText:
		return NewSimpleWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText describes how the run ended.
func statusText(summary *model.RunSummary) string {
	if summary.Failed() {
		return "Failed - " + summary.Error
	}
	return "Complete"
}

// studiesText joins the visited study ids, e.g. "1, 2, 3".
func studiesText(studies []int) string {
	if len(studies) == 0 {
		return "-"
	}
	s := ""
	for i, id := range studies {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(id)
	}
	return s
}
