package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/wisdl/internal/model"
)

// JSONWriter outputs the summary as JSON for other tools.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// jsonReport adds derived totals to the summary.
type jsonReport struct {
	*model.RunSummary

	TotalFiles      int     `json:"total_files"`
	TotalBytes      int64   `json:"total_bytes"`
	DurationSeconds float64 `json:"duration_seconds"`
	Status          string  `json:"status"`
}

// Write outputs the summary in JSON format, followed by a newline.
func (w *JSONWriter) Write(summary *model.RunSummary) (int, error) {
	status := "completed"
	if summary.Failed() {
		status = "failed"
	}

	v := jsonReport{
		RunSummary:      summary,
		TotalFiles:      len(summary.Files),
		TotalBytes:      summary.TotalBytes(),
		DurationSeconds: summary.Duration().Seconds(),
		Status:          status,
	}

	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
