package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wisdl/internal/model"
)

// createTestSummary creates a summary with sample data for testing.
func createTestSummary() *model.RunSummary {
	started := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	s := model.NewRunSummary("/home/x/wis_projects")
	s.Username = "xlogin00"
	s.StartedAt = started
	s.FinishedAt = started.Add(2 * time.Minute)
	s.Studies = []int{1, 2, 3}
	s.Courses = []model.CourseSummary{
		{
			Study:        1,
			Abbreviation: "IZP",
			Tasks: []model.TaskSummary{
				{Name: "Projekt 1", HasFilesPage: true, Files: 2},
				{Name: "Zkouška", HasFilesPage: false},
			},
		},
		{
			Study:        2,
			Abbreviation: "IOS",
			Tasks: []model.TaskSummary{
				{Name: "Projekt 2", HasFilesPage: true, Files: 0},
			},
		},
	}
	s.Files = []model.SavedFile{
		{Course: "IZP", Task: "Projekt 1", Year: "2023", Name: "main.zip", Path: "/home/x/wis_projects/IZP/Projekt 1/2023/main.zip", Bytes: 2048},
		{Course: "IZP", Task: "Projekt 1", Year: "2023", Name: "readme.txt", Path: "/home/x/wis_projects/IZP/Projekt 1/2023/readme.txt", Bytes: 100},
	}
	return s
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"WIS DOWNLOAD REPORT", "xlogin00", "/home/x/wis_projects", "1, 2, 3", "Files:      2", "Complete"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q:\n%s", want, output)
			}
		}
	})

	t.Run("writes courses and tasks", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[study 1] IZP: 2 file(s)") {
			t.Errorf("expected IZP line, got:\n%s", output)
		}
		if !strings.Contains(output, "Zkouška (no submission)") {
			t.Errorf("expected task without files page, got:\n%s", output)
		}
		if strings.Contains(output, "main.zip") {
			t.Error("expected file list to be hidden by default")
		}
	})

	t.Run("lists files when asked", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithFileList(true)).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "IZP/Projekt 1/2023/main.zip") {
			t.Errorf("expected file path in output:\n%s", buf.String())
		}
	})

	t.Run("shows failure", func(t *testing.T) {
		t.Parallel()

		s := createTestSummary()
		s.Error = "connection reset"

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Failed - connection reset") {
			t.Errorf("expected failure status:\n%s", buf.String())
		}
	})

	t.Run("empty run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(model.NewRunSummary("/out"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}
		if !strings.Contains(buf.String(), "No courses found") {
			t.Errorf("expected empty notice:\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables per course", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# WIS Download Report", "### IZP (study 1)", "### IOS (study 2)", "main.zip", "no submission", "no files", "Size"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q:\n%s", want, output)
			}
		}
	})

	t.Run("includes pie chart when files exist", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "```mermaid") {
			t.Errorf("expected mermaid block:\n%s", buf.String())
		}
	})

	t.Run("caution on failure", func(t *testing.T) {
		t.Parallel()

		s := createTestSummary()
		s.Error = "disk full"

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!CAUTION]") {
			t.Errorf("expected caution alert:\n%s", buf.String())
		}
	})

	t.Run("note when nothing found", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.NewRunSummary("/out")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "[!NOTE]") {
			t.Errorf("expected note alert:\n%s", output)
		}
		if strings.Contains(output, "```mermaid") {
			t.Error("expected no chart for an empty run")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON with totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["username"] != "xlogin00" {
			t.Errorf("expected username, got %v", decoded["username"])
		}
		if decoded["total_files"] != float64(2) || decoded["total_bytes"] != float64(2148) {
			t.Errorf("unexpected totals: %v %v", decoded["total_files"], decoded["total_bytes"])
		}
		if decoded["duration_seconds"] != float64(120) {
			t.Errorf("expected 120 seconds, got %v", decoded["duration_seconds"])
		}
		if decoded["status"] != "completed" {
			t.Errorf("expected completed, got %v", decoded["status"])
		}
	})

	t.Run("compact by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(model.NewRunSummary("/out")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected a single line, got:\n%s", buf.String())
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(model.NewRunSummary("/out")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"output_dir\"") {
			t.Errorf("expected indented output:\n%s", buf.String())
		}
	})

	t.Run("failed status", func(t *testing.T) {
		t.Parallel()

		s := model.NewRunSummary("/out")
		s.Error = "boom"

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"status":"failed"`) || !strings.Contains(buf.String(), `"error":"boom"`) {
			t.Errorf("expected failed status and error:\n%s", buf.String())
		}
	})
}

// TestNewWriter tests format selection.
func TestNewWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  string
		wantErr bool
	}{
		{format: FormatText},
		{format: FormatMarkdown},
		{format: FormatJSON},
		{format: "xml", wantErr: true},
		{format: "", wantErr: true},
	}

	for _, tt := range tests {
		w, err := NewWriter(tt.format, &bytes.Buffer{})
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("format %q: expected ErrUnknownFormat, got %v", tt.format, err)
			}
			continue
		}
		if err != nil || w == nil {
			t.Errorf("format %q: unexpected error %v", tt.format, err)
		}
	}
}
