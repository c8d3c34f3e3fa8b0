package model

import "time"

// SavedFile records one file written to disk during a run.
type SavedFile struct {
	Course string `json:"course"`
	Task   string `json:"task"`
	Year   string `json:"year"`
	Name   string `json:"name"`
	Link   string `json:"link"`
	Path   string `json:"path"`
	Bytes  int64  `json:"bytes"`
}

// TaskSummary counts files found for one task.
// HasFilesPage is false for tasks without a submission stage.
type TaskSummary struct {
	Name         string `json:"name"`
	HasFilesPage bool   `json:"has_files_page"`
	Files        int    `json:"files"`
}

// CourseSummary counts files found for one course.
type CourseSummary struct {
	Study        int           `json:"study"`
	Abbreviation string        `json:"abbreviation"`
	Tasks        []TaskSummary `json:"tasks"`
}

// Files returns the number of files found across all tasks of the course.
func (c *CourseSummary) Files() int {
	total := 0
	for _, t := range c.Tasks {
		total += t.Files
	}
	return total
}

// RunSummary is the observational record of one download run.
// None of it is used for control flow.
type RunSummary struct {
	// OutputDir is the root the files were written under.
	OutputDir string `json:"output_dir"`

	// Username is the portal login used for the run.
	Username string `json:"username"`

	// StartedAt and FinishedAt bound the crawl.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Studies lists the study ids whose pages were fetched, in order.
	Studies []int `json:"studies"`

	// Courses lists every course explored, in order.
	Courses []CourseSummary `json:"courses"`

	// Files lists every file written, in order.
	Files []SavedFile `json:"files"`

	// Error is the message of the failure that ended the crawl early.
	// Empty for a complete run.
	Error string `json:"error,omitempty"`
}

// NewRunSummary creates an empty summary for the given output root.
func NewRunSummary(outputDir string) *RunSummary {
	return &RunSummary{
		OutputDir: outputDir,
		Studies:   make([]int, 0),
		Courses:   make([]CourseSummary, 0),
		Files:     make([]SavedFile, 0),
	}
}

// TotalBytes returns the sum of bytes written.
func (s *RunSummary) TotalBytes() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Bytes
	}
	return total
}

// Failed reports whether the crawl ended early.
func (s *RunSummary) Failed() bool {
	return s.Error != ""
}

// Duration returns how long the run took. Zero if it has not finished.
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
