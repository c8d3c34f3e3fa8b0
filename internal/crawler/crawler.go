package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/nao1215/wisdl/internal/extract"
	"github.com/nao1215/wisdl/internal/model"
)

// DefaultStudyLimit is the highest study id visited.
const DefaultStudyLimit = 5

// Portal fetches portal pages. *portal.Session implements it.
type Portal interface {
	// FetchStudy returns the course list page of one study.
	FetchStudy(ctx context.Context, studyID int) (string, error)

	// FetchPage returns the decoded page behind a raw portal link.
	FetchPage(ctx context.Context, link string, params url.Values) (string, error)
}

// Saver writes one discovered file. *output.Materializer implements it.
type Saver interface {
	Save(ctx context.Context, file *model.TaskFile) (model.SavedFile, error)
}

// studyOutcome is the result of exploring one study.
type studyOutcome int

const (
	studyContinue studyOutcome = iota
	studyStop
)

// taskOutcome is the result of looking for a task's files page.
type taskOutcome int

const (
	taskSkip taskOutcome = iota
	taskProceed
)

// Crawler walks studies, courses and tasks and saves every file it finds.
type Crawler struct {
	portal Portal
	saver  Saver

	// studyLimit is the highest study id visited. Ids start at 1.
	studyLimit int

	logger *slog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithStudyLimit sets the highest study id visited.
// Values below 1 are ignored.
func WithStudyLimit(limit int) Option {
	return func(c *Crawler) {
		if limit > 0 {
			c.studyLimit = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler reading from portal and writing through saver.
func New(portal Portal, saver Saver, opts ...Option) *Crawler {
	c := &Crawler{
		portal:     portal,
		saver:      saver,
		studyLimit: DefaultStudyLimit,
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run walks the portal. The returned summary is never nil; on error it holds
// everything saved before the failure. OutputDir and Username are left for
// the caller to fill in.
func (c *Crawler) Run(ctx context.Context) (*model.RunSummary, error) {
	summary := model.NewRunSummary("")
	summary.StartedAt = c.now()
	defer func() {
		summary.FinishedAt = c.now()
	}()

	for studyID := 1; studyID <= c.studyLimit; studyID++ {
		outcome, err := c.exploreStudy(ctx, studyID, summary)
		if err != nil {
			return summary, err
		}
		if outcome == studyStop {
			break
		}
	}

	return summary, nil
}

func (c *Crawler) exploreStudy(ctx context.Context, studyID int, summary *model.RunSummary) (studyOutcome, error) {
	c.logger.Info("exploring courses in study", "study", studyID)

	page, err := c.portal.FetchStudy(ctx, studyID)
	if err != nil {
		return studyStop, fmt.Errorf("failed to fetch study %d: %w", studyID, err)
	}
	summary.Studies = append(summary.Studies, studyID)

	refs, err := extract.StudyCourses(page)
	if err != nil {
		return studyStop, fmt.Errorf("study %d: %w", studyID, err)
	}
	if len(refs) == 0 {
		c.logger.Info("study does not contain any courses, completing the run", "study", studyID)
		return studyStop, nil
	}

	for _, ref := range refs {
		course := model.NewCourse(ref.Abbreviation, ref.Link)
		if err := c.exploreCourse(ctx, studyID, course, summary); err != nil {
			return studyStop, err
		}
	}

	return studyContinue, nil
}

func (c *Crawler) exploreCourse(ctx context.Context, studyID int, course *model.Course, summary *model.RunSummary) error {
	c.logger.Info("exploring course", "course", course.Abbreviation)

	// The course entry is appended before the walk so a failure still
	// shows the course in the partial summary.
	summary.Courses = append(summary.Courses, model.CourseSummary{
		Study:        studyID,
		Abbreviation: course.Abbreviation,
		Tasks:        make([]model.TaskSummary, 0),
	})
	courseSummary := &summary.Courses[len(summary.Courses)-1]

	page, err := c.portal.FetchPage(ctx, course.Link, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch course %s: %w", course.Abbreviation, err)
	}

	refs, err := extract.CourseTasks(page)
	if err != nil {
		return fmt.Errorf("course %s: %w", course.Abbreviation, err)
	}

	for _, ref := range refs {
		task := model.NewCourseTask(ref.Name, ref.Link, course)
		courseSummary.Tasks = append(courseSummary.Tasks, model.TaskSummary{Name: task.Name})
		taskSummary := &courseSummary.Tasks[len(courseSummary.Tasks)-1]

		if err := c.exploreTask(ctx, task, taskSummary, summary); err != nil {
			return err
		}
	}

	if files := courseSummary.Files(); files == 0 {
		c.logger.Info("found no project files", "course", course.Abbreviation)
	} else {
		c.logger.Debug("found and downloaded files", "course", course.Abbreviation, "files", files)
	}
	return nil
}

func (c *Crawler) exploreTask(ctx context.Context, task *model.CourseTask, taskSummary *model.TaskSummary, summary *model.RunSummary) error {
	filesLink, outcome, err := c.findFilesPage(ctx, task)
	if err != nil {
		return err
	}
	if outcome == taskSkip {
		c.logger.Debug("course task does not contain any downloadable files",
			"course", task.Course.Abbreviation, "task", task.Name)
		return nil
	}
	taskSummary.HasFilesPage = true

	page, err := c.portal.FetchPage(ctx, filesLink, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch files of %s/%s: %w", task.Course.Abbreviation, task.Name, err)
	}

	refs, err := extract.TaskFiles(page)
	if err != nil {
		return fmt.Errorf("files of %s/%s: %w", task.Course.Abbreviation, task.Name, err)
	}

	for _, ref := range refs {
		file := model.NewTaskFile(ref.Name, ref.Year, ref.Link, task)
		c.logger.Debug("found file, downloading", "file", file.Name)

		saved, err := c.saver.Save(ctx, file)
		if err != nil {
			return fmt.Errorf("failed to save %s/%s/%s: %w", task.Course.Abbreviation, task.Name, file.Name, err)
		}
		summary.Files = append(summary.Files, saved)
		taskSummary.Files++
	}

	if taskSummary.Files == 0 {
		c.logger.Info("found no project files, none submitted maybe",
			"course", task.Course.Abbreviation, "task", task.Name)
	}
	return nil
}

// findFilesPage fetches the task page and looks for its files page link.
func (c *Crawler) findFilesPage(ctx context.Context, task *model.CourseTask) (string, taskOutcome, error) {
	page, err := c.portal.FetchPage(ctx, task.Link, nil)
	if err != nil {
		return "", taskSkip, fmt.Errorf("failed to fetch task %s/%s: %w", task.Course.Abbreviation, task.Name, err)
	}

	link, ok, err := extract.TaskFilesLink(page)
	if err != nil {
		return "", taskSkip, fmt.Errorf("task %s/%s: %w", task.Course.Abbreviation, task.Name, err)
	}
	if !ok {
		return "", taskSkip, nil
	}
	return link, taskProceed, nil
}
