package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/wisdl/internal/crawler"
	"github.com/nao1215/wisdl/internal/database"
	"github.com/nao1215/wisdl/internal/output"
	"github.com/nao1215/wisdl/internal/portal"
	"github.com/nao1215/wisdl/internal/report"
)

// NewDownload returns the standard pipeline: check the output root, log in,
// create the root and crawl, then record history and write the report.
func NewDownload(logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewCheckOutputStep(),
		NewConnectStep(logger),
		NewPrepareOutputStep(),
		NewCrawlStep(logger),
	)
	p.AddFinalStep(NewHistoryStep(logger))
	p.AddFinalStep(NewReportStep())
	return p
}

// CheckOutputStep refuses to start when the output root already exists.
// It runs before any network traffic.
type CheckOutputStep struct{}

// NewCheckOutputStep creates a CheckOutputStep.
func NewCheckOutputStep() *CheckOutputStep {
	return &CheckOutputStep{}
}

// Name returns the step name.
func (s *CheckOutputStep) Name() string {
	return "check_output"
}

// Do executes the step.
func (s *CheckOutputStep) Do(_ context.Context, run *Run) error {
	return output.CheckRoot(run.FS, run.Config.OutputDir)
}

// ConnectStep logs in to the portal. Rejected credentials are requested
// again from the provider with the next attempt number; every other failure
// ends the run.
type ConnectStep struct {
	logger *slog.Logger
}

// NewConnectStep creates a ConnectStep.
func NewConnectStep(logger *slog.Logger) *ConnectStep {
	return &ConnectStep{logger: logger}
}

// Name returns the step name.
func (s *ConnectStep) Name() string {
	return "connect"
}

// Do executes the step. On success run.Session holds the probed session.
func (s *ConnectStep) Do(ctx context.Context, run *Run) error {
	for attempt := 1; ; attempt++ {
		creds, err := run.Provider.Credentials(ctx, attempt)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConnect, err)
		}

		session, err := portal.NewSession(creds, s.sessionOptions(run)...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConnect, err)
		}

		s.logger.Info("checking credentials", "username", creds.Username, "attempt", attempt)
		err = session.Probe(ctx)
		if err == nil {
			run.Session = session
			return nil
		}

		session.Close()
		if !portal.IsAuthError(err) {
			return fmt.Errorf("%w: %w", ErrConnect, err)
		}
		s.logger.Error("authentication has failed, try again", "username", creds.Username)
	}
}

func (s *ConnectStep) sessionOptions(run *Run) []portal.Option {
	cfg := run.Config
	return []portal.Option{
		portal.WithBaseURL(cfg.BaseURL),
		portal.WithTimeout(cfg.Timeout),
		portal.WithChunkSize(cfg.ChunkSize),
		portal.WithMaxPageSize(cfg.MaxPageSize),
		portal.WithUserAgent(cfg.UserAgent),
		portal.WithFS(run.FS),
		portal.WithLogger(s.logger),
	}
}

// PrepareOutputStep creates the output root.
type PrepareOutputStep struct{}

// NewPrepareOutputStep creates a PrepareOutputStep.
func NewPrepareOutputStep() *PrepareOutputStep {
	return &PrepareOutputStep{}
}

// Name returns the step name.
func (s *PrepareOutputStep) Name() string {
	return "prepare_output"
}

// Do executes the step.
func (s *PrepareOutputStep) Do(_ context.Context, run *Run) error {
	return output.PrepareRoot(run.FS, run.Config.OutputDir)
}

// CrawlStep walks the portal and saves every file under the output root.
type CrawlStep struct {
	logger *slog.Logger
}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep(logger *slog.Logger) *CrawlStep {
	return &CrawlStep{logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the step. run.Summary is set even when the crawl fails.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	if run.Session == nil {
		return errors.New("crawl requires a connected session")
	}

	materializer := output.NewMaterializer(run.FS, run.Config.OutputDir, run.Session, output.WithLogger(s.logger))
	c := crawler.New(run.Session, materializer,
		crawler.WithStudyLimit(run.Config.MaxStudies),
		crawler.WithLogger(s.logger),
	)

	summary, err := c.Run(ctx)
	summary.OutputDir = materializer.Root()
	summary.Username = run.Session.Username()
	run.Summary = summary

	if err != nil {
		summary.Error = err.Error()
		return fmt.Errorf("crawl failed: %w", err)
	}
	return nil
}

// HistoryStep records the run in the history database.
// It does nothing when history is disabled or no crawl took place.
type HistoryStep struct {
	logger *slog.Logger
}

// NewHistoryStep creates a HistoryStep.
func NewHistoryStep(logger *slog.Logger) *HistoryStep {
	return &HistoryStep{logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do executes the step.
func (s *HistoryStep) Do(ctx context.Context, run *Run) error {
	if !run.Config.SaveHistory || run.Summary == nil {
		return nil
	}

	db, err := database.Open(run.Config.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	status := database.RunCompleted
	if run.Summary.Failed() {
		status = database.RunFailed
	}

	id, err := db.SaveRun(ctx, run.Summary, status)
	if err != nil {
		return err
	}
	run.RunID = id

	s.logger.Info("run recorded", "id", id, "database", db.Path())
	return nil
}

// ReportStep writes the run report to Config.ReportFile, or to run.Out.
// It does nothing when no report was requested or no crawl took place.
type ReportStep struct{}

// NewReportStep creates a ReportStep.
func NewReportStep() *ReportStep {
	return &ReportStep{}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do executes the step.
func (s *ReportStep) Do(_ context.Context, run *Run) (err error) {
	format := run.Config.EffectiveReportFormat()
	if format == "" || run.Summary == nil {
		return nil
	}

	var w io.Writer = run.Out
	if run.Config.ReportFile != "" {
		f, createErr := run.FS.Create(run.Config.ReportFile)
		if createErr != nil {
			return fmt.Errorf("failed to create report file: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("failed to close report file: %w", closeErr)
			}
		}()
		w = f
	}

	writer, err := report.NewWriter(format, w)
	if err != nil {
		return err
	}
	if _, err := writer.Write(run.Summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
