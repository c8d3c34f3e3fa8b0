package pipeline

import (
	"io"
	"os"

	"github.com/nao1215/wisdl/internal/config"
	"github.com/nao1215/wisdl/internal/credential"
	"github.com/nao1215/wisdl/internal/model"
	"github.com/nao1215/wisdl/internal/portal"
	"github.com/spf13/afero"
)

// Run is the state shared by the steps of one download.
type Run struct {
	// Config is the validated configuration.
	Config *config.Config

	// FS is the filesystem the output tree and report file are written to.
	FS afero.Fs

	// Provider supplies credentials, once per login attempt.
	Provider credential.Provider

	// Out receives the report when Config.ReportFile is empty.
	Out io.Writer

	// Session is set by ConnectStep once the credentials were accepted.
	Session *portal.Session

	// Summary is set by CrawlStep, also when the crawl fails.
	Summary *model.RunSummary

	// RunID is the history database id, set by HistoryStep.
	RunID int64
}

// NewRun creates a Run writing to the OS filesystem and reporting to stdout.
func NewRun(cfg *config.Config, provider credential.Provider) *Run {
	return &Run{
		Config:   cfg,
		FS:       afero.NewOsFs(),
		Provider: provider,
		Out:      os.Stdout,
	}
}

// Close releases the session, if one was opened. Safe to call more than once.
func (r *Run) Close() {
	if r.Session != nil {
		r.Session.Close()
	}
}
