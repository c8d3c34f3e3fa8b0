package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/wisdl/internal/model"
	"github.com/spf13/afero"
)

// Downloader streams a portal file to a path. *portal.Session implements it.
type Downloader interface {
	DownloadFile(ctx context.Context, link, destPath string) (int64, error)
}

// CheckRoot fails with ErrRootExists if root is already present.
// It touches nothing and is run before connecting to the portal.
func CheckRoot(fs afero.Fs, root string) error {
	exists, err := afero.Exists(fs, root)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrRootExists, root)
	}
	return nil
}

// PrepareRoot creates root. The parent directory must already exist.
func PrepareRoot(fs afero.Fs, root string) error {
	if err := fs.Mkdir(root, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrRootExists, root)
		}
		return fmt.Errorf("failed to create %s: %w", root, err)
	}
	return nil
}

// DestinationPath returns <root>/<course>/<task>/<year>/<name> for file.
// Each component is sanitized so portal text cannot leave root.
func DestinationPath(root string, file *model.TaskFile) string {
	return filepath.Join(
		root,
		sanitize(file.CourseAbbreviation()),
		sanitize(file.TaskName()),
		sanitize(file.Year),
		sanitize(file.Name),
	)
}

var separatorReplacer = strings.NewReplacer("/", "_", `\`, "_")

// sanitize turns a portal string into a single path component.
// An empty string stays empty and is dropped by filepath.Join.
func sanitize(component string) string {
	component = separatorReplacer.Replace(component)
	if component == "." || component == ".." {
		return "_"
	}
	return component
}

// Materializer writes task files under a root directory.
type Materializer struct {
	fs         afero.Fs
	root       string
	downloader Downloader
	logger     *slog.Logger
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Materializer) {
		m.logger = logger
	}
}

// NewMaterializer creates a Materializer writing under root on fs.
// downloader must write to the same fs.
func NewMaterializer(fs afero.Fs, root string, downloader Downloader, opts ...Option) *Materializer {
	m := &Materializer{
		fs:         fs,
		root:       root,
		downloader: downloader,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Root returns the output root.
func (m *Materializer) Root() string {
	return m.root
}

// Save creates the file's directory and downloads the file into it.
// An existing file at the destination is overwritten.
func (m *Materializer) Save(ctx context.Context, file *model.TaskFile) (model.SavedFile, error) {
	dest := DestinationPath(m.root, file)

	if err := m.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return model.SavedFile{}, fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}

	n, err := m.downloader.DownloadFile(ctx, file.Link, dest)
	if err != nil {
		return model.SavedFile{}, err
	}

	m.logger.Debug("saved file", "path", dest, "bytes", n)

	return model.SavedFile{
		Course: file.CourseAbbreviation(),
		Task:   file.TaskName(),
		Year:   file.Year,
		Name:   file.Name,
		Link:   file.Link,
		Path:   dest,
		Bytes:  n,
	}, nil
}
