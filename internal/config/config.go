package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wisdl"

	// DefaultBaseURL is the FIT information system.
	DefaultBaseURL = "https://wis.fit.vutbr.cz"

	// DefaultOutputDirName is the output root created in the working directory.
	DefaultOutputDirName = "wis_projects"

	// DefaultTimeout bounds every page fetch and the wait for response headers.
	// Downloads are not bounded as a whole.
	DefaultTimeout = 60 * time.Second

	// DefaultChunkSize is the buffer size used when streaming downloads.
	DefaultChunkSize = 128 * 1024

	// DefaultMaxStudies is the highest study id visited.
	DefaultMaxStudies = 5

	// DefaultMaxPageSize limits how much of a portal page is read.
	DefaultMaxPageSize = 5 * 1024 * 1024

	// DefaultUserAgent identifies wisdl in the portal's access logs.
	DefaultUserAgent = "wisdl (+https://github.com/nao1215/wisdl)"
)

// Report formats accepted by Config.ReportFormat.
const (
	ReportFormatText     = "text"
	ReportFormatMarkdown = "markdown"
	ReportFormatJSON     = "json"
)

// Config holds all options of a download run.
// It is built once from defaults, the config file and flags, and passed down
// explicitly.
type Config struct {
	// BaseURL is the portal scheme and host.
	BaseURL string

	// OutputDir is the root of the downloaded tree. It must not exist yet;
	// its parent must.
	OutputDir string

	// Timeout bounds each page request.
	Timeout time.Duration

	// ChunkSize is the download buffer size in bytes.
	ChunkSize int

	// MaxStudies is the highest study id visited. The walk stops earlier at
	// the first study without courses.
	MaxStudies int

	// MaxPageSize is the largest page body read, in bytes.
	MaxPageSize int64

	// UserAgent is sent with every request.
	UserAgent string

	// Verbose is the -v count.
	Verbose int

	// EnvFile is an optional dotenv file providing WIS_USERNAME and WIS_PASSWORD.
	EnvFile string

	// SaveHistory records the run in the history database under DBDir.
	SaveHistory bool

	// DBDir is the history database directory.
	// Defaults to the XDG data directory (~/.local/share/wisdl on Linux).
	DBDir string

	// ReportFormat selects the run report written after the crawl.
	// Empty means no report unless ReportFile is set, in which case text is used.
	ReportFormat string

	// ReportFile is the report destination. Empty means stdout.
	ReportFile string

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		OutputDir:   DefaultOutputDir(),
		Timeout:     DefaultTimeout,
		ChunkSize:   DefaultChunkSize,
		MaxStudies:  DefaultMaxStudies,
		MaxPageSize: DefaultMaxPageSize,
		UserAgent:   DefaultUserAgent,
		SaveHistory: true,
		DBDir:       XDGDataDir(),
	}
}

// DefaultOutputDir returns wis_projects under the working directory.
func DefaultOutputDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultOutputDirName
	}
	return filepath.Join(cwd, DefaultOutputDirName)
}

// XDGDataDir returns the XDG data directory for wisdl.
// On Linux: ~/.local/share/wisdl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wisdl.
// On Linux: ~/.config/wisdl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// EffectiveReportFormat returns the report format to write, or "" for none.
func (c *Config) EffectiveReportFormat() string {
	if c.ReportFormat == "" && c.ReportFile != "" {
		return ReportFormatText
	}
	return c.ReportFormat
}

// ApplyFile copies every value set in f onto c.
// Flags are applied afterwards by the caller so they take precedence.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.Output != "" {
		c.OutputDir = f.Output
	}
	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.ChunkSize != 0 {
		c.ChunkSize = f.ChunkSize
	}
	if f.MaxStudies != 0 {
		c.MaxStudies = f.MaxStudies
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.EnvFile != "" {
		c.EnvFile = f.EnvFile
	}
	if f.History != nil {
		c.SaveHistory = *f.History
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}

	if c.MaxStudies < 1 {
		return ErrInvalidMaxStudies
	}

	if c.MaxPageSize <= 0 {
		return ErrInvalidMaxPageSize
	}

	switch c.ReportFormat {
	case "", ReportFormatText, ReportFormatMarkdown, ReportFormatJSON:
	default:
		return ErrInvalidReportFormat
	}

	return nil
}
