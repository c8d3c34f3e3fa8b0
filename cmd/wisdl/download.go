package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/nao1215/wisdl/internal/config"
	"github.com/nao1215/wisdl/internal/credential"
	wislog "github.com/nao1215/wisdl/internal/log"
	"github.com/nao1215/wisdl/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download all submitted project files",
		Long: `Download walks your studies, courses and tasks in WIS and saves every
submitted file under the output directory.

The walk visits study 1, 2, ... up to --max-studies and stops at the first
study without courses. Tasks without a submission page are skipped.

Exit codes:
  0  all files downloaded
  1  the output directory exists, or the run failed while downloading
  2  the portal could not be reached or no credentials were given

Examples:
  # Download into ./wis_projects
  wisdl download

  # Download into a custom directory and print a Markdown report
  wisdl download -o ~/fit --report markdown

  # Use credentials from a dotenv file
  wisdl download --env-file ~/.wis.env

Configuration file (.wisdl) example:
  output: /home/user/fit
  timeout: 90s
  max_studies: 6
  history: true`,
		Args: cobra.NoArgs,
		RunE: runDownloadCmd,
	}

	addDownloadFlags(cmd)

	return cmd
}

// addDownloadFlags registers the download flags on cmd. The root command
// shares them so that a bare "wisdl" downloads.
func addDownloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "",
		"Output directory, must not exist (default: ./"+config.DefaultOutputDirName+")")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page request")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Portal scheme and host")
	cmd.Flags().Int("max-studies", config.DefaultMaxStudies,
		"Highest study number to visit")
	cmd.Flags().String("env-file", "",
		"Dotenv file providing WIS_USERNAME and WIS_PASSWORD")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("report", "",
		"Write a run report: text, markdown or json")
	cmd.Flags().String("report-file", "",
		"Write the report to this file instead of stdout (implies --report text)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wisdl in current, XDG config or home directory)")
}

// runDownloadCmd executes the download.
func runDownloadCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := wislog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runDownload(ctx, cmd, cfg, logger)
}

// runDownload runs the download pipeline for cfg.
func runDownload(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	provider := credential.Chain(
		credential.NewEnvProvider(
			credential.WithEnvFile(cfg.EnvFile),
			credential.WithEnvLogger(logger),
		),
		credential.NewPromptProvider(
			credential.WithIO(cmd.InOrStdin(), cmd.ErrOrStderr()),
			credential.WithAccessible(!stdinIsTerminal(cmd)),
			credential.WithPromptLogger(logger),
		),
	)

	logger.Info("starting download",
		"output", cfg.OutputDir,
		"baseURL", cfg.BaseURL,
		"maxStudies", cfg.MaxStudies,
		"saveHistory", cfg.SaveHistory,
	)

	run := pipeline.NewRun(cfg, provider)
	run.Out = cmd.OutOrStdout()

	if err := pipeline.NewDownload(logger).Execute(ctx, run); err != nil {
		return err
	}

	if cfg.EffectiveReportFormat() == "" && run.Summary != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Downloaded %d file(s), %s, to %s\n",
			len(run.Summary.Files),
			humanize.Bytes(uint64(run.Summary.TotalBytes())), //nolint:gosec // sizes are never negative
			run.Summary.OutputDir,
		)
	}
	return nil
}

// buildConfig creates a Config from defaults, the config file and the flags,
// in increasing order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("output") {
		if cfg.OutputDir, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-studies") {
		if cfg.MaxStudies, err = flags.GetInt("max-studies"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("env-file") {
		if cfg.EnvFile, err = flags.GetString("env-file"); err != nil {
			return nil, err
		}
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	if cfg.ReportFormat, err = flags.GetString("report"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerbosity(cmd)

	return cfg, nil
}

// stdinIsTerminal reports whether the command reads from a terminal. The
// interactive form needs one; otherwise plain line prompts are used.
func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
