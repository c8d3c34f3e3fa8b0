package main

import (
	"fmt"
	"os"

	"github.com/nao1215/wisdl/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wisdl.
// Running it without a subcommand performs a download.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wisdl",
		Short: "Download your submitted projects from the FIT information system",
		Long: `wisdl logs in to the FIT information system (WIS) with your login and
password and downloads every file you submitted to a course task.

Files are stored as <output>/<course>/<task>/<year>/<file>. The output
directory must not exist yet.

Credentials are read from WIS_USERNAME and WIS_PASSWORD (optionally loaded
from a .env file). Missing or rejected credentials are asked for interactively.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runDownloadCmd,
	}

	cmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	addDownloadFlags(cmd)

	cmd.AddCommand(NewDownloadCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with the run's exit code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(pipeline.ExitCode(err))
	}
}

// getVerbosity retrieves the -v count from the command or its parent.
func getVerbosity(cmd *cobra.Command) int {
	verbosity, err := cmd.Flags().GetCount("verbose")
	if err != nil {
		verbosity, err = cmd.Root().PersistentFlags().GetCount("verbose")
		if err != nil {
			return 0
		}
	}
	return verbosity
}
