package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/wisdl/internal/config"
	"github.com/nao1215/wisdl/internal/database"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past download runs",
		Long: `History lists the runs recorded in the history database, newest first.

The database lives in the XDG data directory (~/.local/share/wisdl on Linux).
It is only a record; it is never used to skip downloads.

Examples:
  # List the last 20 runs
  wisdl history

  # List every file saved by run 3
  wisdl history --run 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("run", 0, "Show the files saved by this run")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to list")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "History database directory")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	runID, err := cmd.Flags().GetInt64("run")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'wisdl download' to download your projects.")
		return nil //nolint:nilerr // a missing database means an empty history
	}
	defer db.Close()

	if runID != 0 {
		return listRunFiles(cmd.Context(), cmd.OutOrStdout(), db, runID)
	}
	return listRuns(cmd.Context(), cmd.OutOrStdout(), db, limit)
}

// listRuns prints the most recent runs.
func listRuns(ctx context.Context, w io.Writer, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintf(w, "Download runs (%d):\n\n", len(runs))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tDate\tUser\tStatus\tFiles\tSize\tOutput")
	for _, r := range runs {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			humanize.Time(r.StartedAt),
			r.Username,
			r.Status,
			r.Files,
			humanize.Bytes(uint64(r.Bytes)), //nolint:gosec // sizes are never negative
			r.OutputDir,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nUse 'wisdl history --run <id>' to list the files of a run.")
	return nil
}

// listRunFiles prints the files saved by one run.
func listRunFiles(ctx context.Context, w io.Writer, db *database.HistoryDB, runID int64) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", runID, err)
	}

	downloads, err := db.GetRunDownloads(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get files of run %d: %w", runID, err)
	}

	fmt.Fprintf(w, "Run %d by %s at %s (%s, %s)\n",
		run.ID,
		run.Username,
		run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		run.Status,
		run.Duration().Round(1e6),
	)
	fmt.Fprintf(w, "Output: %s\n\n", run.OutputDir)

	if len(downloads) == 0 {
		fmt.Fprintln(w, "No files were saved.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  Course\tTask\tYear\tFile\tSize")
	fmt.Fprintln(tw, "  "+strings.Repeat("-", 6)+"\t"+strings.Repeat("-", 4)+"\t"+strings.Repeat("-", 4)+"\t"+strings.Repeat("-", 4)+"\t"+strings.Repeat("-", 4))
	for _, d := range downloads {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			d.Course, d.Task, d.Year, d.Name,
			humanize.Bytes(uint64(d.Bytes)), //nolint:gosec // sizes are never negative
		)
	}
	return tw.Flush()
}
