package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"togglepace/config"
	"togglepace/internal/prompt"
	"togglepace/storage"
)

var (
	historyDBPath    string
	historyLimit     int
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sync runs, newest first.",
	Long: `Every sync run is recorded in a local SQLite journal (journal.path, default
$HOME/.togglepace/journal.db) with its window, counts and per-worklog outcomes.`,
	Example: `
  # Last 20 runs
  togglepace history

  # Details of one run (id or unique prefix)
  togglepace history show 3f2a

  # Forget runs older than 90 days
  togglepace history prune --older-than 2160h
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openJournal()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No sync runs recorded")
			return nil
		}
		for _, run := range runs {
			printRunLine(out, run)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one sync run with its delete and publish outcomes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openJournal()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.GetRun(args[0])
		if err != nil {
			return err
		}
		items, err := store.ListItems(run.ID)
		if err != nil {
			return err
		}
		printRunDetails(cmd.OutOrStdout(), run, items)
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a duration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyOlderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		store, err := openJournal()
		if err != nil {
			return err
		}
		defer store.Close()

		deleted, err := store.DeleteRunsBefore(time.Now().Add(-historyOlderThan))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d sync runs\n", deleted)
		return nil
	},
}

func openJournal() (*storage.SQLiteStore, error) {
	path := strings.TrimSpace(historyDBPath)
	if path == "" {
		path = strings.TrimSpace(viper.GetString(config.KeyJournalPath))
	}
	if path == "" {
		defaultPath, err := storage.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return storage.OpenSQLite(path)
}

func printRunLine(out io.Writer, run storage.Run) {
	fmt.Fprintf(
		out,
		"%s  %s  %s..%s  %-9s %-6s deleted=%d/%d published=%d/%d legacy=%d\n",
		shortID(run.ID),
		run.StartedAt.Local().Format("2006-01-02 15:04"),
		run.WindowStart,
		run.WindowEnd,
		statusLabel(run.Status),
		run.Source,
		run.Deleted,
		run.Deleted+run.DeleteFailed,
		run.Published,
		run.Published+run.PublishFailed,
		run.Legacy,
	)
}

func printRunDetails(out io.Writer, run storage.Run, items []storage.Item) {
	fmt.Fprintln(out, prompt.Heading("Run "+run.ID))
	fmt.Fprintf(out, "Status:   %s\n", statusLabel(run.Status))
	fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Window:   %s..%s\n", run.WindowStart, run.WindowEnd)
	fmt.Fprintf(out, "Source:   %s (%d entries, %d running timers skipped)\n", run.Source, run.SourceCount, run.Skipped)
	fmt.Fprintf(out, "Dry run:  %t\n", run.DryRun)
	if run.Error != "" {
		fmt.Fprintf(out, "Error:    %s\n", prompt.Failure(run.Error))
	}

	for _, item := range items {
		mark := prompt.Success("ok")
		if !item.OK {
			mark = prompt.Failure("failed: " + item.Error)
		}
		ref := item.Ref
		if ref == "" {
			ref = "-"
		}
		fmt.Fprintf(out, "  %3d %-8s %-38s %-40q %s\n", item.Seq, item.Action, ref, item.Comment, mark)
	}
}

func statusLabel(status string) string {
	switch status {
	case storage.StatusSucceeded:
		return prompt.Success(status)
	case storage.StatusFailed, storage.StatusPartial, storage.StatusAborted:
		return prompt.Failure(status)
	default:
		return prompt.Muted(status)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyPruneCmd)

	historyCmd.PersistentFlags().StringVar(&historyDBPath, "db", "", "Journal database path (default journal.path or $HOME/.togglepace/journal.db)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list (0 lists all)")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 90*24*time.Hour, "Delete runs started before now minus this duration")
}
