package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"togglepace/config"
	"togglepace/importer"
	"togglepace/internal/classify"
	"togglepace/internal/logger"
	"togglepace/internal/prompt"
	"togglepace/internal/secrets"
	"togglepace/output"
	"togglepace/sevenpace"
	"togglepace/storage"
	"togglepace/syncer"
	"togglepace/toggl"
	"togglepace/worklog"
)

const userAgent = "togglepace/1.0"

var (
	syncLastWeek   bool
	syncDryRun     bool
	syncYes        bool
	syncPrompt     string
	syncInputs     []string
	syncFormat     string
	syncMapper     string
	syncExport     string
	syncExportMode string
	syncTimeout    time.Duration
	syncNoJournal  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace one week of 7pace worklogs with the week's Toggl entries",
	Long: `Fetch the Toggl entries of the configured project for the current week (Monday..Sunday),
delete every 7pace worklog of that week and publish one worklog per finished entry.

Steps run strictly in order and each destructive step asks for confirmation:
- fetch Toggl entries, print them as JSON
- list existing 7pace worklogs of the week, confirm, delete them
- resolve the 7pace user and activity types
- classify each entry, extract its work item id, confirm, publish
- print entries above sync.legacy_threshold as "TFS entries" (never published)

Running timers (negative duration) are ignored. Any refused confirmation aborts the run;
any failed delete or publish makes the command exit non-zero.

Every run is recorded in the local journal (see "togglepace history") unless journal.enabled
is false or --no-journal is set.`,
	Example: `
  # Sync the current week
  togglepace sync

  # Sync the previous week (same as LAST_WEEK=true)
  togglepace sync --last-week

  # Preview: fetch and build everything, no deletes, no publishes, no prompts
  togglepace sync --dry-run

  # Confirm with an interactive form, or skip prompts entirely
  togglepace sync --prompt form
  togglepace sync --yes

  # Use a Toggl detailed report export instead of the API
  togglepace sync --input ./Toggl_time_entries.csv --mapper toggl

  # Also write the built worklogs (or a daily summary) to a file
  togglepace sync --dry-run --export ./week.xlsx --export-mode daily
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		priorWeek := cfg.Sync.LastWeek
		if cmd.Flags().Changed("last-week") {
			priorWeek = syncLastWeek
		}
		timeout := cfg.Sync.Timeout
		if cmd.Flags().Changed("timeout") {
			timeout = syncTimeout
		}
		exportMode, err := normalizeExportMode(syncExportMode)
		if err != nil {
			return err
		}

		fromFile := len(syncInputs) > 0
		tokens, err := secrets.Load()
		if err != nil {
			return err
		}
		if err := tokens.Require(!fromFile); err != nil {
			return err
		}

		source, sourceName, err := buildSource(cfg, tokens, fromFile)
		if err != nil {
			return err
		}

		destination, err := sevenpace.NewClient(sevenpace.ClientConfig{
			BaseURL:    cfg.SevenPace.URL,
			APIVersion: cfg.SevenPace.APIVersion,
			Token:      tokens.SevenPace,
			UserAgent:  userAgent,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		confirmer, err := buildConfirmer(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}

		service := &syncer.Service{
			Source:      source,
			Destination: destination,
			Classifier:  classify.NewClassifier(cfg.Activities),
			Confirmer:   confirmer,
			Out:         out,
			Timeout:     timeout,
		}

		run := storage.NewRun(time.Now())
		run.Source = sourceName
		result, runErr := service.Run(cmd.Context(), syncer.Options{
			PriorWeek: priorWeek,
			DryRun:    syncDryRun,
			Threshold: cfg.Sync.LegacyThreshold,
		})

		if cfg.Journal.Enabled && !syncNoJournal {
			if err := recordJournal(cfg.Journal.Path, run, result, runErr); err != nil {
				logger.Warn("journal not written", "err", err)
				fmt.Fprintln(cmd.ErrOrStderr(), prompt.Muted("journal not written: "+err.Error()))
			}
		}

		if runErr != nil {
			if errors.Is(runErr, syncer.ErrAborted) {
				fmt.Fprintln(out, prompt.Failure("Aborted"))
			}
			return runErr
		}

		if strings.TrimSpace(syncExport) != "" {
			if err := exportWorklogs(out, syncExport, exportMode, result.Built); err != nil {
				return err
			}
		}

		return reportResult(out, result)
	},
}

func buildSource(cfg *config.Config, tokens secrets.Tokens, fromFile bool) (syncer.Source, string, error) {
	if fromFile {
		// Report rows carry project names only; without one every project would be published.
		if strings.TrimSpace(cfg.Toggl.ProjectName) == "" {
			return nil, "", fmt.Errorf("%s is required with --input", config.KeyTogglProjectName)
		}
		mapper, err := importer.MapperByName(syncMapper)
		if err != nil {
			return nil, "", err
		}
		return importer.FileSource{
			Paths:   syncInputs,
			Format:  syncFormat,
			Mapper:  mapper,
			Project: cfg.Toggl.ProjectName,
		}, "file", nil
	}

	if cfg.Toggl.ProjectID == 0 {
		return nil, "", fmt.Errorf("%s is required when syncing from the Toggl API", config.KeyTogglProjectID)
	}
	client, err := toggl.NewClient(toggl.ClientConfig{
		BaseURL:   cfg.Toggl.URL,
		Token:     tokens.Toggl,
		UserAgent: userAgent,
	})
	if err != nil {
		return nil, "", err
	}
	return toggl.ProjectSource{Client: client, ProjectID: cfg.Toggl.ProjectID}, "toggl", nil
}

func buildConfirmer(in io.Reader, out io.Writer) (prompt.Confirmer, error) {
	if syncYes {
		return prompt.AutoConfirmer{Out: out}, nil
	}
	return prompt.New(syncPrompt, in, out)
}

func recordJournal(path string, run storage.Run, result *syncer.Result, runErr error) error {
	if strings.TrimSpace(path) == "" {
		defaultPath, err := storage.DefaultPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	store, err := storage.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer store.Close()

	record, items := syncer.JournalRecord(run, result, runErr, time.Now())
	return store.RecordRun(record, items)
}

func normalizeExportMode(mode string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "raw":
		return "raw", nil
	case "daily":
		return "daily", nil
	default:
		return "", fmt.Errorf("unsupported export mode: %s (supported: raw, daily)", mode)
	}
}

// exportWorklogs writes entries to path; the format follows the extension.
func exportWorklogs(out io.Writer, path, mode string, entries []worklog.Entry) error {
	format, err := output.FormatFromPath(path)
	if err != nil {
		return err
	}

	switch mode {
	case "daily":
		summaries := output.BuildDailySummaries(entries)
		if err := output.WriteDailySummaries(path, format, summaries); err != nil {
			return err
		}
		fmt.Fprintf(out, "Export completed. Days: %d, Mode: daily, Format: %s, File: %s\n", len(summaries), format, path)
	default:
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}
		if err := writer.Write(path, entries); err != nil {
			return err
		}
		fmt.Fprintf(out, "Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(entries), format, path)
	}
	return nil
}

func reportResult(out io.Writer, result *syncer.Result) error {
	if result.Failed() {
		failed := result.Deleted.Failed() + result.Published.Failed()
		fmt.Fprintln(out, prompt.Failure(fmt.Sprintf("Sync of %s finished with %d failed items", result.Window, failed)))
		return fmt.Errorf("sync finished with %d failed items", failed)
	}
	if result.DryRun {
		fmt.Fprintln(out, prompt.Muted(fmt.Sprintf("Dry run of %s finished, nothing was changed", result.Window)))
		return nil
	}
	fmt.Fprintln(out, prompt.Success(fmt.Sprintf(
		"Sync of %s finished: %d deleted, %d published, %d legacy",
		result.Window,
		result.Deleted.Succeeded(),
		result.Published.Succeeded(),
		len(result.Legacy),
	)))
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncLastWeek, "last-week", false, "Sync the previous week instead of the current one (overrides sync.last_week)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Fetch and build worklogs without deleting, publishing or prompting")
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "Answer yes to every confirmation")
	syncCmd.Flags().StringVar(&syncPrompt, "prompt", "line", "Confirmation style: line|form|auto (auto is the same as --yes)")
	syncCmd.Flags().StringArrayVarP(&syncInputs, "input", "i", nil, "Toggl export file(s) to read instead of the API (repeatable)")
	syncCmd.Flags().StringVarP(&syncFormat, "format", "f", "", "Input format csv|excel (inferred from extension when empty)")
	syncCmd.Flags().StringVar(&syncMapper, "mapper", "toggl", "Input mapper: "+strings.Join(importer.SupportedMapperNames(), "|"))
	syncCmd.Flags().StringVar(&syncExport, "export", "", "Write the built worklogs to a .csv or .xlsx file")
	syncCmd.Flags().StringVar(&syncExportMode, "export-mode", "raw", "Export mode: raw|daily")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 30*time.Second, "Timeout for each API call (overrides sync.timeout)")
	syncCmd.Flags().BoolVar(&syncNoJournal, "no-journal", false, "Do not record this run in the local journal")
}
