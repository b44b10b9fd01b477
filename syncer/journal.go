package syncer

import (
	"errors"
	"time"

	"togglepace/storage"
	"togglepace/worklog"
)

// JournalRecord turns the outcome of Run into a journal run plus its items.
// result may be nil when Run failed before the window was computed.
func JournalRecord(run storage.Run, result *Result, runErr error, finishedAt time.Time) (storage.Run, []storage.Item) {
	run.FinishedAt = finishedAt
	run.Status = runStatus(result, runErr)
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if result == nil {
		return run, nil
	}

	run.WindowStart = result.Window.StartDay()
	run.WindowEnd = result.Window.EndDay()
	run.DryRun = result.DryRun
	run.SourceCount = len(result.Source)
	run.Skipped = len(result.Skipped)
	run.Deleted = result.Deleted.Succeeded()
	run.DeleteFailed = result.Deleted.Failed()
	run.Published = result.Published.Succeeded()
	run.PublishFailed = result.Published.Failed()
	run.Legacy = len(result.Legacy)

	items := make([]storage.Item, 0, result.Deleted.Total()+result.Published.Total())
	items = appendItems(items, run.ID, result.Deleted)
	items = appendItems(items, run.ID, result.Published)
	return run, items
}

func runStatus(result *Result, runErr error) string {
	switch {
	case errors.Is(runErr, ErrAborted):
		return storage.StatusAborted
	case runErr != nil:
		return storage.StatusFailed
	case result != nil && result.Failed():
		return storage.StatusPartial
	case result != nil && result.DryRun:
		return storage.StatusDryRun
	default:
		return storage.StatusSucceeded
	}
}

func appendItems(items []storage.Item, runID string, report worklog.Report) []storage.Item {
	for _, outcome := range report.Outcomes {
		item := storage.Item{
			RunID:   runID,
			Action:  string(outcome.Action),
			Ref:     outcome.Ref,
			Comment: outcome.Comment,
			OK:      outcome.OK(),
		}
		if outcome.Err != nil {
			item.Error = outcome.Err.Error()
		}
		items = append(items, item)
	}
	return items
}
