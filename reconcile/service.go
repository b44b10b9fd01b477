package reconcile

import (
	"context"
	"errors"

	"togglepace/internal/logger"
	"togglepace/internal/timeutil"
	"togglepace/sevenpace"
	"togglepace/worklog"
)

// Deleter removes one destination work log by id.
type Deleter interface {
	DeleteWorklog(ctx context.Context, id string) error
}

// SelectInWindow keeps the work logs whose timestamp date lies inside window.
// Order is preserved.
func SelectInWindow(worklogs []sevenpace.Worklog, window timeutil.Window) []sevenpace.Worklog {
	out := make([]sevenpace.Worklog, 0, len(worklogs))
	for _, item := range worklogs {
		if window.ContainsDay(item.Timestamp) {
			out = append(out, item)
		}
	}
	return out
}

// Comments returns the comment of every work log, in order.
func Comments(worklogs []sevenpace.Worklog) []string {
	out := make([]string, 0, len(worklogs))
	for _, item := range worklogs {
		out = append(out, item.Comment)
	}
	return out
}

// DeleteAll deletes every work log and keeps going after a failure. The
// report holds one outcome per work log.
func DeleteAll(ctx context.Context, client Deleter, worklogs []sevenpace.Worklog) worklog.Report {
	report := worklog.Report{Outcomes: make([]worklog.Outcome, 0, len(worklogs))}
	for _, item := range worklogs {
		outcome := worklog.Outcome{
			Action:  worklog.ActionDelete,
			Ref:     item.ID,
			Comment: item.Comment,
		}
		if client == nil {
			outcome.Err = errors.New("delete client is required")
		} else {
			outcome.Err = client.DeleteWorklog(ctx, item.ID)
		}

		if outcome.Err != nil {
			logger.Warn("delete worklog failed", "id", item.ID, "err", outcome.Err)
		} else {
			logger.Debug("worklog deleted", "id", item.ID)
		}
		report.Add(outcome)
	}
	return report
}
