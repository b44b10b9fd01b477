package submitter

import (
	"context"
	"errors"
	"time"

	"togglepace/internal/classify"
	"togglepace/internal/logger"
	"togglepace/sevenpace"
	"togglepace/toggl"
	"togglepace/worklog"
)

// Creator publishes one destination work log.
type Creator interface {
	CreateWorklog(ctx context.Context, payload sevenpace.NewWorklog) (sevenpace.Worklog, error)
}

// BuildWorklogs converts every finished time entry into a destination work
// log. Running timers (negative duration) are returned as skipped and never
// produce a work log. Timestamps are converted to local time.
func BuildWorklogs(
	entries []toggl.TimeEntry,
	userID string,
	classifier *classify.Classifier,
	activityNames map[string]string,
) (built []worklog.Entry, skipped []toggl.TimeEntry) {
	if classifier == nil {
		classifier = classify.NewClassifier(nil)
	}

	built = make([]worklog.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Running() {
			skipped = append(skipped, entry)
			continue
		}

		category := classifier.Classify(entry.Description)
		name, ok := activityNames[category.ID]
		if !ok || name == "" {
			name = category.Name
		}

		out := worklog.Entry{
			Timestamp:      entry.Start.In(time.Local),
			LengthSeconds:  entry.Duration,
			Comment:        entry.Description,
			UserID:         userID,
			ActivityTypeID: category.ID,
			ActivityName:   name,
		}
		if id, ok := classify.ExtractWorkItemID(entry.Description); ok {
			out.WorkItemID = &id
		}
		built = append(built, out)
	}
	return built, skipped
}

// Partition splits entries on the legacy work item threshold. Entries whose
// work item id is greater than threshold go to legacy; everything else,
// including entries without an id, is published.
func Partition(entries []worklog.Entry, threshold int64) (publish, legacy []worklog.Entry) {
	publish = make([]worklog.Entry, 0, len(entries))
	legacy = make([]worklog.Entry, 0)
	for _, entry := range entries {
		if entry.HasWorkItem() && *entry.WorkItemID > threshold {
			legacy = append(legacy, entry)
			continue
		}
		publish = append(publish, entry)
	}
	return publish, legacy
}

// Payload renders an entry as the POST workLogs body.
func Payload(entry worklog.Entry) sevenpace.NewWorklog {
	return sevenpace.NewWorklog{
		Timestamp:        entry.Timestamp.Format(time.RFC3339),
		Length:           entry.LengthSeconds,
		LengthFriendly:   entry.LengthFriendly(),
		Comment:          entry.Comment,
		WorkItemID:       entry.WorkItemID,
		UserID:           entry.UserID,
		ActivityTypeID:   entry.ActivityTypeID,
		ActivityFriendly: entry.ActivityName,
	}
}

func Payloads(entries []worklog.Entry) []sevenpace.NewWorklog {
	out := make([]sevenpace.NewWorklog, 0, len(entries))
	for _, entry := range entries {
		out = append(out, Payload(entry))
	}
	return out
}

// Publish creates every entry and keeps going after a failure. The report
// holds one outcome per entry.
func Publish(ctx context.Context, client Creator, entries []worklog.Entry) worklog.Report {
	report := worklog.Report{Outcomes: make([]worklog.Outcome, 0, len(entries))}
	for _, entry := range entries {
		outcome := worklog.Outcome{
			Action:  worklog.ActionPublish,
			Comment: entry.Comment,
		}
		if client == nil {
			outcome.Err = errors.New("publish client is required")
		} else {
			created, err := client.CreateWorklog(ctx, Payload(entry))
			outcome.Ref = created.ID
			outcome.Err = err
		}

		if outcome.Err != nil {
			logger.Warn("publish worklog failed", "comment", entry.Comment, "err", outcome.Err)
		} else {
			logger.Debug("worklog published", "id", outcome.Ref, "activity", entry.ActivityName)
		}
		report.Add(outcome)
	}
	return report
}
