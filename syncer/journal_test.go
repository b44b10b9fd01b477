package syncer

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"togglepace/internal/timeutil"
	"togglepace/storage"
	"togglepace/toggl"
	"togglepace/worklog"
)

func TestJournalRecord_Statuses(t *testing.T) {
	t.Parallel()

	failed := worklog.Report{}
	failed.Add(worklog.Outcome{Action: worklog.ActionPublish, Comment: "x", Err: errors.New("status 500")})

	tests := []struct {
		name   string
		result *Result
		err    error
		want   string
	}{
		{name: "success", result: &Result{}, want: storage.StatusSucceeded},
		{name: "dry run", result: &Result{DryRun: true}, want: storage.StatusDryRun},
		{name: "partial", result: &Result{Published: failed}, want: storage.StatusPartial},
		{name: "aborted", result: &Result{}, err: fmt.Errorf("confirm: %w", ErrAborted), want: storage.StatusAborted},
		{name: "failed", err: errors.New("fetch source entries: boom"), want: storage.StatusFailed},
	}

	for _, tc := range tests {
		run, _ := JournalRecord(storage.NewRun(time.Now()), tc.result, tc.err, time.Now())
		if run.Status != tc.want {
			t.Fatalf("%s: expected status %q, got %q", tc.name, tc.want, run.Status)
		}
		if tc.err != nil && run.Error == "" {
			t.Fatalf("%s: expected error text in run", tc.name)
		}
	}
}

func TestJournalRecord_CopiesCountsAndItems(t *testing.T) {
	t.Parallel()

	deleted := worklog.Report{}
	deleted.Add(worklog.Outcome{Action: worklog.ActionDelete, Ref: "a", Comment: "old"})
	published := worklog.Report{}
	published.Add(worklog.Outcome{Action: worklog.ActionPublish, Ref: "n-1", Comment: "Bug 1"})
	published.Add(worklog.Outcome{Action: worklog.ActionPublish, Comment: "PR", Err: errors.New("status 400")})

	result := &Result{
		Window:    timeutil.WeekWindow(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), false),
		Source:    make([]toggl.TimeEntry, 4),
		Skipped:   make([]toggl.TimeEntry, 1),
		Legacy:    make([]worklog.Entry, 1),
		Deleted:   deleted,
		Published: published,
	}

	base := storage.NewRun(time.Now())
	run, items := JournalRecord(base, result, nil, time.Now())
	if run.ID != base.ID {
		t.Fatalf("run id must be kept")
	}
	if run.WindowStart != "2024-01-01" || run.WindowEnd != "2024-01-07" {
		t.Fatalf("unexpected window %s..%s", run.WindowStart, run.WindowEnd)
	}
	if run.SourceCount != 4 || run.Skipped != 1 || run.Legacy != 1 {
		t.Fatalf("unexpected counts %+v", run)
	}
	if run.Deleted != 1 || run.Published != 1 || run.PublishFailed != 1 {
		t.Fatalf("unexpected outcome counts %+v", run)
	}
	if len(items) != 3 || items[0].Action != "delete" || items[2].OK || items[2].Error != "status 400" {
		t.Fatalf("unexpected items %+v", items)
	}
}
