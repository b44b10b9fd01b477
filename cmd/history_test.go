package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"togglepace/storage"
)

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("unexpected short id %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("unexpected short id %q", got)
	}
}

func TestPrintRunDetails(t *testing.T) {
	run := storage.Run{
		ID:            "run-1",
		StartedAt:     time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		WindowStart:   "2024-01-01",
		WindowEnd:     "2024-01-07",
		Source:        "toggl",
		Status:        storage.StatusPartial,
		Published:     1,
		PublishFailed: 1,
	}
	items := []storage.Item{
		{RunID: "run-1", Seq: 1, Action: "publish", Ref: "w-1", Comment: "Bug 1", OK: true},
		{RunID: "run-1", Seq: 2, Action: "publish", Comment: "Bug 2", Error: errors.New("status 400").Error()},
	}

	var out bytes.Buffer
	printRunDetails(&out, run, items)
	printRunLine(&out, run)

	text := out.String()
	for _, want := range []string{"run-1", "2024-01-01..2024-01-07", "status 400", "w-1", "published=1/2"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}
