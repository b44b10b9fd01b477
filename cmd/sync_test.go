package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"togglepace/config"
	"togglepace/importer"
	"togglepace/internal/prompt"
	"togglepace/internal/secrets"
	"togglepace/internal/timeutil"
	"togglepace/storage"
	"togglepace/syncer"
	"togglepace/worklog"
)

func TestNormalizeExportMode(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "", want: "raw"},
		{input: " RAW ", want: "raw"},
		{input: "daily", want: "daily"},
		{input: "weekly", wantErr: true},
	}
	for _, tt := range tests {
		got, err := normalizeExportMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("normalizeExportMode(%q) = %q, %v", tt.input, got, err)
		}
	}
}

func TestExportWorklogs(t *testing.T) {
	dir := t.TempDir()
	entries := []worklog.Entry{{
		Timestamp:      time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local),
		LengthSeconds:  3600,
		Comment:        "Bug 1234: fix crash",
		UserID:         "u",
		ActivityTypeID: "bug-id",
		ActivityName:   "Bug",
	}}

	var out bytes.Buffer
	rawPath := filepath.Join(dir, "week.csv")
	if err := exportWorklogs(&out, rawPath, "raw", entries); err != nil {
		t.Fatalf("raw export: %v", err)
	}
	content, err := os.ReadFile(rawPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(content), "Bug 1234: fix crash") {
		t.Fatalf("expected entry in export, got:\n%s", content)
	}

	dailyPath := filepath.Join(dir, "daily.xlsx")
	if err := exportWorklogs(&out, dailyPath, "daily", entries); err != nil {
		t.Fatalf("daily export: %v", err)
	}
	if _, err := os.Stat(dailyPath); err != nil {
		t.Fatalf("expected daily workbook: %v", err)
	}

	if err := exportWorklogs(&out, filepath.Join(dir, "week.txt"), "raw", entries); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
}

func TestReportResult(t *testing.T) {
	window := timeutil.WeekWindow(time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local), false)

	var out bytes.Buffer
	ok := &syncer.Result{Window: window}
	ok.Published.Add(worklog.Outcome{Action: worklog.ActionPublish, Ref: "w-1"})
	if err := reportResult(&out, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "1 published") {
		t.Fatalf("unexpected summary %q", out.String())
	}

	failed := &syncer.Result{Window: window}
	failed.Deleted.Add(worklog.Outcome{Action: worklog.ActionDelete, Ref: "a", Err: errors.New("status 500")})
	if err := reportResult(&out, failed); err == nil {
		t.Fatalf("expected error when an item failed")
	}
}

func TestRecordJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	window := timeutil.WeekWindow(time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local), false)

	run := storage.NewRun(time.Now())
	run.Source = "toggl"
	result := &syncer.Result{Window: window}
	result.Published.Add(worklog.Outcome{Action: worklog.ActionPublish, Ref: "w-1", Comment: "Bug 1"})

	if err := recordJournal(path, run, result, nil); err != nil {
		t.Fatalf("record journal: %v", err)
	}

	store, err := storage.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	stored, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if stored.Status != storage.StatusSucceeded || stored.Published != 1 || stored.WindowStart != "2024-01-01" {
		t.Fatalf("unexpected stored run %+v", stored)
	}
}

func TestBuildSource_FileInputRequiresProjectName(t *testing.T) {
	cfg := &config.Config{Toggl: config.TogglConfig{ProjectID: 42}}

	_, _, err := buildSource(cfg, secrets.Tokens{}, true)
	if err == nil || !strings.Contains(err.Error(), config.KeyTogglProjectName) {
		t.Fatalf("expected %s error, got %v", config.KeyTogglProjectName, err)
	}

	cfg.Toggl.ProjectName = "Platform"
	source, name, err := buildSource(cfg, secrets.Tokens{}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fileSource, ok := source.(importer.FileSource)
	if !ok || name != "file" || fileSource.Project != "Platform" {
		t.Fatalf("unexpected source %T %q %+v", source, name, source)
	}
}

func TestPromptFlagListsEveryMode(t *testing.T) {
	usage := syncCmd.Flags().Lookup("prompt").Usage
	for _, mode := range []string{"line", "form", "auto"} {
		if !strings.Contains(usage, mode) {
			t.Fatalf("expected %q in --prompt usage %q", mode, usage)
		}
		if mode == "form" {
			continue
		}
		if _, err := prompt.New(mode, strings.NewReader(""), &bytes.Buffer{}); err != nil {
			t.Fatalf("prompt mode %q rejected: %v", mode, err)
		}
	}
}
