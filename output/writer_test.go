package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"togglepace/worklog"
)

func sampleEntries() []worklog.Entry {
	id := int64(1234)
	return []worklog.Entry{
		{
			Timestamp:      time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			LengthSeconds:  3600,
			Comment:        "Bug 1234: fix crash",
			WorkItemID:     &id,
			UserID:         "u",
			ActivityTypeID: "bug-id",
			ActivityName:   "Bug",
		},
		{
			Timestamp:      time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC),
			LengthSeconds:  1800,
			Comment:        "PR review",
			UserID:         "u",
			ActivityTypeID: "feature-id",
			ActivityName:   "Feature",
		},
		{
			Timestamp:      time.Date(2024, 1, 3, 11, 0, 0, 0, time.UTC),
			LengthSeconds:  5400,
			Comment:        "Bug triage",
			UserID:         "u",
			ActivityTypeID: "bug-id",
			ActivityName:   "Bug",
		},
	}
}

func TestCSVWriter_WritesRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "worklogs.csv")
	writer, err := WriterForFormat("CSV")
	if err != nil {
		t.Fatalf("writer for format: %v", err)
	}
	if err := writer.Write(path, sampleEntries()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(records))
	}
	first := records[1]
	if first[0] != "2024-01-02T09:00:00Z" || first[2] != "01:00:00" || first[4] != "1234" || first[6] != "Bug" {
		t.Fatalf("unexpected first row %v", first)
	}
	if records[2][4] != "" {
		t.Fatalf("entry without work item must have empty id, got %q", records[2][4])
	}
}

func TestExcelWriter_WritesWorklogAndCategorySheets(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "worklogs.xlsx")
	if err := (&ExcelWriter{}).Write(path, sampleEntries()); err != nil {
		t.Fatalf("write excel: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open excel: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(worklogSheet)
	if err != nil {
		t.Fatalf("read worklog sheet: %v", err)
	}
	if len(rows) != 4 || rows[1][3] != "Bug 1234: fix crash" {
		t.Fatalf("unexpected worklog rows %v", rows)
	}

	summary, err := file.GetRows(categorySheet)
	if err != nil {
		t.Fatalf("read category sheet: %v", err)
	}
	if len(summary) != 3 {
		t.Fatalf("expected header plus 2 categories, got %v", summary)
	}
	if summary[1][0] != "Bug" || summary[1][2] != "2" || summary[1][3] != "02:30:00" {
		t.Fatalf("unexpected bug summary row %v", summary[1])
	}
}

func TestBuildCategorySummaries(t *testing.T) {
	t.Parallel()

	summaries := BuildCategorySummaries(sampleEntries())
	if len(summaries) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(summaries))
	}
	if summaries[0].ActivityTypeID != "bug-id" || summaries[0].Seconds != 9000 || summaries[0].Hours != 2.5 {
		t.Fatalf("unexpected first summary %+v", summaries[0])
	}
	if summaries[1].Activity != "Feature" || summaries[1].WorklogCount != 1 {
		t.Fatalf("unexpected second summary %+v", summaries[1])
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	if format, err := FormatFromPath("out/Week.XLSX"); err != nil || format != "xlsx" {
		t.Fatalf("expected xlsx, got %q %v", format, err)
	}
	if format, err := FormatFromPath("week.csv"); err != nil || format != "csv" {
		t.Fatalf("expected csv, got %q %v", format, err)
	}
	if _, err := FormatFromPath("week.json"); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := WriterForFormat("json"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestWriteDailySummaries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	summaries := BuildDailySummaries(sampleEntries())
	for _, name := range []string{"daily.csv", "daily.xlsx"} {
		format, err := FormatFromPath(name)
		if err != nil {
			t.Fatalf("format: %v", err)
		}
		path := filepath.Join(dir, name)
		if err := WriteDailySummaries(path, format, summaries); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("expected non-empty %s, got %v", name, err)
		}
	}
}
