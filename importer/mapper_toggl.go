package importer

import (
	"fmt"
	"strings"

	"togglepace/toggl"
)

// TogglMapper reads rows of a Toggl Track "detailed report" export:
// Description, Project, Start date, Start time, Duration (HH:MM:SS).
type TogglMapper struct{}

func (m *TogglMapper) Name() string {
	return "toggl"
}

func (m *TogglMapper) Map(record Record) (toggl.TimeEntry, string, bool, error) {
	startDate := record.Get("start date", "startdate")
	startTime := record.Get("start time", "starttime")
	if startDate == "" && startTime == "" {
		return toggl.TimeEntry{}, "", false, nil
	}

	start, err := parseDateAndTime(startDate, startTime)
	if err != nil {
		return toggl.TimeEntry{}, "", false, fmt.Errorf("row %d: parse start: %w", record.RowNumber, err)
	}

	duration, err := parseDuration(record.Get("duration"))
	if err != nil {
		return toggl.TimeEntry{}, "", false, fmt.Errorf("row %d: parse duration: %w", record.RowNumber, err)
	}

	entry := toggl.TimeEntry{
		ID:          int64(record.RowNumber),
		Start:       start,
		Duration:    duration,
		Description: record.Get("description"),
	}
	if tags := record.Get("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				entry.Tags = append(entry.Tags, tag)
			}
		}
	}
	return entry, record.Get("project"), true, nil
}
