package importer

import (
	"fmt"
	"strings"

	"togglepace/toggl"
)

// GenericMapper reads rows with a single start datetime column plus either a
// duration or an end datetime.
type GenericMapper struct{}

func (m *GenericMapper) Name() string {
	return "generic"
}

func (m *GenericMapper) Map(record Record) (toggl.TimeEntry, string, bool, error) {
	description := strings.TrimSpace(record.Get("description", "comment"))
	rawStart := record.Get("startdatetime", "start", "timestamp")
	if description == "" && rawStart == "" {
		return toggl.TimeEntry{}, "", false, nil
	}

	start, err := parseDateTime(rawStart)
	if err != nil {
		return toggl.TimeEntry{}, "", false, fmt.Errorf("row %d: parse start datetime: %w", record.RowNumber, err)
	}

	var seconds int64
	if value := record.Get("duration", "length", "hours"); value != "" {
		seconds, err = parseDuration(value)
		if err != nil {
			return toggl.TimeEntry{}, "", false, fmt.Errorf("row %d: parse duration: %w", record.RowNumber, err)
		}
	} else {
		end, err := parseDateTime(record.Get("enddatetime", "end"))
		if err != nil {
			return toggl.TimeEntry{}, "", false, fmt.Errorf("row %d: parse end datetime: %w", record.RowNumber, err)
		}
		if !end.After(start) {
			return toggl.TimeEntry{}, "", false, fmt.Errorf("row %d: end datetime must be after start datetime", record.RowNumber)
		}
		seconds = int64(end.Sub(start).Seconds())
	}

	entry := toggl.TimeEntry{
		ID:          int64(record.RowNumber),
		Start:       start,
		Duration:    seconds,
		Description: description,
	}
	return entry, record.Get("project"), true, nil
}
