package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"togglepace/internal/logger"
	"togglepace/internal/timeutil"
	"togglepace/toggl"
)

type Result struct {
	FilesProcessed int
	RowsRead       int
	RowsMapped     int
	RowsSkipped    int
	Entries        []toggl.TimeEntry
}

// Run reads every file and maps its rows. Rows whose project does not match
// project (case-insensitive) are skipped; an empty project keeps every row.
func Run(paths []string, format string, mapper Mapper, project string) (*Result, error) {
	if mapper == nil {
		return nil, errors.New("mapper is required")
	}

	result := &Result{Entries: make([]toggl.TimeEntry, 0, 256)}
	project = strings.TrimSpace(project)
	for _, path := range paths {
		sourceFormat, err := inferFormat(path, format)
		if err != nil {
			return nil, err
		}
		reader, err := ReaderForFormat(sourceFormat)
		if err != nil {
			return nil, err
		}

		records, err := reader.Read(path)
		if err != nil {
			return nil, err
		}

		result.FilesProcessed++
		result.RowsRead += len(records)
		for _, record := range records {
			entry, rowProject, ok, mapErr := mapper.Map(record)
			if mapErr != nil {
				return nil, fmt.Errorf("%s: %w", path, mapErr)
			}
			if !ok || (project != "" && !strings.EqualFold(strings.TrimSpace(rowProject), project)) {
				result.RowsSkipped++
				continue
			}

			result.RowsMapped++
			result.Entries = append(result.Entries, entry)
		}
	}

	return result, nil
}

// FileSource serves time entries from exported report files instead of the
// Toggl API.
type FileSource struct {
	Paths   []string
	Format  string
	Mapper  Mapper
	Project string
}

// FetchEntries returns the mapped entries whose local start date lies in
// window, in file order.
func (s FileSource) FetchEntries(ctx context.Context, window timeutil.Window) ([]toggl.TimeEntry, error) {
	if len(s.Paths) == 0 {
		return nil, errors.New("at least one input file is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := Run(s.Paths, s.Format, s.Mapper, s.Project)
	if err != nil {
		return nil, fmt.Errorf("import entries for %s: %w", window, err)
	}

	entries := make([]toggl.TimeEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		if window.Contains(entry.Start) {
			entries = append(entries, entry)
		}
	}
	logger.Debug(
		"entries imported",
		"files", result.FilesProcessed,
		"rows", result.RowsRead,
		"mapped", result.RowsMapped,
		"in_window", len(entries),
	)
	return entries, nil
}
