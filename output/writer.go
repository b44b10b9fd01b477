package output

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"togglepace/worklog"
)

type Writer interface {
	Write(path string, entries []worklog.Entry) error
}

var entryHeaders = []string{"Timestamp", "Length", "LengthFriendly", "Comment", "WorkItemID", "ActivityTypeID", "Activity", "UserID"}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// FormatFromPath derives the output format from the file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".xlsx":
		return "xlsx", nil
	default:
		return "", fmt.Errorf("cannot derive output format from %q (use .csv or .xlsx)", path)
	}
}

func entryRow(entry worklog.Entry) []string {
	workItem := ""
	if entry.HasWorkItem() {
		workItem = strconv.FormatInt(*entry.WorkItemID, 10)
	}
	return []string{
		entry.Timestamp.Format(time.RFC3339),
		strconv.FormatInt(entry.LengthSeconds, 10),
		entry.LengthFriendly(),
		entry.Comment,
		workItem,
		entry.ActivityTypeID,
		entry.ActivityName,
		entry.UserID,
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
