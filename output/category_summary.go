package output

import (
	"sort"

	"togglepace/worklog"
)

var categoryHeaders = []string{"Activity", "ActivityTypeID", "WorklogCount", "Length", "Hours"}

// CategorySummary totals the booked length per activity type.
type CategorySummary struct {
	Activity       string
	ActivityTypeID string
	WorklogCount   int
	Seconds        int64
	Hours          float64
}

// BuildCategorySummaries groups entries by activity type id, longest first.
func BuildCategorySummaries(entries []worklog.Entry) []CategorySummary {
	byID := make(map[string]*CategorySummary)
	for _, entry := range entries {
		summary, ok := byID[entry.ActivityTypeID]
		if !ok {
			summary = &CategorySummary{Activity: entry.ActivityName, ActivityTypeID: entry.ActivityTypeID}
			byID[entry.ActivityTypeID] = summary
		}
		summary.WorklogCount++
		if entry.LengthSeconds > 0 {
			summary.Seconds += entry.LengthSeconds
		}
	}

	out := make([]CategorySummary, 0, len(byID))
	for _, summary := range byID {
		summary.Hours = roundHours(float64(summary.Seconds) / 3600)
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}
		return out[i].Activity < out[j].Activity
	})
	return out
}
