package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// parseClockDuration parses "HH:MM:SS" or "HH:MM" into seconds. Hours may
// exceed 24.
func parseClockDuration(raw string) (int64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, fmt.Errorf("empty duration")
	}

	parts := strings.Split(cleaned, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parse duration %q: expected HH:MM:SS", raw)
	}

	values := make([]int64, 3)
	for i, part := range parts {
		value, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("parse duration %q: invalid component %q", raw, part)
		}
		if i > 0 && value >= 60 {
			return 0, fmt.Errorf("parse duration %q: component %q out of range", raw, part)
		}
		values[i] = value
	}
	return values[0]*3600 + values[1]*60 + values[2], nil
}

// parseDecimalHours parses "1.5" or "1,5" hours into seconds.
func parseDecimalHours(raw string) (int64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	hours, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", raw, err)
	}
	seconds := int64(math.Round(hours * 3600))
	if seconds < 0 {
		return 0, fmt.Errorf("hours must not be negative")
	}
	return seconds, nil
}

// parseDuration accepts clock notation or decimal hours.
func parseDuration(raw string) (int64, error) {
	if strings.Contains(raw, ":") {
		return parseClockDuration(raw)
	}
	return parseDecimalHours(raw)
}

func parseDateAndTime(dateValue, timeValue string) (time.Time, error) {
	dateValue = strings.TrimSpace(dateValue)
	timeValue = strings.TrimSpace(timeValue)
	if dateValue == "" || timeValue == "" {
		return time.Time{}, fmt.Errorf("missing date or time")
	}

	datetime := dateValue + " " + timeValue
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"02.01.2006 15:04:05",
		"02.01.2006 15:04",
		"01/02/2006 15:04:05",
		"01/02/2006 03:04:05 PM",
		"2006-01-02 03:04 PM",
	}

	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, datetime, time.Local); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date/time format: %q", datetime)
}

func parseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"02.01.2006 15:04",
	}

	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported datetime format: %q", value)
}
