package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the date format used for window bounds and API date filters.
const DayLayout = "2006-01-02"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func FormatDay(value time.Time) string {
	return value.Format(DayLayout)
}

func ParseDay(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DayLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", value, err)
	}
	return parsed, nil
}

// Window is a Monday..Sunday range of calendar days, both ends inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// WeekWindow returns the week containing now. With priorWeek set the window
// moves back exactly seven days.
func WeekWindow(now time.Time, priorWeek bool) Window {
	day := StartOfDay(now)
	// time.Weekday counts from Sunday.
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	if priorWeek {
		start = start.AddDate(0, 0, -7)
	}
	return Window{Start: start, End: start.AddDate(0, 0, 6)}
}

func (w Window) StartDay() string {
	return FormatDay(w.Start)
}

func (w Window) EndDay() string {
	return FormatDay(w.End)
}

func (w Window) String() string {
	return w.StartDay() + ".." + w.EndDay()
}

// ContainsDay reports whether the YYYY-MM-DD prefix of value lies inside the
// window. Values shorter than a day prefix never match.
func (w Window) ContainsDay(value string) bool {
	value = strings.TrimSpace(value)
	if len(value) < len(DayLayout) {
		return false
	}
	day := value[:len(DayLayout)]
	return day >= w.StartDay() && day <= w.EndDay()
}

// Contains compares the calendar date of value, taken in the window's location.
func (w Window) Contains(value time.Time) bool {
	return w.ContainsDay(FormatDay(value.In(w.Start.Location())))
}
