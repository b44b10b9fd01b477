package worklog

import (
	"fmt"
	"time"
)

// Entry is a destination work log built from one source time entry.
type Entry struct {
	Timestamp      time.Time
	LengthSeconds  int64
	Comment        string
	WorkItemID     *int64
	UserID         string
	ActivityTypeID string
	ActivityName   string
}

// LengthFriendly renders the length as zero-padded HH:MM:SS. Hours do not
// wrap at 24.
func (e Entry) LengthFriendly() string {
	return FormatLength(e.LengthSeconds)
}

// End is the timestamp plus the length.
func (e Entry) End() time.Time {
	return e.Timestamp.Add(time.Duration(e.LengthSeconds) * time.Second)
}

// HasWorkItem reports whether a work item id was found in the comment.
func (e Entry) HasWorkItem() bool {
	return e.WorkItemID != nil
}

func FormatLength(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

type Action string

const (
	ActionDelete  Action = "delete"
	ActionPublish Action = "publish"
)

// Outcome is the result of one remote write.
type Outcome struct {
	Action  Action
	Ref     string
	Comment string
	Err     error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report collects the outcomes of a best-effort loop.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) Add(outcome Outcome) {
	r.Outcomes = append(r.Outcomes, outcome)
}

func (r Report) Total() int {
	return len(r.Outcomes)
}

func (r Report) Failed() int {
	failed := 0
	for _, outcome := range r.Outcomes {
		if !outcome.OK() {
			failed++
		}
	}
	return failed
}

func (r Report) Succeeded() int {
	return r.Total() - r.Failed()
}

// OK is true when no item failed.
func (r Report) OK() bool {
	return r.Failed() == 0
}

func (r Report) Failures() []Outcome {
	out := make([]Outcome, 0)
	for _, outcome := range r.Outcomes {
		if !outcome.OK() {
			out = append(out, outcome)
		}
	}
	return out
}
