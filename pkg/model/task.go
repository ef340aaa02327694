package model

import (
	"fmt"
	"time"
)

// Task status labels, kept in the original Chinese wording so records written
// by older clients remain byte-compatible.
const (
	StatusPending = "未执行"
	StatusDone    = "已执行"
)

// Priority labels, most urgent first.
const (
	PriorityA1 = "A1"
	PriorityA2 = "A2"
	PriorityB1 = "B1"
	PriorityC  = "C"
)

// DeadlineLayout matches the value produced by an HTML datetime-local input,
// which is what the original web client stored.
const DeadlineLayout = "2006-01-02T15:04"

// Task is a single tracked item. Field names mirror the persisted JSON record
// and must stay stable for backward readability.
type Task struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Priority   string `json:"priority,omitempty"`
	Deadline   string `json:"deadline,omitempty"`
	Note       string `json:"note,omitempty"`
	Completed  bool   `json:"completed"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	ArchiveID  string `json:"archiveId,omitempty"`
	ArchivedAt string `json:"archivedAt,omitempty"`
}

// PriorityRank maps a priority label to its sort rank. Unknown labels sort
// after every known one.
func PriorityRank(p string) int {
	switch p {
	case PriorityA1:
		return 0
	case PriorityA2:
		return 1
	case PriorityB1:
		return 2
	case PriorityC:
		return 3
	}
	return 4
}

// ParseDeadline validates a deadline string. An empty deadline is allowed and
// returns a zero time.
func ParseDeadline(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DeadlineLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q (want %s): %w", s, DeadlineLayout, err)
	}
	return t, nil
}

// ValidationError reports user input rejected before any state change.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
