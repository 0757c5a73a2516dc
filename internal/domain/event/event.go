package event

import (
	"errors"
	"time"
)

// Display classification only; recurrence is unrelated (each occurrence is
// its own row).
const (
	TypeFixed     = "fixed"
	TypeTemporary = "temporary"
)

type Event struct {
	ID          int64
	Title       string
	Start       time.Time
	End         *time.Time
	EventType   string
	Instructors string
	Location    string
	Details     string
	CreatedBy   *string
}

// ListEventsFilter narrows the feed. Nil means no constraint.
type ListEventsFilter struct {
	Instructor *string
	From       *time.Time
}

// A delete that removes nothing and a storage failure surface identically.
var ErrDeleteFailed = errors.New("cannot delete event")

// SaveEventRequest covers both create and update: a present ID means the
// first occurrence replaces that row, every other occurrence is an insert.
// event_type and instructors are intentionally not validated server-side;
// the widget treats anything but "fixed" as temporary.
type SaveEventRequest struct {
	ID             *int64     `json:"id"`
	Title          string     `json:"title" binding:"required"`
	Start          LocalTime  `json:"start" binding:"required"`
	End            *LocalTime `json:"end"`
	EventType      string     `json:"event_type"`
	Instructors    string     `json:"instructors"`
	Location       string     `json:"location"`
	Details        string     `json:"details"`
	NumRecurrences int        `json:"num_recurrences"`
}

func (r SaveEventRequest) IsUpdate() bool {
	return r.ID != nil && *r.ID != 0
}
