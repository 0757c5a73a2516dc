package widget

import (
	"github.com/thanhng-dev/classcal/internal/domain/event"
)

const (
	ClassFixed     = "event-fixed"
	ClassTemporary = "event-temporary"
)

// EventBox is the view model for one event chip in a grid cell.
type EventBox struct {
	ID          int64
	Title       string
	TimeText    string
	Instructors string
	Location    string
	Details     string
	ClassName   string
}

func BuildEventBox(item event.FeedItem) EventBox {
	timeText := item.Start.Time().Format("15:04")

	if item.End != nil && !item.End.IsZero() {
		timeText += "-" + item.End.Time().Format("15:04")
	}

	className := ClassTemporary

	if item.ExtendedProps.EventType == event.TypeFixed {
		className = ClassFixed
	}

	return EventBox{
		ID:          item.ID,
		Title:       item.Title,
		TimeText:    timeText,
		Instructors: item.ExtendedProps.Instructors,
		Location:    item.ExtendedProps.Location,
		Details:     item.ExtendedProps.Details,
		ClassName:   className,
	}
}

func BuildEventBoxes(items []event.FeedItem) []EventBox {
	boxes := make([]EventBox, 0, len(items))

	for _, item := range items {
		boxes = append(boxes, BuildEventBox(item))
	}

	return boxes
}
