package widget

import (
	"errors"
	"time"

	"github.com/thanhng-dev/classcal/internal/domain/event"
)

// datetime-local inputs produce minute precision
const formLayout = "2006-01-02T15:04"

// FormState mirrors the add/edit dialog. Start and End hold the raw
// datetime-local strings so the form can round-trip whatever the input
// widget produced.
type FormState struct {
	ID             *int64
	Title          string
	Start          string
	End            string
	EventType      string
	Instructors    string
	Location       string
	Details        string
	NumRecurrences int
	ShowDelete     bool
}

func newCreateForm(date time.Time) FormState {
	return FormState{
		Start:          date.Format(formLayout),
		EventType:      event.TypeFixed,
		NumRecurrences: 1,
	}
}

// newEditForm prefills from an existing event. Recurrences reset to 1:
// editing touches the clicked occurrence only, never its siblings.
func newEditForm(item event.FeedItem) FormState {
	id := item.ID

	form := FormState{
		ID:             &id,
		Title:          item.Title,
		Start:          item.Start.Time().Format(formLayout),
		EventType:      item.ExtendedProps.EventType,
		Instructors:    item.ExtendedProps.Instructors,
		Location:       item.ExtendedProps.Location,
		Details:        item.ExtendedProps.Details,
		NumRecurrences: 1,
		ShowDelete:     true,
	}

	if item.End != nil && !item.End.IsZero() {
		form.End = item.End.Time().Format(formLayout)
	}

	return form
}

// request converts the form into the save payload. Title presence is the
// only client-side check; everything else is the server's call.
func (f FormState) request() (event.SaveEventRequest, error) {
	var req event.SaveEventRequest

	if f.Title == "" {
		return req, errors.New("title is required")
	}

	start, err := event.ParseLocalTime(f.Start)

	if err != nil {
		return req, err
	}

	req = event.SaveEventRequest{
		ID:             f.ID,
		Title:          f.Title,
		Start:          start,
		EventType:      f.EventType,
		Instructors:    f.Instructors,
		Location:       f.Location,
		Details:        f.Details,
		NumRecurrences: f.NumRecurrences,
	}

	if f.End != "" {
		end, err := event.ParseLocalTime(f.End)

		if err != nil {
			return req, err
		}

		req.End = &end
	}

	return req, nil
}
