package event

// FeedItem is the shape the calendar grid consumes.
type FeedItem struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Start         LocalTime  `json:"start"`
	End           *LocalTime `json:"end"`
	ExtendedProps FeedProps  `json:"extendedProps"`
}

type FeedProps struct {
	Instructors string `json:"instructors"`
	Location    string `json:"location"`
	EventType   string `json:"event_type"`
	Details     string `json:"details"`
}

func (e Event) FeedItem() FeedItem {
	item := FeedItem{
		ID:    e.ID,
		Title: e.Title,
		Start: LocalTime(e.Start),
		ExtendedProps: FeedProps{
			Instructors: e.Instructors,
			Location:    e.Location,
			EventType:   e.EventType,
			Details:     e.Details,
		},
	}

	if e.End != nil {
		end := LocalTime(*e.End)
		item.End = &end
	}

	return item
}

func FeedItems(events []Event) []FeedItem {
	out := make([]FeedItem, 0, len(events))

	for _, e := range events {
		out = append(out, e.FeedItem())
	}

	return out
}
