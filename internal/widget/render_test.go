package widget

import (
	"testing"
	"time"

	"github.com/thanhng-dev/classcal/internal/domain/event"
)

func feedItem(id int64, title string, start time.Time, end *time.Time, eventType string) event.FeedItem {
	item := event.FeedItem{
		ID:    id,
		Title: title,
		Start: event.LocalTime(start),
	}

	item.ExtendedProps.EventType = eventType

	if end != nil {
		lt := event.LocalTime(*end)
		item.End = &lt
	}

	return item
}

func TestBuildEventBox(t *testing.T) {
	start := time.Date(2025, time.July, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	tests := []struct {
		name         string
		item         event.FeedItem
		wantTimeText string
		wantClass    string
	}{
		{
			name:         "fixed with end",
			item:         feedItem(1, "Yoga", start, &end, event.TypeFixed),
			wantTimeText: "09:00-10:30",
			wantClass:    ClassFixed,
		},
		{
			name:         "temporary without end",
			item:         feedItem(2, "Workshop", start, nil, event.TypeTemporary),
			wantTimeText: "09:00",
			wantClass:    ClassTemporary,
		},
		{
			name:         "unknown type renders as temporary",
			item:         feedItem(3, "Trial", start, nil, "whatever"),
			wantTimeText: "09:00",
			wantClass:    ClassTemporary,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			box := BuildEventBox(tc.item)

			if box.TimeText != tc.wantTimeText {
				t.Errorf("TimeText = %q, want %q", box.TimeText, tc.wantTimeText)
			}

			if box.ClassName != tc.wantClass {
				t.Errorf("ClassName = %q, want %q", box.ClassName, tc.wantClass)
			}

			if box.Title != tc.item.Title {
				t.Errorf("Title = %q, want %q", box.Title, tc.item.Title)
			}
		})
	}
}
