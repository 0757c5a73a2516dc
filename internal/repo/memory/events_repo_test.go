package memory

import (
	"context"
	"testing"
	"time"

	"github.com/thanhng-dev/classcal/internal/domain/event"
)

func localTime(s string) event.LocalTime {
	lt, err := event.ParseLocalTime(s)
	if err != nil {
		panic(err)
	}
	return lt
}

func TestSaveExpandsRecurrences(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	req := event.SaveEventRequest{
		Title:          "Yoga",
		Start:          localTime("2025-07-07T09:00"),
		EventType:      event.TypeFixed,
		Instructors:    "Alice",
		NumRecurrences: 3,
	}

	if err := repo.Save(ctx, req, "u-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	events, err := repo.List(ctx, event.ListEventsFilter{})

	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("rows = %d, want 3", len(events))
	}

	for i, e := range events {
		want := time.Date(2025, time.July, 7+7*i, 9, 0, 0, 0, time.UTC)

		if !e.Start.Equal(want) {
			t.Errorf("row %d starts %v, want %v", i, e.Start, want)
		}

		if e.Title != "Yoga" || e.Instructors != "Alice" {
			t.Errorf("row %d lost shared fields: %+v", i, e)
		}

		if e.CreatedBy == nil || *e.CreatedBy != "u-1" {
			t.Errorf("row %d missing creator", i)
		}
	}
}

func TestSaveUpdateTouchesOnlyFirstOccurrence(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	seed := event.SaveEventRequest{Title: "Yoga", Start: localTime("2025-07-07T09:00")}

	if err := repo.Save(ctx, seed, "u-1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	id := int64(1)

	update := event.SaveEventRequest{
		ID:             &id,
		Title:          "Yoga II",
		Start:          localTime("2025-07-07T10:00"),
		NumRecurrences: 2,
	}

	if err := repo.Save(ctx, update, "u-1"); err != nil {
		t.Fatalf("update: %v", err)
	}

	// one row rewritten in place, one sibling inserted
	if repo.Len() != 2 {
		t.Fatalf("rows = %d, want 2", repo.Len())
	}

	events, _ := repo.List(ctx, event.ListEventsFilter{})

	if events[0].ID != id || events[0].Title != "Yoga II" {
		t.Errorf("first row = %+v", events[0])
	}

	if events[1].ID == id {
		t.Error("recurrence sibling reused the updated id")
	}
}

func TestListFilters(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	seed := []event.SaveEventRequest{
		{Title: "Spin", Start: localTime("2025-07-08T18:00"), Instructors: "Bob, Carol"},
		{Title: "Yoga", Start: localTime("2025-07-07T09:00"), Instructors: "Alice"},
		{Title: "Pilates", Start: localTime("2025-06-30T09:00"), Instructors: "alice cooper"},
	}

	for _, req := range seed {
		if err := repo.Save(ctx, req, ""); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	all, _ := repo.List(ctx, event.ListEventsFilter{})

	// sorted by start, not insertion order
	if all[0].Title != "Pilates" || all[1].Title != "Yoga" || all[2].Title != "Spin" {
		t.Errorf("order = %s, %s, %s", all[0].Title, all[1].Title, all[2].Title)
	}

	instructor := "alice"
	filtered, _ := repo.List(ctx, event.ListEventsFilter{Instructor: &instructor})

	// case-insensitive substring over the whole field
	if len(filtered) != 2 {
		t.Fatalf("instructor filter matched %d rows, want 2", len(filtered))
	}

	from := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	upcoming, _ := repo.List(ctx, event.ListEventsFilter{From: &from})

	if len(upcoming) != 2 {
		t.Fatalf("from filter matched %d rows, want 2", len(upcoming))
	}

	for _, e := range upcoming {
		if e.Start.Before(from) {
			t.Errorf("row %d starts %v, before the lower bound", e.ID, e.Start)
		}
	}
}

func TestDeleteMissingRow(t *testing.T) {
	repo := NewEventsRepo()
	ctx := context.Background()

	if err := repo.Delete(ctx, 42); err != event.ErrDeleteFailed {
		t.Errorf("err = %v, want ErrDeleteFailed", err)
	}

	if err := repo.Save(ctx, event.SaveEventRequest{Title: "Yoga", Start: localTime("2025-07-07T09:00")}, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := repo.Delete(ctx, 1); err != nil {
		t.Errorf("Delete: %v", err)
	}

	if repo.Len() != 0 {
		t.Errorf("rows = %d after delete, want 0", repo.Len())
	}
}
