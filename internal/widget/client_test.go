package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thanhng-dev/classcal/internal/domain/event"
)

func TestClientFetch(t *testing.T) {
	var gotQuery string
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/events" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Yoga","start":"2025-07-07T09:00:00","end":null,"extendedProps":{"instructors":"Alice","location":"","event_type":"fixed","details":""}}]`))
	}))

	defer srv.Close()

	client := NewClient(srv.URL, "token-123")

	from := time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC)
	items, err := client.Fetch(context.Background(), "Alice", from)

	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(items) != 1 || items[0].Title != "Yoga" {
		t.Fatalf("items = %+v", items)
	}

	if !strings.Contains(gotQuery, "instructor=Alice") {
		t.Errorf("query %q misses the instructor", gotQuery)
	}

	if !strings.Contains(gotQuery, "from=2025-07-07T00%3A00%3A00") {
		t.Errorf("query %q misses the from bound", gotQuery)
	}

	if gotAuth != "Bearer token-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestClientSaveAndDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/events":
			var req event.SaveEventRequest

			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode save payload: %v", err)
			}

			if req.Title != "Pilates" {
				t.Errorf("title = %q", req.Title)
			}

			_, _ = w.Write([]byte(`{"success":true,"message":"Event has been added"}`))

		case r.Method == http.MethodDelete && r.URL.Path == "/events/7":
			_, _ = w.Write([]byte(`{"success":true,"message":"Event has been deleted"}`))

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	defer srv.Close()

	client := NewClient(srv.URL, "token-123")

	start, _ := event.ParseLocalTime("2025-07-10T09:00")

	msg, err := client.Save(context.Background(), event.SaveEventRequest{Title: "Pilates", Start: start})

	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if msg != "Event has been added" {
		t.Errorf("save message = %q", msg)
	}

	msg, err = client.Delete(context.Background(), 7)

	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if msg != "Event has been deleted" {
		t.Errorf("delete message = %q", msg)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"delete_failed","message":"Cannot delete event"}}`))
	}))

	defer srv.Close()

	client := NewClient(srv.URL, "")

	_, err := client.Delete(context.Background(), 99)

	if err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(err.Error(), "Cannot delete event") {
		t.Errorf("err = %v", err)
	}
}
