package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thanhng-dev/classcal/internal/auth"
	"github.com/thanhng-dev/classcal/internal/cache"
	"github.com/thanhng-dev/classcal/internal/domain/event"
	"github.com/thanhng-dev/classcal/internal/http/middlewares"
)

type savedCall struct {
	req       event.SaveEventRequest
	createdBy string
}

type fakeEventsStore struct {
	events    []event.Event
	listErr   error
	saveErr   error
	deleteErr error

	listCalls int
	filters   []event.ListEventsFilter
	saves     []savedCall
	deletes   []int64
}

func (f *fakeEventsStore) List(_ context.Context, filter event.ListEventsFilter) ([]event.Event, error) {
	f.listCalls++
	f.filters = append(f.filters, filter)

	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.events, nil
}

func (f *fakeEventsStore) Save(_ context.Context, req event.SaveEventRequest, createdBy string) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.saves = append(f.saves, savedCall{req: req, createdBy: createdBy})

	return nil
}

func (f *fakeEventsStore) Delete(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}

	f.deletes = append(f.deletes, id)

	return nil
}

type fakeVerifier struct{}

func (fakeVerifier) VerifyAccess(token string) (*auth.Claims, error) {
	if token != "good-token" {
		return nil, errors.New("bad token")
	}

	return &auth.Claims{UserID: "u-1", Email: "admin@example.com", Role: "admin"}, nil
}

func newEventsRouter(store EventsStore, feedCache *cache.Cache[[]event.FeedItem]) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()

	h := NewEventsHandler(store)

	if feedCache != nil {
		h = NewEventsHandlerWithCache(store, feedCache)
	}

	authMW := middlewares.NewAuthMiddleware(fakeVerifier{})

	r.GET("/events", h.ListEvents)

	protected := r.Group("/")
	protected.Use(authMW.RequireAuth())
	protected.POST("/events", h.SaveEvent)
	protected.DELETE("/events/:id", h.DeleteEvent)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func testEvent(id int64, title string, start time.Time) event.Event {
	return event.Event{
		ID:          id,
		Title:       title,
		Start:       start,
		EventType:   event.TypeFixed,
		Instructors: "Alice",
	}
}

func TestListEventsFeedShape(t *testing.T) {
	start := time.Date(2025, time.July, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	first := testEvent(1, "Yoga", start)
	first.End = &end

	second := testEvent(2, "Spin", start.AddDate(0, 0, 1))
	second.EventType = event.TypeTemporary

	store := &fakeEventsStore{events: []event.Event{first, second}}
	r := newEventsRouter(store, nil)

	w := doJSON(t, r, http.MethodGet, "/events", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var items []map[string]any

	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("feed is not a bare array: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	if items[0]["title"] != "Yoga" || items[0]["start"] != "2025-07-07T09:00:00" {
		t.Errorf("first item = %v", items[0])
	}

	if items[0]["end"] != "2025-07-07T10:00:00" {
		t.Errorf("end = %v", items[0]["end"])
	}

	if items[1]["end"] != nil {
		t.Errorf("missing end must serialize as null, got %v", items[1]["end"])
	}

	props, ok := items[0]["extendedProps"].(map[string]any)

	if !ok {
		t.Fatalf("extendedProps missing: %v", items[0])
	}

	if props["event_type"] != "fixed" || props["instructors"] != "Alice" {
		t.Errorf("extendedProps = %v", props)
	}
}

func TestListEventsFilters(t *testing.T) {
	store := &fakeEventsStore{}
	r := newEventsRouter(store, nil)

	w := doJSON(t, r, http.MethodGet, "/events?instructor=ali&from=2025-07-01T00:00:00", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if len(store.filters) != 1 {
		t.Fatalf("filters = %d, want 1", len(store.filters))
	}

	filter := store.filters[0]

	if filter.Instructor == nil || *filter.Instructor != "ali" {
		t.Errorf("instructor filter = %v", filter.Instructor)
	}

	want := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	if filter.From == nil || !filter.From.Equal(want) {
		t.Errorf("from filter = %v, want %v", filter.From, want)
	}
}

func TestListEventsRejectsBadFrom(t *testing.T) {
	store := &fakeEventsStore{}
	r := newEventsRouter(store, nil)

	w := doJSON(t, r, http.MethodGet, "/events?from=next-tuesday", "", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if store.listCalls != 0 {
		t.Error("bad from parameter still hit the store")
	}
}

func TestListEventsServesFromCache(t *testing.T) {
	store := &fakeEventsStore{events: []event.Event{testEvent(1, "Yoga", time.Date(2025, time.July, 7, 9, 0, 0, 0, time.UTC))}}
	r := newEventsRouter(store, cache.New[[]event.FeedItem](time.Minute))

	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodGet, "/events", "", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}

	if store.listCalls != 1 {
		t.Errorf("listCalls = %d, second hit should come from cache", store.listCalls)
	}
}

func TestListEventsETagRoundTrip(t *testing.T) {
	store := &fakeEventsStore{events: []event.Event{testEvent(1, "Yoga", time.Date(2025, time.July, 7, 9, 0, 0, 0, time.UTC))}}
	r := newEventsRouter(store, nil)

	first := doJSON(t, r, http.MethodGet, "/events", "", "")

	etag := first.Header().Get("ETag")

	if etag == "" {
		t.Fatal("no ETag on feed response")
	}

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("If-None-Match", etag)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}

func TestSaveEventCreateAndUpdateMessages(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantUpdate  bool
	}{
		{
			name:        "create",
			body:        `{"title":"Pilates","start":"2025-07-10T09:00","num_recurrences":3}`,
			wantMessage: "Event has been added",
		},
		{
			name:        "update",
			body:        `{"id":5,"title":"Pilates","start":"2025-07-10T09:00"}`,
			wantMessage: "Event has been updated",
			wantUpdate:  true,
		},
		{
			// id zero means "no id" to the form, so it still creates
			name:        "zero id creates",
			body:        `{"id":0,"title":"Pilates","start":"2025-07-10T09:00"}`,
			wantMessage: "Event has been added",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeEventsStore{}
			r := newEventsRouter(store, nil)

			w := doJSON(t, r, http.MethodPost, "/events", tc.body, "good-token")

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}

			var resp struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}

			if !resp.Success || resp.Message != tc.wantMessage {
				t.Errorf("response = %+v, want message %q", resp, tc.wantMessage)
			}

			if len(store.saves) != 1 {
				t.Fatalf("saves = %d, want 1", len(store.saves))
			}

			saved := store.saves[0]

			if saved.createdBy != "u-1" {
				t.Errorf("createdBy = %q, want the authenticated user", saved.createdBy)
			}

			if saved.req.IsUpdate() != tc.wantUpdate {
				t.Errorf("IsUpdate = %v, want %v", saved.req.IsUpdate(), tc.wantUpdate)
			}
		})
	}
}

func TestSaveEventMissingTitle(t *testing.T) {
	store := &fakeEventsStore{}
	r := newEventsRouter(store, nil)

	w := doJSON(t, r, http.MethodPost, "/events", `{"start":"2025-07-10T09:00"}`, "good-token")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if len(store.saves) != 0 {
		t.Error("invalid payload still reached the store")
	}
}

func TestSaveEventRequiresAuth(t *testing.T) {
	store := &fakeEventsStore{}
	r := newEventsRouter(store, nil)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "bad token", token: "forged"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/events", `{"title":"Pilates","start":"2025-07-10T09:00"}`, tc.token)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}

	if len(store.saves) != 0 {
		t.Error("unauthorized request reached the store")
	}
}

func TestSaveEventInvalidatesFeedCache(t *testing.T) {
	store := &fakeEventsStore{events: []event.Event{testEvent(1, "Yoga", time.Date(2025, time.July, 7, 9, 0, 0, 0, time.UTC))}}
	r := newEventsRouter(store, cache.New[[]event.FeedItem](time.Minute))

	doJSON(t, r, http.MethodGet, "/events", "", "")
	doJSON(t, r, http.MethodPost, "/events", `{"title":"Pilates","start":"2025-07-10T09:00"}`, "good-token")
	doJSON(t, r, http.MethodGet, "/events", "", "")

	if store.listCalls != 2 {
		t.Errorf("listCalls = %d, save must invalidate the cached feed", store.listCalls)
	}
}

func TestDeleteEvent(t *testing.T) {
	store := &fakeEventsStore{}
	r := newEventsRouter(store, nil)

	w := doJSON(t, r, http.MethodDelete, "/events/5", "", "good-token")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !resp.Success || resp.Message != "Event has been deleted" {
		t.Errorf("response = %+v", resp)
	}

	if len(store.deletes) != 1 || store.deletes[0] != 5 {
		t.Errorf("deletes = %v, want [5]", store.deletes)
	}
}

func TestDeleteEventMissingRow(t *testing.T) {
	store := &fakeEventsStore{deleteErr: event.ErrDeleteFailed}
	r := newEventsRouter(store, nil)

	w := doJSON(t, r, http.MethodDelete, "/events/99", "", "good-token")

	// a miss and a storage failure look the same to the caller
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var resp struct {
		Error APIError `json:"error"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Error.Code != "delete_failed" || resp.Error.Message != "Cannot delete event" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestDeleteEventBadID(t *testing.T) {
	store := &fakeEventsStore{}
	r := newEventsRouter(store, nil)

	w := doJSON(t, r, http.MethodDelete, "/events/abc", "", "good-token")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if len(store.deletes) != 0 {
		t.Error("bad id still reached the store")
	}
}
