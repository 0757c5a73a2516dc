package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/thanhng-dev/classcal/internal/domain/event"
)

// EventsRepo is an in-memory stand-in for the postgres store with the same
// save/list/delete semantics.
type EventsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]event.Event
}

func NewEventsRepo() *EventsRepo {
	return &EventsRepo{
		nextID: 1,
		items:  make(map[int64]event.Event),
	}
}

func (r *EventsRepo) List(ctx context.Context, filter event.ListEventsFilter) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, len(r.items))

	for _, e := range r.items {
		if filter.Instructor != nil &&
			!strings.Contains(strings.ToLower(e.Instructors), strings.ToLower(*filter.Instructor)) {
			continue
		}

		if filter.From != nil && e.Start.Before(*filter.From) {
			continue
		}

		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})

	return out, nil
}

func (r *EventsRepo) Save(ctx context.Context, req event.SaveEventRequest, createdBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, occ := range req.Expand() {
		e := event.Event{
			Title:       req.Title,
			Start:       occ.Start,
			End:         occ.End,
			EventType:   req.EventType,
			Instructors: req.Instructors,
			Location:    req.Location,
			Details:     req.Details,
		}

		if createdBy != "" {
			by := createdBy
			e.CreatedBy = &by
		}

		if i == 0 && req.IsUpdate() {
			// update of a missing id is a silent no-op
			if _, ok := r.items[*req.ID]; ok {
				e.ID = *req.ID
				r.items[e.ID] = e
			}
			continue
		}

		e.ID = r.nextID
		r.nextID++
		r.items[e.ID] = e
	}

	return nil
}

func (r *EventsRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return event.ErrDeleteFailed
	}

	delete(r.items, id)
	return nil
}

// Len reports the current row count; test helper.
func (r *EventsRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
