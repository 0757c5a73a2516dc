package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thanhng-dev/classcal/internal/cache"
	"github.com/thanhng-dev/classcal/internal/domain/event"
	"github.com/thanhng-dev/classcal/internal/http/middlewares"
	"github.com/thanhng-dev/classcal/internal/utils"
)

type EventsStore interface {
	List(ctx context.Context, filter event.ListEventsFilter) ([]event.Event, error)
	Save(ctx context.Context, req event.SaveEventRequest, createdBy string) error
	Delete(ctx context.Context, id int64) error
}

type EventsHandler struct {
	store     EventsStore
	feedCache *cache.Cache[[]event.FeedItem]
}

func NewEventsHandler(store EventsStore) *EventsHandler {
	return &EventsHandler{store: store}
}

func NewEventsHandlerWithCache(store EventsStore, c *cache.Cache[[]event.FeedItem]) *EventsHandler {
	return &EventsHandler{store: store, feedCache: c}
}

// ListEvents serves the calendar feed: a bare array of feed items sorted by
// start, optionally narrowed to an instructor substring and a lower start
// bound. Open to anyone.
func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	var filter event.ListEventsFilter

	if v := ctx.Query("instructor"); v != "" {
		filter.Instructor = &v
	}

	if v := ctx.Query("from"); v != "" {
		lt, err := event.ParseLocalTime(v)

		if err != nil {
			RespondBadRequest(ctx, "Invalid from parameter", gin.H{"reason": err.Error()})
			return
		}

		from := lt.Time()
		filter.From = &from
	}

	key := utils.BuildFeedCacheKey(filter.Instructor, filter.From)

	if h.feedCache != nil {
		if items, ok := h.feedCache.Get(key); ok {
			RespondJSONWithETag(ctx, http.StatusOK, items)
			return
		}
	}

	events, err := h.store.List(ctx.Request.Context(), filter)

	if err != nil {
		RespondInternal(ctx, "Could not list events")
		return
	}

	items := event.FeedItems(events)

	if h.feedCache != nil {
		h.feedCache.Set(key, items)
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

// SaveEvent handles both create and update. A present id marks the first
// occurrence as an update of that row; recurrence siblings are always
// inserts. The acknowledgement message is keyed on id presence alone.
func (h *EventsHandler) SaveEvent(ctx *gin.Context) {
	var req event.SaveEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.store.Save(cctx, req, userID)

	if err != nil {
		RespondInternal(ctx, "Could not save event")
		return
	}

	h.invalidateFeed()

	message := "Event has been added"
	if req.IsUpdate() {
		message = "Event has been updated"
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// DeleteEvent removes one row. A miss and a storage failure are
// indistinguishable to the caller: both come back as delete_failed.
func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondBadRequest(ctx, "Invalid event id", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	err = h.store.Delete(cctx, id)

	if err != nil {
		RespondError(ctx, http.StatusInternalServerError, "delete_failed", "Cannot delete event", nil)
		return
	}

	h.invalidateFeed()

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Event has been deleted",
	})
}

func (h *EventsHandler) invalidateFeed() {
	if h.feedCache != nil {
		h.feedCache.Clear()
	}
}
