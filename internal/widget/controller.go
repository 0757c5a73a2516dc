package widget

import (
	"context"
	"log/slog"
	"time"

	"github.com/thanhng-dev/classcal/internal/domain/event"
)

type State int

const (
	StateIdle State = iota
	StatePopupOpen
	StateFormOpen
)

// EventSource is how the controller talks to the schedule service. The
// HTTP client implements it; tests script it.
type EventSource interface {
	Fetch(ctx context.Context, instructor string, from time.Time) ([]event.FeedItem, error)
	Save(ctx context.Context, req event.SaveEventRequest) (string, error)
	Delete(ctx context.Context, id int64) (string, error)
}

type Config struct {
	BaseURL  string
	Token    string
	LoggedIn bool
	Location *time.Location
}

// Controller holds the whole widget view model: the month grid, the
// fetched events, the popup/form state machine and the instructor
// filter. A UI toolkit binds one-way to it and calls the methods below
// in response to user input.
type Controller struct {
	cfg    Config
	clock  Clock
	source EventSource
	log    *slog.Logger

	grid   MonthGrid
	events []event.FeedItem

	state      State
	selected   *event.FeedItem
	form       FormState
	formError  string
	confirming bool

	instructor string
	message    string

	// OnFailure fires when a fetch cannot produce events at all, so the
	// host page can show its own error affordance.
	OnFailure func(error)
}

func NewController(cfg Config, source EventSource, clock Clock, log *slog.Logger) *Controller {
	if clock == nil {
		clock = SystemClock()
	}

	if log == nil {
		log = slog.Default()
	}

	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Controller{
		cfg:    cfg,
		clock:  clock,
		source: source,
		log:    log,
	}
}

// Open builds the current month with today's week promoted and loads the
// visible range.
func (c *Controller) Open(ctx context.Context) error {
	now := c.clock.Now().In(c.cfg.Location)

	c.grid = BuildMonthGrid(now.Year(), now.Month(), c.cfg.Location)
	c.grid.PromoteCurrentWeek(now)

	return c.refresh(ctx)
}

// ShowMonth navigates the grid. Months before the navigation floor are
// refused; the current month gets its week promotion back.
func (c *Controller) ShowMonth(ctx context.Context, year int, month time.Month) error {
	now := c.clock.Now().In(c.cfg.Location)
	floor := ValidRangeStart(now)

	target := time.Date(year, month, 1, 0, 0, 0, 0, c.cfg.Location)

	if target.Before(floor) {
		return nil
	}

	c.grid = BuildMonthGrid(year, month, c.cfg.Location)

	if year == now.Year() && month == now.Month() {
		c.grid.PromoteCurrentWeek(now)
	}

	return c.refresh(ctx)
}

func (c *Controller) refresh(ctx context.Context) error {
	// Hidden weeks still belong to the grid; the fetch bound must not
	// shrink when the current week is promoted.
	from := c.grid.Start()

	items, err := c.source.Fetch(ctx, c.instructor, from)

	if err != nil {
		c.log.Error("event fetch failed", "err", err)

		if c.OnFailure != nil {
			c.OnFailure(err)
		}

		return err
	}

	if len(items) == 0 {
		c.log.Warn("no events in visible range", "from", from)
	}

	c.events = items

	return nil
}

// DateClick opens a blank form for the clicked day. Visitors who are not
// logged in get nothing, matching the server's write gate.
func (c *Controller) DateClick(date time.Time) {
	if !c.cfg.LoggedIn {
		return
	}

	c.form = newCreateForm(date)
	c.formError = ""
	c.selected = nil
	c.state = StateFormOpen
}

// EventClick opens the read-only popup for the clicked event.
func (c *Controller) EventClick(id int64) {
	for i := range c.events {
		if c.events[i].ID == id {
			item := c.events[i]
			c.selected = &item
			c.state = StatePopupOpen

			return
		}
	}
}

func (c *Controller) ClosePopup() {
	c.selected = nil
	c.state = StateIdle
}

// Edit moves from the popup into the prefilled form. Only a logged-in
// user sees the affordance, so anonymous calls are dropped.
func (c *Controller) Edit() {
	if !c.cfg.LoggedIn || c.state != StatePopupOpen || c.selected == nil {
		return
	}

	c.form = newEditForm(*c.selected)
	c.formError = ""
	c.state = StateFormOpen
}

// CancelForm resets and closes the dialog, also covering click-outside.
func (c *Controller) CancelForm() {
	c.form = FormState{}
	c.formError = ""
	c.confirming = false
	c.selected = nil
	c.state = StateIdle
}

// Submit saves the form. On success the feed is refetched and the dialog
// closes; on failure the form stays open with the error attached.
func (c *Controller) Submit(ctx context.Context) {
	if c.state != StateFormOpen {
		return
	}

	req, err := c.form.request()

	if err != nil {
		c.formError = err.Error()
		return
	}

	message, err := c.source.Save(ctx, req)

	if err != nil {
		c.formError = err.Error()
		return
	}

	c.message = message

	_ = c.refresh(ctx)
	c.CancelForm()
}

// RequestDelete arms the confirmation step. Only an edit form has a
// delete affordance.
func (c *Controller) RequestDelete() {
	if c.state != StateFormOpen || !c.form.ShowDelete {
		return
	}

	c.confirming = true
}

func (c *Controller) CancelDelete() {
	c.confirming = false
}

// ConfirmDelete deletes the event behind the form. Failure keeps the
// form and the confirmation state untouched.
func (c *Controller) ConfirmDelete(ctx context.Context) {
	if !c.confirming || c.form.ID == nil {
		return
	}

	message, err := c.source.Delete(ctx, *c.form.ID)

	if err != nil {
		c.formError = err.Error()
		return
	}

	c.message = message

	_ = c.refresh(ctx)
	c.CancelForm()
}

// InstructorOptions lists the distinct instructors fields across the
// known events, in first-seen order. The whole field is one option;
// comma-separated co-teachers stay a single entry.
func (c *Controller) InstructorOptions() []string {
	seen := make(map[string]struct{})

	var options []string

	for _, item := range c.events {
		v := item.ExtendedProps.Instructors

		if v == "" {
			continue
		}

		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		options = append(options, v)
	}

	return options
}

// SelectInstructor narrows the feed to one instructors value and
// refetches. The empty string clears the filter.
func (c *Controller) SelectInstructor(ctx context.Context, instructor string) error {
	c.instructor = instructor

	return c.refresh(ctx)
}

// Boxes renders the fetched events as grid chips.
func (c *Controller) Boxes() []EventBox {
	return BuildEventBoxes(c.events)
}

func (c *Controller) Events() []event.FeedItem {
	return c.events
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Grid() MonthGrid {
	return c.grid
}

func (c *Controller) Form() FormState {
	return c.form
}

// SetForm writes edited field values back from the bound inputs.
func (c *Controller) SetForm(form FormState) {
	if c.state != StateFormOpen {
		return
	}

	// the dialog never flips between create and edit mid-flight
	form.ID = c.form.ID
	form.ShowDelete = c.form.ShowDelete

	c.form = form
}

func (c *Controller) FormError() string {
	return c.formError
}

func (c *Controller) Selected() *event.FeedItem {
	return c.selected
}

func (c *Controller) Message() string {
	return c.message
}

func (c *Controller) ConfirmingDelete() bool {
	return c.confirming
}
