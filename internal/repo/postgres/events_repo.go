package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thanhng-dev/classcal/internal/domain/event"
	"github.com/thanhng-dev/classcal/internal/observability"
)

type EventsRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewEventsRepo(pool *pgxpool.Pool, metrics *observability.Prom) *EventsRepo {
	return &EventsRepo{
		pool:    pool,
		metrics: metrics,
	}
}

func (r *EventsRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}

	return r.metrics.ObserveDB(op, fn)
}

func (r *EventsRepo) List(ctx context.Context, filter event.ListEventsFilter) ([]event.Event, error) {
	baseQuery := `SELECT id,
		title,
		start_date,
		end_date,
		event_type,
		instructors,
		location,
		details,
		created_by
	FROM calendar_events
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	// instructor substring match, case-insensitive
	if filter.Instructor != nil {
		conds = append(conds, fmt.Sprintf("instructors ILIKE $%d", argsPosition))
		args = append(args, "%"+*filter.Instructor+"%")
		argsPosition++
	}

	// lower bound on start; the widget always sends the visible range start
	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("start_date >= $%d", argsPosition))
		args = append(args, *filter.From)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY start_date ASC, id ASC"

	var output []event.Event

	err := r.observe("events.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]event.Event, 0)

		for rows.Next() {
			var e event.Event

			err = rows.Scan(&e.ID, &e.Title, &e.Start, &e.End, &e.EventType, &e.Instructors, &e.Location, &e.Details, &e.CreatedBy)

			if err != nil {
				return err
			}

			output = append(output, e)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// Save writes the expanded occurrences in one transaction, so a mid-batch
// failure never leaves a partial series behind. When the request carries an
// id, the first occurrence replaces that row; every other occurrence is an
// insert. created_by is stamped on every written row.
func (r *EventsRepo) Save(ctx context.Context, req event.SaveEventRequest, createdBy string) error {
	occurrences := req.Expand()

	return r.observe("events.save", func() error {
		tx, err := r.pool.Begin(ctx)

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		for i, occ := range occurrences {
			if i == 0 && req.IsUpdate() {
				// RowsAffected stays unchecked: the acknowledgement is keyed
				// on id presence, not on whether the row still exists.
				_, err = tx.Exec(ctx,
					`UPDATE calendar_events
						SET title = $2,
							start_date = $3,
							end_date = $4,
							event_type = $5,
							instructors = $6,
							location = $7,
							details = $8,
							created_by = $9
					WHERE id = $1`,
					*req.ID, req.Title, occ.Start, occ.End, req.EventType, req.Instructors, req.Location, req.Details, createdBy,
				)

				if err != nil {
					return err
				}

				if r.metrics != nil {
					r.metrics.OccurrencesWritten.WithLabelValues("update").Inc()
				}

				continue
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO calendar_events (title, start_date, end_date, event_type, instructors, location, details, created_by)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
				req.Title, occ.Start, occ.End, req.EventType, req.Instructors, req.Location, req.Details, createdBy,
			)

			if err != nil {
				return err
			}

			if r.metrics != nil {
				r.metrics.OccurrencesWritten.WithLabelValues("insert").Inc()
			}
		}

		return tx.Commit(ctx)
	})
}

func (r *EventsRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("events.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)

		if err != nil {
			return err
		}

		// "no row removed" and a storage failure surface the same way
		if tag.RowsAffected() == 0 {
			return event.ErrDeleteFailed
		}

		return nil
	})
}
