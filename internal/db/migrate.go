package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// One flat events table plus the auth tables. Event timestamps are
// zone-less on purpose; the calendar runs on wall-clock time.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS calendar_events (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP,
		event_type TEXT NOT NULL DEFAULT 'fixed',
		instructors TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '',
		created_by TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_events_start ON calendar_events (start_date)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		token_hash TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		replaced_by UUID,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
