package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshToken is one stored grant. Only the HMAC fingerprint of the raw
// token is persisted (column token_hash); the token itself lives in the
// client's cookie.
type RefreshToken struct {
	ID          string
	UserID      string
	Fingerprint string
	ExpiresAt   time.Time
	RevokedAt   *time.Time
	ReplacedBy  *string
	CreatedAt   time.Time
}

type RefreshTokensRepo struct {
	pool *pgxpool.Pool
}

func NewRefreshTokensRepo(pool *pgxpool.Pool) *RefreshTokensRepo {
	return &RefreshTokensRepo{pool: pool}
}

// Rotation must run inside a transaction so the old grant cannot be
// presented twice.
func (r *RefreshTokensRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

func (r *RefreshTokensRepo) Create(ctx context.Context, tx pgx.Tx, t RefreshToken) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.UserID, t.Fingerprint, t.ExpiresAt, t.RevokedAt, t.ReplacedBy, t.CreatedAt,
	)

	return err
}

// GetForUpdate locks the grant row for the duration of the transaction.
func (r *RefreshTokensRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (RefreshToken, error) {
	var t RefreshToken

	err := tx.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at
		FROM refresh_tokens
		WHERE id = $1
		FOR UPDATE`,
		id,
	).Scan(&t.ID, &t.UserID, &t.Fingerprint, &t.ExpiresAt, &t.RevokedAt, &t.ReplacedBy, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshToken{}, ErrRefreshTokenNotFound
		}

		return RefreshToken{}, err
	}

	return t, nil
}

func (r *RefreshTokensRepo) Revoke(ctx context.Context, tx pgx.Tx, id string, replacedBy *string) error {
	_, err := tx.Exec(ctx,
		`UPDATE refresh_tokens
		SET revoked_at = NOW(), replaced_by = $2
		WHERE id = $1`,
		id, replacedBy,
	)

	return err
}

func (r *RefreshTokensRepo) RevokeAllForUser(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx,
		`UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL`,
		userID,
	)

	return err
}
