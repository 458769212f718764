package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Session backs an access token. Revoking it makes every poll with that token fail
// with 401, which clients treat as a forced logout.
type Session struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	UserAgent *string    `db:"user_agent"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetActive(ctx context.Context, id uuid.UUID) (*Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, revokedBefore time.Time) (int64, error)
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, user_id, user_agent, expires_at, created_at, revoked_at`

func (r *sessionRepository) Create(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (id, user_id, user_agent, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		session.ID, session.UserID, session.UserAgent, session.ExpiresAt,
	).Scan(&session.CreatedAt)
}

// GetActive returns (nil, nil) for unknown, expired or revoked sessions.
func (r *sessionRepository) GetActive(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 AND revoked_at IS NULL AND expires_at > NOW()`

	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteExpired removes expired sessions and those revoked before revokedBefore.
func (r *sessionRepository) DeleteExpired(ctx context.Context, revokedBefore time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < NOW() OR revoked_at < $1`
	res, err := r.db.ExecContext(ctx, query, revokedBefore)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
