package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quizduel/internal/domain"
)

type FriendRepository interface {
	CreateRequest(ctx context.Context, from, to uuid.UUID) (bool, error)
	HasRequest(ctx context.Context, from, to uuid.UUID) (bool, error)
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
	AcceptRequest(ctx context.Context, from, to uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.UserSummary, error)
}

type friendRepository struct {
	db *sqlx.DB
}

func NewFriendRepository(db *sqlx.DB) FriendRepository {
	return &friendRepository{db: db}
}

// CreateRequest reports false when the same request already exists.
func (r *friendRepository) CreateRequest(ctx context.Context, from, to uuid.UUID) (bool, error) {
	query := `
		INSERT INTO friend_requests (from_user_id, to_user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, from, to)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *friendRepository) HasRequest(ctx context.Context, from, to uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM friend_requests WHERE from_user_id = $1 AND to_user_id = $2)`
	err := r.db.GetContext(ctx, &exists, query, from, to)
	return exists, err
}

func (r *friendRepository) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)`
	err := r.db.GetContext(ctx, &exists, query, a, b)
	return exists, err
}

func (r *friendRepository) AcceptRequest(ctx context.Context, from, to uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM friend_requests WHERE from_user_id = $1 AND to_user_id = $2`, from, to)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrNotFound
	}

	insert := `
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, insert, from, to); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *friendRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.UserSummary, error) {
	friends := []domain.UserSummary{}
	query := `
		SELECT u.id, u.username, u.email, u.avatar_url
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.username`

	err := r.db.SelectContext(ctx, &friends, query, userID)
	return friends, err
}
