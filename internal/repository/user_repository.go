package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quizduel/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	Search(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]domain.UserSummary, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
	UpdatePushToken(ctx context.Context, id uuid.UUID, token string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

// GetByID returns (nil, nil) when no user matches.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE LOWER(email) = LOWER($1)`

	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($2))`
	err := r.db.GetContext(ctx, &exists, query, email, username)
	return exists, err
}

func (r *userRepository) Search(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]domain.UserSummary, error) {
	users := []domain.UserSummary{}
	q := `
		SELECT id, username, email, avatar_url FROM users
		WHERE username ILIKE '%' || $1 || '%' AND id <> $2
		ORDER BY username
		LIMIT $3`

	err := r.db.SelectContext(ctx, &users, q, query, excludeID, limit)
	return users, err
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	return r.update(ctx, `UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1`, id, avatarURL)
}

func (r *userRepository) UpdatePushToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.update(ctx, `UPDATE users SET push_token = $2, updated_at = NOW() WHERE id = $1`, id, token)
}

func (r *userRepository) update(ctx context.Context, query string, id uuid.UUID, value string) error {
	res, err := r.db.ExecContext(ctx, query, id, value)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
