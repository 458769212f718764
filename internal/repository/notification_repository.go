package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quizduel/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

type notificationRow struct {
	domain.Notification
	FromUsername *string `db:"from_username"`
}

func (row notificationRow) toDomain() domain.Notification {
	n := row.Notification
	if n.FromUserID != nil && row.FromUsername != nil {
		n.FromUser = &domain.UserSummary{ID: *n.FromUserID, Username: *row.FromUsername}
	}
	return n
}

const notificationSelect = `
	SELECT n.id, n.user_id, n.from_user_id, n.type, n.title, n.message, n.data,
		n.is_read, n.read_at, n.created_at, u.username AS from_username
	FROM notifications n
	LEFT JOIN users u ON u.id = n.from_user_id`

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, from_user_id, type, title, message, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.UserID, notif.FromUserID, notif.Type, notif.Title, notif.Message, notif.Data,
	).Scan(&notif.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var row notificationRow
	err := r.db.GetContext(ctx, &row, notificationSelect+` WHERE n.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	n := row.toDomain()
	return &n, nil
}

// ListByUser returns the inbox newest first. A zero PageSize returns the whole inbox.
func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	where := ` WHERE n.user_id = $1`
	if unreadOnly {
		where += ` AND n.is_read = false`
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM notifications n` + where
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	var rows []notificationRow
	query := notificationSelect + where + ` ORDER BY n.created_at DESC, n.id DESC`
	var err error
	if params.Unbounded() {
		err = r.db.SelectContext(ctx, &rows, query, userID)
	} else {
		err = r.db.SelectContext(ctx, &rows, query+` LIMIT $2 OFFSET $3`, userID, params.PageSize, params.Offset())
	}
	if err != nil {
		return nil, 0, err
	}

	notifications := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, row.toDomain())
	}
	return notifications, total, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, read_at = NOW() WHERE id = $1 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, read_at = NOW() WHERE user_id = $1 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}
