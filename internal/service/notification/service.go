package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
	"quizduel/internal/pkg/i18n"
	"quizduel/internal/pkg/metrics"
	"quizduel/internal/repository"
	"quizduel/internal/service/delivery"
)

type Service interface {
	Append(ctx context.Context, input domain.AppendNotificationInput) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	Delete(ctx context.Context, id, requester uuid.UUID) error
	MarkRead(ctx context.Context, id, requester uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	notifRepo  repository.NotificationRepository
	userRepo   repository.UserRepository
	dispatcher delivery.Dispatcher
	locale     string
	log        *logrus.Entry
	metrics    *metrics.Metrics

	// deliver runs fan-out; tests replace it to run synchronously.
	deliver func(fn func())
}

func NewService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	dispatcher delivery.Dispatcher,
	locale string,
	log *logrus.Entry,
	m *metrics.Metrics,
) Service {
	if locale == "" {
		locale = i18n.DefaultLocale
	}
	return &service{
		notifRepo:  notifRepo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
		locale:     locale,
		log:        log,
		metrics:    m,
		deliver:    func(fn func()) { go fn() },
	}
}

// Append stores a notification in the recipient's inbox and hands it to the delivery
// channels in the background. Delivery never affects the result.
func (s *service) Append(ctx context.Context, input domain.AppendNotificationInput) (*domain.Notification, error) {
	recipient, err := s.userRepo.GetByID(ctx, input.Recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient == nil {
		return nil, domain.ErrUserNotFound
	}

	var data json.RawMessage
	if input.Payload != nil {
		data, err = json.Marshal(input.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
	}

	message := input.Message
	if message == "" {
		message = i18n.Format(s.locale, string(input.Type)+".message", input.MessageArgs...)
	}

	notif := &domain.Notification{
		ID:         uuid.New(),
		UserID:     recipient.ID,
		FromUserID: input.FromUser,
		Type:       input.Type,
		Title:      i18n.Translate(s.locale, string(input.Type)+".title"),
		Message:    message,
		Data:       data,
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	s.metrics.NotificationAppended(string(notif.Type))

	if input.FromUser != nil {
		if from, err := s.userRepo.GetByID(ctx, *input.FromUser); err == nil && from != nil {
			summary := from.Summary()
			summary.Email = ""
			notif.FromUser = &summary
		}
	}

	if s.dispatcher != nil {
		delivered := *notif
		s.deliver(func() {
			// Errors are logged by the dispatcher.
			_ = s.dispatcher.Dispatch(context.Background(), recipient, &delivered)
		})
	}

	return notif, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	notifications, _, err := s.notifRepo.ListByUser(ctx, userID, false, domain.Unpaginated())
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return notifications, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params, total), nil
}

// Delete removes a notification from its owner's inbox. A notification that is already
// gone yields ErrNotificationNotFound, which callers treat as done.
func (s *service) Delete(ctx context.Context, id, requester uuid.UUID) error {
	if _, err := s.owned(ctx, id, requester); err != nil {
		return err
	}

	deleted, err := s.notifRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (s *service) MarkRead(ctx context.Context, id, requester uuid.UUID) error {
	notif, err := s.owned(ctx, id, requester)
	if err != nil {
		return err
	}
	if notif.IsRead {
		return nil
	}
	return s.notifRepo.MarkAsRead(ctx, id)
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

func (s *service) owned(ctx context.Context, id, requester uuid.UUID) (*domain.Notification, error) {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notif.UserID != requester {
		return nil, domain.ErrNotRecipient
	}
	return notif, nil
}
