package social

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
	"quizduel/internal/repository"
	"quizduel/internal/service/notification"
)

const searchLimit = 20

type Service interface {
	Search(ctx context.Context, query string, requester uuid.UUID) ([]domain.UserSummary, error)
	SendFriendRequest(ctx context.Context, from, to uuid.UUID) error
	AcceptFriendRequest(ctx context.Context, requester, actor uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.UserSummary, error)
}

type service struct {
	userRepo   repository.UserRepository
	friendRepo repository.FriendRepository
	notifSvc   notification.Service
	log        *logrus.Entry
}

func NewService(userRepo repository.UserRepository, friendRepo repository.FriendRepository, notifSvc notification.Service, log *logrus.Entry) Service {
	return &service{userRepo: userRepo, friendRepo: friendRepo, notifSvc: notifSvc, log: log}
}

func (s *service) Search(ctx context.Context, query string, requester uuid.UUID) ([]domain.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.UserSummary{}, nil
	}
	// LIKE wildcards in the query are matched literally.
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return s.userRepo.Search(ctx, escaped, requester, searchLimit)
}

func (s *service) SendFriendRequest(ctx context.Context, from, to uuid.UUID) error {
	if from == to {
		return domain.ErrSelfFriendRequest
	}

	target, err := s.userRepo.GetByID(ctx, to)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrUserNotFound
	}

	friends, err := s.friendRepo.AreFriends(ctx, from, to)
	if err != nil {
		return err
	}
	if friends {
		return domain.ErrAlreadyFriends
	}

	created, err := s.friendRepo.CreateRequest(ctx, from, to)
	if err != nil {
		return err
	}
	if !created {
		return domain.ErrFriendRequestExists
	}

	if _, err := s.notifSvc.Append(ctx, domain.AppendNotificationInput{
		Recipient: to,
		Type:      domain.NotifFriendRequest,
		FromUser:  &from,
		Payload:   map[string]string{"userId": from.String()},
	}); err != nil {
		s.log.WithError(err).WithField("recipient", to).Error("failed to append friend request notification")
	}

	return nil
}

// AcceptFriendRequest accepts the request requester sent to actor.
func (s *service) AcceptFriendRequest(ctx context.Context, requester, actor uuid.UUID) error {
	err := s.friendRepo.AcceptRequest(ctx, requester, actor)
	if err == domain.ErrNotFound {
		return domain.ErrFriendRequestMissing
	}
	return err
}

func (s *service) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.UserSummary, error) {
	return s.friendRepo.ListFriends(ctx, userID)
}
