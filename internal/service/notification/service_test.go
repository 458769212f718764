package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quizduel/internal/domain"
	"quizduel/internal/mocks"
	"quizduel/internal/pkg/logger"
	"quizduel/internal/service/delivery"
)

func newTestService(notifRepo *mocks.NotificationRepository, userRepo *mocks.UserRepository, dispatcher delivery.Dispatcher) Service {
	svc := NewService(notifRepo, userRepo, dispatcher, "en", logger.Discard(), nil)
	svc.(*service).deliver = func(fn func()) { fn() }
	return svc
}

func TestService_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and dispatches", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		userRepo := new(mocks.UserRepository)
		dispatcher := new(mocks.Dispatcher)
		svc := newTestService(notifRepo, userRepo, dispatcher)

		recipient := &domain.User{ID: uuid.New(), Username: "bob"}
		from := &domain.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}
		challengeID := uuid.New()

		userRepo.On("GetByID", ctx, recipient.ID).Return(recipient, nil).Once()
		userRepo.On("GetByID", ctx, from.ID).Return(from, nil).Once()
		notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == recipient.ID &&
				n.Type == domain.NotifChallengeAccepted &&
				n.Title == "Challenge Accepted" &&
				n.Message == "accepted your challenge!"
		})).Return(nil).Once()
		dispatcher.On("Dispatch", mock.Anything, recipient, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.FromUser != nil && n.FromUser.Username == "alice"
		})).Return(nil).Once()

		notif, err := svc.Append(ctx, domain.AppendNotificationInput{
			Recipient: recipient.ID,
			Type:      domain.NotifChallengeAccepted,
			FromUser:  &from.ID,
			Payload:   domain.ChallengePayload{ChallengeID: challengeID},
		})

		require.NoError(t, err)
		payload, ok := notif.ChallengeData()
		require.True(t, ok)
		assert.Equal(t, challengeID, payload.ChallengeID)
		assert.Empty(t, notif.FromUser.Email)
		notifRepo.AssertExpectations(t)
		userRepo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("explicit message wins over catalog", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		userRepo := new(mocks.UserRepository)
		svc := newTestService(notifRepo, userRepo, nil)

		recipient := &domain.User{ID: uuid.New()}
		userRepo.On("GetByID", ctx, recipient.ID).Return(recipient, nil).Once()
		notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Message == "challenged you to a Science quiz!" && n.Title == "New Challenge"
		})).Return(nil).Once()

		_, err := svc.Append(ctx, domain.AppendNotificationInput{
			Recipient: recipient.ID,
			Type:      domain.NotifChallengeReceived,
			Message:   "challenged you to a Science quiz!",
		})

		require.NoError(t, err)
		notifRepo.AssertExpectations(t)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		userRepo := new(mocks.UserRepository)
		svc := newTestService(notifRepo, userRepo, new(mocks.Dispatcher))

		id := uuid.New()
		userRepo.On("GetByID", ctx, id).Return(nil, nil).Once()

		notif, err := svc.Append(ctx, domain.AppendNotificationInput{Recipient: id, Type: domain.NotifFriendRequest})

		assert.Nil(t, notif)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("delivery failure does not fail append", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		userRepo := new(mocks.UserRepository)
		dispatcher := new(mocks.Dispatcher)
		svc := newTestService(notifRepo, userRepo, dispatcher)

		recipient := &domain.User{ID: uuid.New()}
		userRepo.On("GetByID", ctx, recipient.ID).Return(recipient, nil).Once()
		notifRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		dispatcher.On("Dispatch", mock.Anything, recipient, mock.Anything).
			Return(domain.ErrDeliveryFailure).Once()

		notif, err := svc.Append(ctx, domain.AppendNotificationInput{Recipient: recipient.ID, Type: domain.NotifFriendRequest})

		require.NoError(t, err)
		assert.NotNil(t, notif)
		dispatcher.AssertExpectations(t)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		userRepo := new(mocks.UserRepository)
		dispatcher := new(mocks.Dispatcher)
		svc := newTestService(notifRepo, userRepo, dispatcher)

		recipient := &domain.User{ID: uuid.New()}
		userRepo.On("GetByID", ctx, recipient.ID).Return(recipient, nil).Once()
		notifRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		_, err := svc.Append(ctx, domain.AppendNotificationInput{Recipient: recipient.ID, Type: domain.NotifFriendRequest})

		assert.Error(t, err)
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ListForUser(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	svc := newTestService(notifRepo, new(mocks.UserRepository), nil)

	userID := uuid.New()
	newest := domain.Notification{ID: uuid.New(), UserID: userID, Data: json.RawMessage(`{}`)}
	oldest := domain.Notification{ID: uuid.New(), UserID: userID}
	notifRepo.On("ListByUser", ctx, userID, false, domain.Unpaginated()).
		Return([]domain.Notification{newest, oldest}, int64(2), nil).Once()

	list, err := svc.ListForUser(ctx, userID)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newest.ID, list[0].ID)
	notifRepo.AssertExpectations(t)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	svc := newTestService(notifRepo, new(mocks.UserRepository), nil)

	userID := uuid.New()
	params := domain.PaginationParams{Page: 2, PageSize: 1}
	notifRepo.On("ListByUser", ctx, userID, true, params).
		Return([]domain.Notification{{ID: uuid.New()}}, int64(3), nil).Once()

	resp, err := svc.List(ctx, userID, true, params)

	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalPages)
	assert.True(t, resp.HasNext)
	assert.True(t, resp.HasPrev)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("owner deletes", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		svc := newTestService(notifRepo, new(mocks.UserRepository), nil)

		n := &domain.Notification{ID: uuid.New(), UserID: owner}
		notifRepo.On("GetByID", ctx, n.ID).Return(n, nil).Once()
		notifRepo.On("Delete", ctx, n.ID).Return(true, nil).Once()

		assert.NoError(t, svc.Delete(ctx, n.ID, owner))
		notifRepo.AssertExpectations(t)
	})

	t.Run("other user is unauthorized", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		svc := newTestService(notifRepo, new(mocks.UserRepository), nil)

		n := &domain.Notification{ID: uuid.New(), UserID: owner}
		notifRepo.On("GetByID", ctx, n.ID).Return(n, nil).Once()

		err := svc.Delete(ctx, n.ID, uuid.New())

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		notifRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("already deleted is not found", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		svc := newTestService(notifRepo, new(mocks.UserRepository), nil)

		id := uuid.New()
		notifRepo.On("GetByID", ctx, id).Return(nil, domain.ErrNotificationNotFound).Once()

		assert.ErrorIs(t, svc.Delete(ctx, id, owner), domain.ErrNotFound)
	})

	t.Run("concurrent delete is not found", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		svc := newTestService(notifRepo, new(mocks.UserRepository), nil)

		n := &domain.Notification{ID: uuid.New(), UserID: owner}
		notifRepo.On("GetByID", ctx, n.ID).Return(n, nil).Once()
		notifRepo.On("Delete", ctx, n.ID).Return(false, nil).Once()

		assert.ErrorIs(t, svc.Delete(ctx, n.ID, owner), domain.ErrNotFound)
	})
}

func TestService_MarkRead(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("marks unread", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		svc := newTestService(notifRepo, new(mocks.UserRepository), nil)

		n := &domain.Notification{ID: uuid.New(), UserID: owner}
		notifRepo.On("GetByID", ctx, n.ID).Return(n, nil).Once()
		notifRepo.On("MarkAsRead", ctx, n.ID).Return(nil).Once()

		assert.NoError(t, svc.MarkRead(ctx, n.ID, owner))
		notifRepo.AssertExpectations(t)
	})

	t.Run("already read is a no-op", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		svc := newTestService(notifRepo, new(mocks.UserRepository), nil)

		n := &domain.Notification{ID: uuid.New(), UserID: owner, IsRead: true}
		notifRepo.On("GetByID", ctx, n.ID).Return(n, nil).Once()

		assert.NoError(t, svc.MarkRead(ctx, n.ID, owner))
		notifRepo.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
	})

	t.Run("other user is unauthorized", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		svc := newTestService(notifRepo, new(mocks.UserRepository), nil)

		n := &domain.Notification{ID: uuid.New(), UserID: owner}
		notifRepo.On("GetByID", ctx, n.ID).Return(n, nil).Once()

		assert.ErrorIs(t, svc.MarkRead(ctx, n.ID, uuid.New()), domain.ErrUnauthorized)
	})
}

func TestService_Counters(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	svc := newTestService(notifRepo, new(mocks.UserRepository), nil)
	userID := uuid.New()

	notifRepo.On("CountUnread", ctx, userID).Return(int64(4), nil).Once()
	notifRepo.On("MarkAllAsRead", ctx, userID).Return(nil).Once()

	count, err := svc.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, svc.MarkAllRead(ctx, userID))
	notifRepo.AssertExpectations(t)
}
