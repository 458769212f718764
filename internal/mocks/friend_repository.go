package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"quizduel/internal/domain"
)

type FriendRepository struct {
	mock.Mock
}

func (m *FriendRepository) CreateRequest(ctx context.Context, from, to uuid.UUID) (bool, error) {
	args := m.Called(ctx, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepository) HasRequest(ctx context.Context, from, to uuid.UUID) (bool, error) {
	args := m.Called(ctx, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepository) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepository) AcceptRequest(ctx context.Context, from, to uuid.UUID) error {
	args := m.Called(ctx, from, to)
	return args.Error(0)
}

func (m *FriendRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.UserSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserSummary), args.Error(1)
}
