package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"quizduel/internal/domain"
)

type ScoreRepository struct {
	mock.Mock
}

func (m *ScoreRepository) Create(ctx context.Context, score *domain.Score) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *ScoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Score, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Score), args.Error(1)
}

func (m *ScoreRepository) Leaderboard(ctx context.Context, category string, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, category, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LeaderboardEntry), args.Error(1)
}
