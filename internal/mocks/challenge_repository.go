package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"quizduel/internal/domain"
)

type ChallengeRepository struct {
	mock.Mock
}

func (m *ChallengeRepository) Create(ctx context.Context, ch *domain.Challenge) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *ChallengeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	args := m.Called(ctx, id)
	return challengeResult(args)
}

func (m *ChallengeRepository) ListActiveForUser(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Challenge), args.Error(1)
}

func (m *ChallengeRepository) Accept(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error) {
	args := m.Called(ctx, id, actor)
	return challengeResult(args)
}

func (m *ChallengeRepository) Decline(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error) {
	args := m.Called(ctx, id, actor)
	return challengeResult(args)
}

func (m *ChallengeRepository) SetScore(ctx context.Context, id, actor uuid.UUID, asChallenger bool, score int) (*domain.Challenge, error) {
	args := m.Called(ctx, id, actor, asChallenger, score)
	return challengeResult(args)
}

func (m *ChallengeRepository) Complete(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	args := m.Called(ctx, id)
	return challengeResult(args)
}

func (m *ChallengeRepository) SaveQuestions(ctx context.Context, id uuid.UUID, questions domain.QuestionSet) (domain.QuestionSet, bool, error) {
	args := m.Called(ctx, id, questions)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(domain.QuestionSet), args.Bool(1), args.Error(2)
}

func challengeResult(args mock.Arguments) (*domain.Challenge, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Challenge), args.Error(1)
}
