package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"quizduel/internal/domain"
)

type TriviaSource struct {
	mock.Mock
}

func (m *TriviaSource) Fetch(ctx context.Context, category, difficulty string, amount int) (domain.QuestionSet, error) {
	args := m.Called(ctx, category, difficulty, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.QuestionSet), args.Error(1)
}
