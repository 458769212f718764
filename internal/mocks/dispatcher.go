package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"quizduel/internal/domain"
)

type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) Dispatch(ctx context.Context, user *domain.User, notif *domain.Notification) error {
	args := m.Called(ctx, user, notif)
	return args.Error(0)
}
