package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"quizduel/internal/domain"
	"quizduel/internal/pkg/logger"
	"quizduel/internal/pkg/metrics"
)

type stubChannel struct {
	name  string
	err   error
	calls int
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Deliver(ctx context.Context, user *domain.User, notif *domain.Notification) error {
	s.calls++
	return s.err
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("all channels succeed", func(t *testing.T) {
		push := &stubChannel{name: "push"}
		email := &stubChannel{name: "email"}
		d := NewDispatcher(logger.Discard(), nil, push, email)

		err := d.Dispatch(context.Background(), &domain.User{ID: uuid.New()}, testNotification())

		assert.NoError(t, err)
		assert.Equal(t, 1, push.calls)
		assert.Equal(t, 1, email.calls)
	})

	t.Run("failure wraps delivery error and keeps going", func(t *testing.T) {
		m := metrics.New("test", prometheus.NewRegistry())
		push := &stubChannel{name: "push", err: errors.New("boom")}
		email := &stubChannel{name: "email"}
		d := NewDispatcher(logger.Discard(), m, push, email)

		err := d.Dispatch(context.Background(), &domain.User{ID: uuid.New()}, testNotification())

		assert.ErrorIs(t, err, domain.ErrDeliveryFailure)
		assert.Contains(t, err.Error(), "push")
		assert.Equal(t, 1, email.calls)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.DeliveryFailures.WithLabelValues("push")))
	})
}
