package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
	"quizduel/internal/pkg/metrics"
)

// Channel delivers a notification out of band. Channels that do not apply to a user
// (no device token, no email) return nil.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, user *domain.User, notif *domain.Notification) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, user *domain.User, notif *domain.Notification) error
}

type dispatcher struct {
	channels []Channel
	log      *logrus.Entry
	metrics  *metrics.Metrics
}

func NewDispatcher(log *logrus.Entry, m *metrics.Metrics, channels ...Channel) Dispatcher {
	return &dispatcher{channels: channels, log: log, metrics: m}
}

// Dispatch tries every channel. Failures are logged and returned joined, each wrapping
// domain.ErrDeliveryFailure.
func (d *dispatcher) Dispatch(ctx context.Context, user *domain.User, notif *domain.Notification) error {
	var errs []error
	for _, ch := range d.channels {
		if err := ch.Deliver(ctx, user, notif); err != nil {
			err = fmt.Errorf("%w: %s: %v", domain.ErrDeliveryFailure, ch.Name(), err)
			d.log.WithError(err).WithFields(logrus.Fields{
				"channel":         ch.Name(),
				"notification_id": notif.ID,
				"user_id":         user.ID,
			}).Warn("notification delivery failed")
			d.metrics.DeliveryFailed(ch.Name())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
