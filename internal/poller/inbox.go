package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
)

const DefaultInboxInterval = 5 * time.Second

type InboxSource interface {
	Notifications(ctx context.Context) ([]domain.Notification, error)
}

type NotificationDeleter interface {
	DeleteNotification(ctx context.Context, id uuid.UUID) error
}

type EffectHandler interface {
	Handle(ctx context.Context, effect Effect) error
}

type EffectHandlerFunc func(ctx context.Context, effect Effect) error

func (f EffectHandlerFunc) Handle(ctx context.Context, effect Effect) error {
	return f(ctx, effect)
}

type InboxOptions struct {
	Interval time.Duration
	// OnSessionInvalid runs once when the server rejects the token. Polling stops afterwards.
	OnSessionInvalid func()
}

// InboxPoller owns the cursor of one polling context.
type InboxPoller struct {
	source  InboxSource
	handler EffectHandler
	opts    InboxOptions
	log     *logrus.Entry

	mu     sync.Mutex
	cursor Cursor
}

func NewInboxPoller(source InboxSource, handler EffectHandler, opts InboxOptions, log *logrus.Entry) *InboxPoller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInboxInterval
	}
	return &InboxPoller{
		source:  source,
		handler: handler,
		opts:    opts,
		log:     log,
	}
}

func (p *InboxPoller) Cursor() Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Run primes the cursor and polls until ctx is done or the session is rejected.
// Transient errors are logged and retried on the next tick.
func (p *InboxPoller) Run(ctx context.Context) error {
	if err := p.tick(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (p *InboxPoller) tick(ctx context.Context) error {
	_, err := p.Poll(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrSessionInvalid):
		p.log.Warn("session rejected, stopping inbox poll")
		if p.opts.OnSessionInvalid != nil {
			p.opts.OnSessionInvalid()
		}
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		p.log.WithError(err).Warn("inbox poll failed")
		return nil
	}
}

// Poll runs one poll-diff-apply step and returns the effects it applied. The cursor
// advances past every new notification even when its effect fails.
func (p *InboxPoller) Poll(ctx context.Context) ([]Effect, error) {
	inbox, err := p.source.Notifications(ctx)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	p.mu.Lock()
	effects, next := Reconcile(p.cursor, inbox)
	p.cursor = next
	p.mu.Unlock()

	for _, effect := range effects {
		if err := p.handler.Handle(ctx, effect); err != nil {
			p.log.WithError(err).WithFields(logrus.Fields{
				"notification_id": effect.Notification.ID,
				"effect":          effect.Kind,
			}).Warn("failed to apply notification effect")
		}
	}
	return effects, nil
}

// Dismiss deletes a notification and drops it from the cursor so the next poll does not
// mistake the deletion for a rebase.
func (p *InboxPoller) Dismiss(ctx context.Context, deleter NotificationDeleter, id uuid.UUID) error {
	if err := Dismiss(ctx, deleter, id); err != nil {
		return err
	}
	p.mu.Lock()
	p.cursor = p.cursor.Forget(id)
	p.mu.Unlock()
	return nil
}

// Dismiss deletes a notification. A notification that is already gone counts as dismissed.
func Dismiss(ctx context.Context, deleter NotificationDeleter, id uuid.UUID) error {
	err := deleter.DeleteNotification(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
