package poller

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
)

const DefaultStatusInterval = 3 * time.Second

type StatusSource interface {
	ChallengeStatus(ctx context.Context, id uuid.UUID) (*domain.ChallengeStatusView, error)
}

// Predicate reports whether a watch is done.
type Predicate func(view domain.ChallengeStatusView) bool

// UntilAccepted stops once the challenged user has answered the invite.
func UntilAccepted(view domain.ChallengeStatusView) bool {
	return view.Status != domain.ChallengeInvited
}

// UntilResolved stops once both scores are in or the challenge is closed.
func UntilResolved(view domain.ChallengeStatusView) bool {
	return view.BothScored() || view.Status.IsTerminal()
}

// UntilQuestions stops once a question set is stored or the challenge is closed.
func UntilQuestions(view domain.ChallengeStatusView) bool {
	return len(view.Questions) > 0 || view.Status.IsTerminal()
}

type StatusWatcher struct {
	source   StatusSource
	interval time.Duration
	log      *logrus.Entry
}

func NewStatusWatcher(source StatusSource, interval time.Duration, log *logrus.Entry) *StatusWatcher {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	return &StatusWatcher{source: source, interval: interval, log: log}
}

// Watch polls the challenge until until holds, checking once immediately. Network errors
// are logged and retried; session, authorization and not-found errors end the watch.
func (w *StatusWatcher) Watch(ctx context.Context, id uuid.UUID, until Predicate) (*domain.ChallengeStatusView, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		view, err := w.source.ChallengeStatus(ctx, id)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err == nil:
			if until(*view) {
				return view, nil
			}
		case isPermanent(err):
			return nil, err
		default:
			w.log.WithError(err).WithField("challenge_id", id).Warn("challenge status poll failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrSessionInvalid) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrNotFound)
}
