package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
)

var ErrDeclined = errors.New("challenge declined")

var errQuestionsNotReady = errors.New("questions not stored yet")

type Role string

const (
	RoleChallenger Role = "challenger"
	RoleChallenged Role = "challenged"
)

// QuestionStrategy decides how the challenger waits for the shared question set.
type QuestionStrategy int

const (
	// StrategyRetry polls the stored set with exponential backoff.
	StrategyRetry QuestionStrategy = iota
	// StrategyFixedDelay sleeps SettleDelay and then fetches.
	StrategyFixedDelay
)

type LobbyAPI interface {
	StatusSource
	AcceptChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)
	Questions(ctx context.Context, id uuid.UUID) (domain.QuestionSet, error)
}

type LobbyOptions struct {
	Strategy       QuestionStrategy
	StatusInterval time.Duration
	SettleDelay    time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxWait        time.Duration
}

// Ready is the lobby's result: both players may start the quiz.
type Ready struct {
	ChallengeID uuid.UUID
	Role        Role
	Questions   domain.QuestionSet
}

type Lobby struct {
	api     LobbyAPI
	watcher *StatusWatcher
	opts    LobbyOptions
	log     *logrus.Entry
}

func NewLobby(api LobbyAPI, opts LobbyOptions, log *logrus.Entry) *Lobby {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 3 * time.Second
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 250 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 2 * time.Second
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 15 * time.Second
	}
	return &Lobby{
		api:     api,
		watcher: NewStatusWatcher(api, opts.StatusInterval, log),
		opts:    opts,
		log:     log,
	}
}

func (l *Lobby) Enter(ctx context.Context, id uuid.UUID, role Role) (*Ready, error) {
	if role == RoleChallenged {
		return l.enterAsChallenged(ctx, id)
	}
	return l.enterAsChallenger(ctx, id)
}

func (l *Lobby) enterAsChallenged(ctx context.Context, id uuid.UUID) (*Ready, error) {
	if _, err := l.api.AcceptChallenge(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) {
			return nil, fmt.Errorf("failed to accept challenge: %w", err)
		}
		// Accepting again after a reconnect is fine as long as the challenge is still open.
		view, statusErr := l.api.ChallengeStatus(ctx, id)
		if statusErr != nil {
			return nil, statusErr
		}
		if view.Status == domain.ChallengeDeclined {
			return nil, ErrDeclined
		}
		if view.Status != domain.ChallengePending {
			return nil, err
		}
	}

	questions, err := l.api.Questions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	return &Ready{ChallengeID: id, Role: RoleChallenged, Questions: questions}, nil
}

func (l *Lobby) enterAsChallenger(ctx context.Context, id uuid.UUID) (*Ready, error) {
	view, err := l.watcher.Watch(ctx, id, UntilAccepted)
	if err != nil {
		return nil, err
	}
	switch view.Status {
	case domain.ChallengeDeclined:
		return nil, ErrDeclined
	case domain.ChallengeCompleted:
		return nil, domain.ErrChallengeClosed
	}

	var questions domain.QuestionSet
	if l.opts.Strategy == StrategyFixedDelay {
		questions, err = l.settleThenFetch(ctx, id)
	} else {
		questions, err = l.retryUntilStored(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &Ready{ChallengeID: id, Role: RoleChallenger, Questions: questions}, nil
}

func (l *Lobby) settleThenFetch(ctx context.Context, id uuid.UUID) (domain.QuestionSet, error) {
	timer := time.NewTimer(l.opts.SettleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	return l.api.Questions(ctx, id)
}

// retryUntilStored waits for the challenged side to store the question set. When it never
// shows up the server is asked to resolve one, which is still shared by first-writer-wins.
func (l *Lobby) retryUntilStored(ctx context.Context, id uuid.UUID) (domain.QuestionSet, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.opts.InitialBackoff
	b.MaxInterval = l.opts.MaxBackoff

	operation := func() (domain.QuestionSet, error) {
		view, err := l.api.ChallengeStatus(ctx, id)
		if err != nil {
			if isPermanent(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if view.Status == domain.ChallengeDeclined {
			return nil, backoff.Permanent(ErrDeclined)
		}
		if len(view.Questions) == 0 {
			return nil, errQuestionsNotReady
		}
		return view.Questions, nil
	}

	questions, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(l.opts.MaxWait),
		backoff.WithNotify(func(err error, next time.Duration) {
			l.log.WithError(err).WithFields(logrus.Fields{
				"challenge_id": id,
				"retry_in":     next,
			}).Debug("waiting for challenge questions")
		}),
	)
	if err == nil {
		return questions, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, ErrDeclined) || isPermanent(err) {
		return nil, err
	}

	l.log.WithError(err).WithField("challenge_id", id).Info("questions not stored in time, resolving on server")
	return l.api.Questions(ctx, id)
}
