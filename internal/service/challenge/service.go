package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
	"quizduel/internal/pkg/metrics"
	"quizduel/internal/repository"
	"quizduel/internal/service/notification"
	"quizduel/internal/service/trivia"
)

type Service interface {
	Create(ctx context.Context, challenger uuid.UUID, input domain.CreateChallengeInput) (*domain.Challenge, error)
	Accept(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error)
	Reject(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error)
	SubmitScore(ctx context.Context, id, actor uuid.UUID, score int) (*domain.Challenge, error)
	Status(ctx context.Context, id, actor uuid.UUID) (*domain.ChallengeStatusView, error)
	SaveQuestions(ctx context.Context, id, actor uuid.UUID, questions domain.QuestionSet) (domain.QuestionSet, error)
	Questions(ctx context.Context, id, actor uuid.UUID) (domain.QuestionSet, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error)
}

type Options struct {
	// MaxScore bounds submitted scores; it equals the number of questions per challenge.
	MaxScore       int
	StatusCacheTTL time.Duration
}

type service struct {
	challengeRepo repository.ChallengeRepository
	userRepo      repository.UserRepository
	notifSvc      notification.Service
	source        trivia.Source
	cache         *statusCache
	opts          Options
	log           *logrus.Entry
	metrics       *metrics.Metrics
}

func NewService(
	challengeRepo repository.ChallengeRepository,
	userRepo repository.UserRepository,
	notifSvc notification.Service,
	source trivia.Source,
	redis *redis.Client,
	opts Options,
	log *logrus.Entry,
	m *metrics.Metrics,
) Service {
	if opts.MaxScore <= 0 {
		opts.MaxScore = 10
	}
	if opts.StatusCacheTTL <= 0 {
		opts.StatusCacheTTL = 2 * time.Second
	}
	return &service{
		challengeRepo: challengeRepo,
		userRepo:      userRepo,
		notifSvc:      notifSvc,
		source:        source,
		cache:         newStatusCache(redis, opts.StatusCacheTTL),
		opts:          opts,
		log:           log,
		metrics:       m,
	}
}

func (s *service) Create(ctx context.Context, challenger uuid.UUID, input domain.CreateChallengeInput) (*domain.Challenge, error) {
	ch, err := NewChallenge(challenger, input.ChallengedID, input.Category, input.Difficulty, input.Score, s.opts.MaxScore)
	if err != nil {
		return nil, err
	}

	challenged, err := s.userRepo.GetByID(ctx, input.ChallengedID)
	if err != nil {
		return nil, err
	}
	if challenged == nil {
		return nil, domain.ErrUserNotFound
	}

	if err := s.challengeRepo.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	s.metrics.ChallengeTransition(string(ch.Status))

	s.notify(ctx, ch, domain.AppendNotificationInput{
		Recipient: ch.ChallengedID,
		Type:      domain.NotifChallengeReceived,
		FromUser:  &challenger,
		Payload: domain.ChallengePayload{
			ChallengeID: ch.ID,
			Category:    ch.Category,
			Difficulty:  ch.Difficulty,
			ScoreToBeat: ch.ChallengerScore,
		},
		MessageArgs: []interface{}{ch.Category},
	})

	return ch, nil
}

func (s *service) Accept(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error) {
	ch, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanAccept(ch, actor); err != nil {
		return nil, err
	}

	updated, err := s.challengeRepo.Accept(ctx, id, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to accept challenge: %w", err)
	}
	if updated == nil {
		return nil, s.explain(ctx, id, func(fresh *domain.Challenge) error { return CanAccept(fresh, actor) })
	}

	s.invalidate(ctx, id)
	s.metrics.ChallengeTransition(string(updated.Status))
	s.notify(ctx, updated, domain.AppendNotificationInput{
		Recipient: updated.ChallengerID,
		Type:      domain.NotifChallengeAccepted,
		FromUser:  &actor,
		Payload:   domain.ChallengePayload{ChallengeID: updated.ID},
	})

	return updated, nil
}

func (s *service) Reject(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error) {
	ch, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanReject(ch, actor); err != nil {
		return nil, err
	}

	updated, err := s.challengeRepo.Decline(ctx, id, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to decline challenge: %w", err)
	}
	if updated == nil {
		return nil, s.explain(ctx, id, func(fresh *domain.Challenge) error { return CanReject(fresh, actor) })
	}

	s.invalidate(ctx, id)
	s.metrics.ChallengeTransition(string(updated.Status))
	s.notify(ctx, updated, domain.AppendNotificationInput{
		Recipient: updated.ChallengerID,
		Type:      domain.NotifChallengeRejected,
		FromUser:  &actor,
		Payload:   domain.ChallengePayload{ChallengeID: updated.ID},
	})

	return updated, nil
}

// SubmitScore records the actor's score. Completion is decided by a second guarded write
// against the persisted row, so when both participants submit concurrently exactly one
// of them completes the challenge and emits challenge_completed.
func (s *service) SubmitScore(ctx context.Context, id, actor uuid.UUID, score int) (*domain.Challenge, error) {
	ch, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanSubmit(ch, actor, score, s.opts.MaxScore); err != nil {
		return nil, err
	}

	asChallenger := ch.ChallengerID == actor
	updated, err := s.challengeRepo.SetScore(ctx, id, actor, asChallenger, score)
	if err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}
	if updated == nil {
		return nil, s.explain(ctx, id, func(fresh *domain.Challenge) error {
			return CanSubmit(fresh, actor, score, s.opts.MaxScore)
		})
	}
	s.invalidate(ctx, id)

	completed, err := s.challengeRepo.Complete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to complete challenge: %w", err)
	}
	if completed == nil {
		// Either the opponent has not played yet or their request completed it.
		latest, err := s.challengeRepo.GetByID(ctx, id)
		if err != nil {
			return updated, nil
		}
		return latest, nil
	}

	s.invalidate(ctx, id)
	s.metrics.ChallengeTransition(string(completed.Status))

	recipient := completed.Opponent(actor)
	s.notify(ctx, completed, domain.AppendNotificationInput{
		Recipient: recipient,
		Type:      domain.NotifChallengeCompleted,
		FromUser:  &actor,
		Payload: domain.ChallengePayload{
			ChallengeID:   completed.ID,
			Category:      completed.Category,
			Difficulty:    completed.Difficulty,
			MyScore:       completed.ScoreOf(recipient),
			OpponentScore: completed.ScoreOf(actor),
		},
	})

	return completed, nil
}

func (s *service) Status(ctx context.Context, id, actor uuid.UUID) (*domain.ChallengeStatusView, error) {
	ch, err := s.cachedChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ch.IsParticipant(actor) {
		return nil, domain.ErrNotParticipant
	}
	view := ch.StatusView()
	return &view, nil
}

// SaveQuestions stores the canonical question set. The first write wins; later writers get
// the stored set back so both participants play the same questions in the same order.
func (s *service) SaveQuestions(ctx context.Context, id, actor uuid.UUID, questions domain.QuestionSet) (domain.QuestionSet, error) {
	ch, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ch.IsParticipant(actor) {
		return nil, domain.ErrNotParticipant
	}
	if len(ch.Questions) > 0 {
		return ch.Questions, nil
	}
	if ch.Status.IsTerminal() {
		return nil, domain.ErrChallengeClosed
	}

	return s.persistQuestions(ctx, id, questions)
}

// Questions returns the stored question set, fetching and storing one from the trivia
// source when none exists yet.
func (s *service) Questions(ctx context.Context, id, actor uuid.UUID) (domain.QuestionSet, error) {
	ch, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ch.IsParticipant(actor) {
		return nil, domain.ErrNotParticipant
	}
	if len(ch.Questions) > 0 {
		return ch.Questions, nil
	}
	if ch.Status.IsTerminal() {
		return nil, domain.ErrChallengeClosed
	}

	fetched, err := s.source.Fetch(ctx, ch.Category, ch.Difficulty, s.opts.MaxScore)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}

	return s.persistQuestions(ctx, id, fetched)
}

func (s *service) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error) {
	return s.challengeRepo.ListActiveForUser(ctx, userID)
}

func (s *service) persistQuestions(ctx context.Context, id uuid.UUID, questions domain.QuestionSet) (domain.QuestionSet, error) {
	stored, saved, err := s.challengeRepo.SaveQuestions(ctx, id, questions)
	if err != nil {
		return nil, fmt.Errorf("failed to save questions: %w", err)
	}
	if saved {
		s.invalidate(ctx, id)
		s.log.WithFields(logrus.Fields{
			"challenge_id": id,
			"questions":    len(stored),
		}).Debug("challenge questions stored")
	}
	return stored, nil
}

// explain re-reads a challenge after a guarded write matched no row and reports why.
func (s *service) explain(ctx context.Context, id uuid.UUID, check func(*domain.Challenge) error) error {
	fresh, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := check(fresh); err != nil {
		return err
	}
	return domain.ErrConflict
}

// notify appends a notification without affecting the committed transition.
func (s *service) notify(ctx context.Context, ch *domain.Challenge, input domain.AppendNotificationInput) {
	if s.notifSvc == nil {
		return
	}
	if _, err := s.notifSvc.Append(ctx, input); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"challenge_id": ch.ID,
			"recipient":    input.Recipient,
			"type":         input.Type,
		}).Error("failed to append challenge notification")
	}
}

// cachedChallenge serves status polls from Redis when it is configured. Cache errors fall
// through to the database.
func (s *service) cachedChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	if s.cache == nil {
		return s.challengeRepo.GetByID(ctx, id)
	}

	gen, err := s.cache.generation(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("challenge_id", id).Warn("status cache unavailable")
		return s.challengeRepo.GetByID(ctx, id)
	}
	if ch, ok := s.cache.get(ctx, id, gen); ok {
		return ch, nil
	}

	ch, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.set(ctx, id, gen, ch); err != nil {
		s.log.WithError(err).WithField("challenge_id", id).Debug("failed to cache challenge status")
	}
	return ch, nil
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.invalidate(ctx, id); err != nil {
		s.log.WithError(err).WithField("challenge_id", id).Warn("failed to invalidate challenge status")
	}
}
