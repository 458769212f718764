package challenge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizduel/internal/domain"
)

// memoryRepo applies the same guards as the SQL repository under a single mutex, which
// stands in for Postgres row locking.
type memoryRepo struct {
	mu         sync.Mutex
	challenges map[uuid.UUID]*domain.Challenge
	// beforeComplete runs between a score write and the completion check.
	beforeComplete func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{challenges: make(map[uuid.UUID]*domain.Challenge)}
}

func clone(ch *domain.Challenge) *domain.Challenge {
	c := *ch
	if ch.ChallengerScore != nil {
		v := *ch.ChallengerScore
		c.ChallengerScore = &v
	}
	if ch.ChallengedScore != nil {
		v := *ch.ChallengedScore
		c.ChallengedScore = &v
	}
	if ch.WinnerID != nil {
		v := *ch.WinnerID
		c.WinnerID = &v
	}
	c.Questions = append(domain.QuestionSet{}, ch.Questions...)
	return &c
}

func (r *memoryRepo) Create(ctx context.Context, ch *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	ch.CreatedAt, ch.UpdatedAt = now, now
	r.challenges[ch.ID] = clone(ch)
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	return clone(ch), nil
}

func (r *memoryRepo) ListActiveForUser(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Challenge{}
	for _, ch := range r.challenges {
		if ch.IsParticipant(userID) && !ch.Status.IsTerminal() {
			out = append(out, *clone(ch))
		}
	}
	return out, nil
}

func (r *memoryRepo) Accept(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error) {
	return r.respond(id, actor, domain.ChallengePending)
}

func (r *memoryRepo) Decline(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error) {
	return r.respond(id, actor, domain.ChallengeDeclined)
}

func (r *memoryRepo) respond(id, actor uuid.UUID, to domain.ChallengeStatus) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[id]
	if !ok || ch.ChallengedID != actor || ch.Status != domain.ChallengeInvited {
		return nil, nil
	}
	ch.Status = to
	ch.UpdatedAt = time.Now()
	return clone(ch), nil
}

func (r *memoryRepo) SetScore(ctx context.Context, id, actor uuid.UUID, asChallenger bool, score int) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[id]
	if !ok || ch.Status != domain.ChallengePending {
		return nil, nil
	}
	if asChallenger != (ch.ChallengerID == actor) || ch.ScoreOf(actor) != nil {
		return nil, nil
	}
	if err := ApplyScore(ch, actor, score, 0); err != nil {
		return nil, nil
	}
	return clone(ch), nil
}

func (r *memoryRepo) Complete(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	if r.beforeComplete != nil {
		r.beforeComplete()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[id]
	if !ok || !Resolve(ch) {
		return nil, nil
	}
	return clone(ch), nil
}

func (r *memoryRepo) SaveQuestions(ctx context.Context, id uuid.UUID, questions domain.QuestionSet) (domain.QuestionSet, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[id]
	if !ok {
		return nil, false, domain.ErrChallengeNotFound
	}
	if len(ch.Questions) == 0 {
		ch.Questions = append(domain.QuestionSet{}, questions...)
		return append(domain.QuestionSet{}, ch.Questions...), true, nil
	}
	return append(domain.QuestionSet{}, ch.Questions...), false, nil
}
