package challenge

import (
	"time"

	"github.com/google/uuid"

	"quizduel/internal/domain"
)

// NewChallenge builds a challenge for create. With an immediate score the challenger has
// already played, so the challenge starts pending with the challenger's slot filled.
func NewChallenge(challenger, challenged uuid.UUID, category, difficulty string, immediateScore *int, maxScore int) (*domain.Challenge, error) {
	if challenger == challenged {
		return nil, domain.ErrSelfChallenge
	}

	ch := &domain.Challenge{
		ID:           uuid.New(),
		ChallengerID: challenger,
		ChallengedID: challenged,
		Category:     category,
		Difficulty:   difficulty,
		Status:       domain.ChallengeInvited,
		Questions:    domain.QuestionSet{},
	}

	if immediateScore != nil {
		if err := checkScore(*immediateScore, maxScore); err != nil {
			return nil, err
		}
		score := *immediateScore
		ch.ChallengerScore = &score
		ch.Status = domain.ChallengePending
	}

	return ch, nil
}

func CanAccept(ch *domain.Challenge, actor uuid.UUID) error {
	if ch.ChallengedID != actor {
		return domain.ErrNotChallenged
	}
	if ch.Status != domain.ChallengeInvited {
		return domain.ErrChallengeNotInvited
	}
	return nil
}

// CanReject mirrors CanAccept: a challenge can only be declined while it awaits a response.
func CanReject(ch *domain.Challenge, actor uuid.UUID) error {
	return CanAccept(ch, actor)
}

func CanSubmit(ch *domain.Challenge, actor uuid.UUID, score, maxScore int) error {
	if !ch.IsParticipant(actor) {
		return domain.ErrNotParticipant
	}
	if err := checkScore(score, maxScore); err != nil {
		return err
	}
	if ch.Status != domain.ChallengePending {
		return domain.ErrChallengeNotPending
	}
	if ch.ScoreOf(actor) != nil {
		return domain.ErrScoreAlreadySet
	}
	return nil
}

// ApplyScore writes the actor's score slot. It does not resolve the challenge.
func ApplyScore(ch *domain.Challenge, actor uuid.UUID, score, maxScore int) error {
	if err := CanSubmit(ch, actor, score, maxScore); err != nil {
		return err
	}
	s := score
	if ch.ChallengerID == actor {
		ch.ChallengerScore = &s
	} else {
		ch.ChallengedScore = &s
	}
	ch.UpdatedAt = time.Now()
	return nil
}

// Resolve completes a pending challenge once both scores are present. It reports whether
// this call performed the transition; a second call is a no-op.
func Resolve(ch *domain.Challenge) bool {
	if ch.Status != domain.ChallengePending || !ch.BothScored() {
		return false
	}

	ch.Status = domain.ChallengeCompleted
	ch.WinnerID = Winner(ch)
	now := time.Now()
	ch.CompletedAt = &now
	ch.UpdatedAt = now
	return true
}

// Winner is the participant with the strictly higher score, or nil for a draw.
func Winner(ch *domain.Challenge) *uuid.UUID {
	if !ch.BothScored() {
		return nil
	}
	switch {
	case *ch.ChallengerScore > *ch.ChallengedScore:
		id := ch.ChallengerID
		return &id
	case *ch.ChallengedScore > *ch.ChallengerScore:
		id := ch.ChallengedID
		return &id
	default:
		return nil
	}
}

func checkScore(score, maxScore int) error {
	if score < 0 || (maxScore > 0 && score > maxScore) {
		return domain.ErrScoreOutOfRange
	}
	return nil
}
