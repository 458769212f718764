package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
)

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

type Result struct {
	Outcome       Outcome
	Role          Role
	MyScore       int
	OpponentScore int
	View          domain.ChallengeStatusView
}

type ResultsAPI interface {
	StatusSource
	SubmitScore(ctx context.Context, id uuid.UUID, score int) (*domain.Challenge, error)
}

type Results struct {
	api     ResultsAPI
	watcher *StatusWatcher
	log     *logrus.Entry
}

func NewResults(api ResultsAPI, interval time.Duration, log *logrus.Entry) *Results {
	return &Results{api: api, watcher: NewStatusWatcher(api, interval, log), log: log}
}

// Submit records the player's score and waits for the opponent's.
func (r *Results) Submit(ctx context.Context, id, me uuid.UUID, score int) (*Result, error) {
	if _, err := r.api.SubmitScore(ctx, id, score); err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) {
			return nil, fmt.Errorf("failed to submit score: %w", err)
		}
		if err := r.confirmSubmitted(ctx, id, me, err); err != nil {
			return nil, err
		}
		r.log.WithField("challenge_id", id).Info("score already submitted, waiting for result")
	}

	view, err := r.watcher.Watch(ctx, id, UntilResolved)
	if err != nil {
		return nil, err
	}
	if view.Status == domain.ChallengeDeclined {
		return nil, ErrDeclined
	}
	return ComputeResult(*view, me)
}

// confirmSubmitted checks that a rejected submission means the score is already stored.
// Any other reason, such as a challenge that was never accepted, would leave the watch
// waiting forever, so it is returned instead.
func (r *Results) confirmSubmitted(ctx context.Context, id, me uuid.UUID, submitErr error) error {
	view, err := r.api.ChallengeStatus(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check challenge status: %w", err)
	}
	if view.Status.IsTerminal() {
		return nil
	}

	var mine *int
	switch me {
	case view.ChallengerID:
		mine = view.ChallengerScore
	case view.ChallengedID:
		mine = view.ChallengedScore
	default:
		return domain.ErrNotParticipant
	}
	if view.Status != domain.ChallengePending || mine == nil {
		return fmt.Errorf("failed to submit score: %w", submitErr)
	}
	return nil
}

// ComputeResult derives the outcome from me's role in the challenge. The stored winner is
// authoritative once set; before completion lands the scores are compared directly.
func ComputeResult(view domain.ChallengeStatusView, me uuid.UUID) (*Result, error) {
	var role Role
	var mine, theirs *int
	switch me {
	case view.ChallengerID:
		role, mine, theirs = RoleChallenger, view.ChallengerScore, view.ChallengedScore
	case view.ChallengedID:
		role, mine, theirs = RoleChallenged, view.ChallengedScore, view.ChallengerScore
	default:
		return nil, domain.ErrNotParticipant
	}
	if mine == nil || theirs == nil {
		return nil, fmt.Errorf("%w: challenge has not been resolved", domain.ErrInvalidTransition)
	}

	result := &Result{Role: role, MyScore: *mine, OpponentScore: *theirs, View: view}
	switch {
	case view.Status == domain.ChallengeCompleted && view.WinnerID == nil:
		result.Outcome = OutcomeDraw
	case view.Status == domain.ChallengeCompleted && *view.WinnerID == me:
		result.Outcome = OutcomeWin
	case view.Status == domain.ChallengeCompleted:
		result.Outcome = OutcomeLoss
	case *mine > *theirs:
		result.Outcome = OutcomeWin
	case *mine < *theirs:
		result.Outcome = OutcomeLoss
	default:
		result.Outcome = OutcomeDraw
	}
	return result, nil
}
