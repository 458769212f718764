package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quizduel/internal/domain"
)

// ChallengeRepository persists challenges. Every transition is a single guarded UPDATE so
// that Postgres row locking serializes concurrent requests on the same challenge; a
// transition whose guard does not match returns (nil, nil).
type ChallengeRepository interface {
	Create(ctx context.Context, ch *domain.Challenge) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)
	ListActiveForUser(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error)
	Accept(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error)
	Decline(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error)
	SetScore(ctx context.Context, id, actor uuid.UUID, asChallenger bool, score int) (*domain.Challenge, error)
	Complete(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)
	SaveQuestions(ctx context.Context, id uuid.UUID, questions domain.QuestionSet) (domain.QuestionSet, bool, error)
}

type challengeRepository struct {
	db *sqlx.DB
}

func NewChallengeRepository(db *sqlx.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

const challengeColumns = `id, challenger_id, challenged_id, category, difficulty, challenger_score,
	challenged_score, status, winner_id, questions, created_at, updated_at, completed_at`

func (r *challengeRepository) Create(ctx context.Context, ch *domain.Challenge) error {
	query := `
		INSERT INTO challenges (id, challenger_id, challenged_id, category, difficulty, challenger_score, status, questions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		ch.ID, ch.ChallengerID, ch.ChallengedID, ch.Category, ch.Difficulty,
		ch.ChallengerScore, ch.Status, ch.Questions,
	).Scan(&ch.CreatedAt, &ch.UpdatedAt)
}

func (r *challengeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	var ch domain.Challenge
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`

	err := r.db.GetContext(ctx, &ch, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *challengeRepository) ListActiveForUser(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error) {
	challenges := []domain.Challenge{}
	query := `
		SELECT ` + challengeColumns + ` FROM challenges
		WHERE (challenger_id = $1 OR challenged_id = $1) AND status IN ('invited', 'pending')
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &challenges, query, userID)
	return challenges, err
}

func (r *challengeRepository) Accept(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error) {
	query := `
		UPDATE challenges SET status = 'pending', updated_at = NOW()
		WHERE id = $1 AND challenged_id = $2 AND status = 'invited'
		RETURNING ` + challengeColumns

	return r.getOptional(ctx, query, id, actor)
}

func (r *challengeRepository) Decline(ctx context.Context, id, actor uuid.UUID) (*domain.Challenge, error) {
	query := `
		UPDATE challenges SET status = 'declined', updated_at = NOW()
		WHERE id = $1 AND challenged_id = $2 AND status = 'invited'
		RETURNING ` + challengeColumns

	return r.getOptional(ctx, query, id, actor)
}

func (r *challengeRepository) SetScore(ctx context.Context, id, actor uuid.UUID, asChallenger bool, score int) (*domain.Challenge, error) {
	query := `
		UPDATE challenges SET challenged_score = $3, updated_at = NOW()
		WHERE id = $1 AND challenged_id = $2 AND challenged_score IS NULL AND status = 'pending'
		RETURNING ` + challengeColumns
	if asChallenger {
		query = `
		UPDATE challenges SET challenger_score = $3, updated_at = NOW()
		WHERE id = $1 AND challenger_id = $2 AND challenger_score IS NULL AND status = 'pending'
		RETURNING ` + challengeColumns
	}

	return r.getOptional(ctx, query, id, actor, score)
}

// Complete closes the challenge when both scores are persisted. It reads the row as
// committed at statement time, so it must run after the caller's own score write.
// Exactly one caller observes a non-nil result.
func (r *challengeRepository) Complete(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	query := `
		UPDATE challenges
		SET status = 'completed',
			winner_id = CASE
				WHEN challenger_score > challenged_score THEN challenger_id
				WHEN challenged_score > challenger_score THEN challenged_id
				ELSE NULL
			END,
			completed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
			AND challenger_score IS NOT NULL AND challenged_score IS NOT NULL
		RETURNING ` + challengeColumns

	return r.getOptional(ctx, query, id)
}

// SaveQuestions stores the question set only if none is stored yet. It returns the
// persisted set and whether this call was the one that wrote it.
func (r *challengeRepository) SaveQuestions(ctx context.Context, id uuid.UUID, questions domain.QuestionSet) (domain.QuestionSet, bool, error) {
	var stored domain.QuestionSet
	query := `
		UPDATE challenges SET questions = $2, updated_at = NOW()
		WHERE id = $1 AND jsonb_array_length(questions) = 0
		RETURNING questions`

	err := r.db.QueryRowxContext(ctx, query, id, questions).Scan(&stored)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	err = r.db.QueryRowxContext(ctx, `SELECT questions FROM challenges WHERE id = $1`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, domain.ErrChallengeNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

func (r *challengeRepository) getOptional(ctx context.Context, query string, args ...interface{}) (*domain.Challenge, error) {
	var ch domain.Challenge
	err := r.db.GetContext(ctx, &ch, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}
