package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quizduel/internal/domain"
)

type ScoreRepository interface {
	Create(ctx context.Context, score *domain.Score) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Score, error)
	Leaderboard(ctx context.Context, category string, limit int) ([]domain.LeaderboardEntry, error)
}

type scoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Create(ctx context.Context, score *domain.Score) error {
	query := `
		INSERT INTO scores (id, user_id, score, total_questions, category, difficulty)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		score.ID, score.UserID, score.Score, score.TotalQuestions, score.Category, score.Difficulty,
	).Scan(&score.CreatedAt)
}

func (r *scoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Score, error) {
	scores := []domain.Score{}
	query := `SELECT * FROM scores WHERE user_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &scores, query, userID)
	return scores, err
}

// Leaderboard ranks each user's best run. An empty category ranks across all categories.
func (r *scoreRepository) Leaderboard(ctx context.Context, category string, limit int) ([]domain.LeaderboardEntry, error) {
	entries := []domain.LeaderboardEntry{}
	query := `
		WITH best AS (
			SELECT DISTINCT ON (s.user_id)
				s.user_id, s.score, s.total_questions,
				COUNT(*) OVER (PARTITION BY s.user_id) AS total_quizzes
			FROM scores s
			WHERE ($1 = '' OR s.category = $1)
			ORDER BY s.user_id, s.score DESC, s.created_at ASC
		)
		SELECT b.user_id, u.username, b.score AS best_score, b.total_questions, b.total_quizzes,
			ROUND(b.score::numeric * 100 / b.total_questions, 2)::float8 AS percentage
		FROM best b
		JOIN users u ON u.id = b.user_id
		ORDER BY percentage DESC, best_score DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &entries, query, category, limit)
	return entries, err
}
