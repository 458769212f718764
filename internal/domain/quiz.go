package domain

import (
	"time"

	"github.com/google/uuid"
)

type Score struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Score          int       `json:"score" db:"score"`
	TotalQuestions int       `json:"total_questions" db:"total_questions"`
	Category       string    `json:"category" db:"category"`
	Difficulty     string    `json:"difficulty" db:"difficulty"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type SaveScoreInput struct {
	Score          int    `json:"score" validate:"min=0,ltefield=TotalQuestions"`
	TotalQuestions int    `json:"total_questions" validate:"required,min=1"`
	Category       string `json:"category"`
	Difficulty     string `json:"difficulty"`
}

type LeaderboardEntry struct {
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Username       string    `json:"username" db:"username"`
	BestScore      int       `json:"best_score" db:"best_score"`
	TotalQuestions int       `json:"total_questions" db:"total_questions"`
	TotalQuizzes   int       `json:"total_quizzes" db:"total_quizzes"`
	Percentage     float64   `json:"percentage" db:"percentage"`
}

type Category struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Icon       string `json:"icon" yaml:"icon"`
	Color      string `json:"color" yaml:"color"`
	Difficulty string `json:"difficulty" yaml:"difficulty"`
}

type FriendRequest struct {
	FromUserID uuid.UUID `json:"from_user_id" db:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id" db:"to_user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type FriendActionInput struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}
