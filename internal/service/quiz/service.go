package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
	"quizduel/internal/repository"
)

const (
	LeaderboardLimit    = 50
	leaderboardCacheTTL = 30 * time.Second
	leaderboardKeyAll   = "leaderboard:all"
)

type Service interface {
	SaveScore(ctx context.Context, userID uuid.UUID, input domain.SaveScoreInput) (*domain.Score, error)
	ListScores(ctx context.Context, userID uuid.UUID) ([]domain.Score, error)
	Leaderboard(ctx context.Context, category string) ([]domain.LeaderboardEntry, error)
	Categories() []domain.Category
}

type service struct {
	scoreRepo  repository.ScoreRepository
	redis      *redis.Client
	categories []domain.Category
	log        *logrus.Entry
}

func NewService(scoreRepo repository.ScoreRepository, redis *redis.Client, categories []domain.Category, log *logrus.Entry) Service {
	return &service{
		scoreRepo:  scoreRepo,
		redis:      redis,
		categories: categories,
		log:        log,
	}
}

func leaderboardKey(category string) string {
	if category == "" {
		return leaderboardKeyAll
	}
	return "leaderboard:" + category
}

func (s *service) SaveScore(ctx context.Context, userID uuid.UUID, input domain.SaveScoreInput) (*domain.Score, error) {
	if input.TotalQuestions <= 0 || input.Score < 0 || input.Score > input.TotalQuestions {
		return nil, domain.ErrScoreOutOfRange
	}

	score := &domain.Score{
		ID:             uuid.New(),
		UserID:         userID,
		Score:          input.Score,
		TotalQuestions: input.TotalQuestions,
		Category:       input.Category,
		Difficulty:     input.Difficulty,
	}
	if err := s.scoreRepo.Create(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	if s.redis != nil {
		keys := []string{leaderboardKeyAll}
		if score.Category != "" {
			keys = append(keys, leaderboardKey(score.Category))
		}
		if err := s.redis.Del(ctx, keys...).Err(); err != nil {
			s.log.WithError(err).Warn("failed to invalidate leaderboard cache")
		}
	}

	return score, nil
}

func (s *service) ListScores(ctx context.Context, userID uuid.UUID) ([]domain.Score, error) {
	return s.scoreRepo.ListByUser(ctx, userID)
}

func (s *service) Leaderboard(ctx context.Context, category string) ([]domain.LeaderboardEntry, error) {
	key := leaderboardKey(category)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var entries []domain.LeaderboardEntry
			if json.Unmarshal(cached, &entries) == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.scoreRepo.Leaderboard(ctx, category, LeaderboardLimit)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			_ = s.redis.Set(ctx, key, data, leaderboardCacheTTL).Err()
		}
	}
	return entries, nil
}

func (s *service) Categories() []domain.Category {
	return s.categories
}
