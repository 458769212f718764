package service

import (
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/resend/resend-go/v3"
	"github.com/sirupsen/logrus"

	"quizduel/internal/config"
	"quizduel/internal/pkg/metrics"
	"quizduel/internal/repository"
	"quizduel/internal/service/auth"
	"quizduel/internal/service/challenge"
	"quizduel/internal/service/delivery"
	"quizduel/internal/service/notification"
	"quizduel/internal/service/quiz"
	"quizduel/internal/service/social"
	"quizduel/internal/service/trivia"
	"quizduel/internal/service/user"
)

type Services struct {
	Auth         auth.Service
	User         user.Service
	Challenge    challenge.Service
	Notification notification.Service
	Social       social.Service
	Quiz         quiz.Service
}

func NewServices(
	repos *repository.Repositories,
	redis *redis.Client,
	minioClient *minio.Client,
	cfg *config.Config,
	log *logrus.Entry,
	m *metrics.Metrics,
) (*Services, error) {
	channels := []delivery.Channel{
		delivery.NewPushChannel(cfg.ExpoPushURL, cfg.ExpoAccessToken, &http.Client{Timeout: cfg.TriviaTimeout}),
	}
	if cfg.ResendAPIKey != "" {
		channels = append(channels, delivery.NewEmailChannel(resend.NewClient(cfg.ResendAPIKey), cfg.FromEmail))
	} else {
		log.Info("RESEND_API_KEY not set, email delivery disabled")
	}
	dispatcher := delivery.NewDispatcher(log.WithField("component", "delivery"), m, channels...)

	notificationService := notification.NewService(
		repos.Notification,
		repos.User,
		dispatcher,
		cfg.NotificationLocale,
		log.WithField("component", "notification"),
		m,
	)

	challengeService := challenge.NewService(
		repos.Challenge,
		repos.User,
		notificationService,
		trivia.NewOpenTDB(cfg.TriviaBaseURL, cfg.TriviaTimeout),
		redis,
		challenge.Options{MaxScore: cfg.QuestionCount, StatusCacheTTL: cfg.StatusCacheTTL},
		log.WithField("component", "challenge"),
		m,
	)

	authService := auth.NewService(repos.User, repos.Session, auth.Options{
		Secret:           cfg.JWTSecret,
		AccessExpiry:     cfg.JWTAccessExpiry,
		RevokedRetention: cfg.SessionRetention,
	})

	var store user.ObjectStore
	if minioClient != nil {
		store = minioClient
	}
	userService := user.NewService(repos.User, store, user.StorageOptions{
		Bucket:         cfg.MinIOBucket,
		PublicEndpoint: cfg.MinIOPublicEndpoint,
		PublicUseSSL:   cfg.MinIOPublicUseSSL,
	}, log.WithField("component", "user"))

	categories, err := quiz.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}

	return &Services{
		Auth:         authService,
		User:         userService,
		Challenge:    challengeService,
		Notification: notificationService,
		Social:       social.NewService(repos.User, repos.Friend, notificationService, log.WithField("component", "social")),
		Quiz:         quiz.NewService(repos.Score, redis, categories, log.WithField("component", "quiz")),
	}, nil
}
