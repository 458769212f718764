package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"quizduel/internal/config"
	"quizduel/internal/handler"
	"quizduel/internal/middleware"
	"quizduel/internal/pkg/logger"
	"quizduel/internal/pkg/metrics"
	"quizduel/internal/pkg/validation"
	"quizduel/internal/repository"
	"quizduel/internal/service"
	"quizduel/internal/service/auth"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New("quizduel-api", cfg.LogLevel)
	if envErr != nil {
		log.Info("No .env file found, using environment variables")
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	var redis *goredis.Client
	if client, err := config.NewRedisClient(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to connect to Redis, running without cache")
	} else {
		redis = client
		defer redis.Close()
	}

	var minioClient *minio.Client
	if client, err := config.NewMinIOClient(ctx, cfg, log); err != nil {
		log.WithError(err).Warn("Failed to connect to MinIO, avatar upload will not work")
	} else {
		minioClient = client
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("quizduel", registry)

	repos := repository.NewRepositories(db)
	services, err := service.NewServices(repos, redis, minioClient, cfg, log, m)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize services")
	}
	handlers := handler.NewHandlers(services, validation.New())

	app := fiber.New(fiber.Config{
		AppName:      "quizduel",
		ErrorHandler: middleware.NewErrorHandler(log),
		BodyLimit:    6 << 20,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.LegacyTokenHeader,
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(m.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	setupRoutes(app, handlers, services.Auth)

	go sweepSessions(ctx, services.Auth, cfg.SessionSweepInterval, log)

	go func() {
		<-ctx.Done()
		log.Info("Shutting down server")
		_ = app.Shutdown()
	}()

	log.WithField("port", cfg.Port).Info("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

// sweepSessions drops expired and long-revoked sessions until ctx is done.
func sweepSessions(ctx context.Context, authService auth.Service, interval time.Duration, log *logrus.Entry) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.PurgeSessions(ctx)
			if err != nil {
				log.WithError(err).Warn("Session sweep failed")
				continue
			}
			if n > 0 {
				log.WithField("deleted", n).Debug("Swept sessions")
			}
		}
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	authPublic := v1.Group("/auth")
	authPublic.Post("/register", h.Auth.Register)
	authPublic.Post("/login", h.Auth.Login)

	protected := v1.Group("", middleware.AuthRequired(authService))

	me := protected.Group("/auth")
	me.Get("/me", h.Auth.Me)
	me.Put("/me", h.Auth.UploadAvatar)
	me.Post("/push-token", h.Auth.RegisterPushToken)
	me.Post("/logout", h.Auth.Logout)

	challenges := protected.Group("/challenge")
	challenges.Post("/", h.Challenge.Create)
	challenges.Post("/accept", h.Challenge.Accept)
	challenges.Post("/reject", h.Challenge.Reject)
	challenges.Post("/complete", h.Challenge.Complete)
	challenges.Get("/:id/status", h.Challenge.Status)
	challenges.Get("/:id/questions", h.Challenge.GetQuestions)
	challenges.Post("/:id/questions", h.Challenge.SaveQuestions)
	protected.Get("/challenges/active", h.Challenge.ListActive)
	// Older mobile builds list open challenges here.
	protected.Get("/challenges/pending", h.Challenge.ListActive)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
	notifications.Put("/:id/read", h.Notification.MarkAsRead)
	notifications.Delete("/:id", h.Notification.Delete)

	social := protected.Group("/social")
	social.Get("/search", h.Social.Search)
	social.Post("/friend-request", h.Social.SendFriendRequest)
	social.Post("/friend-accept", h.Social.AcceptFriendRequest)
	social.Get("/friends", h.Social.ListFriends)

	quiz := protected.Group("/quiz")
	quiz.Post("/scores", h.Quiz.SaveScore)
	quiz.Get("/scores", h.Quiz.ListScores)
	quiz.Get("/leaderboard", h.Quiz.Leaderboard)
	quiz.Get("/categories", h.Quiz.Categories)
}
