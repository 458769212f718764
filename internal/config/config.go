package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	ConnectTimeout time.Duration

	RedisURL       string
	StatusCacheTTL time.Duration

	JWTSecret            string
	JWTAccessExpiry      time.Duration
	SessionRetention     time.Duration
	SessionSweepInterval time.Duration

	MinIOEndpoint       string
	MinIOPublicEndpoint string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool
	MinIOPublicUseSSL   bool

	CORSOrigins string

	ResendAPIKey string
	FromEmail    string

	ExpoPushURL     string
	ExpoAccessToken string

	NotificationLocale string

	TriviaBaseURL  string
	TriviaTimeout  time.Duration
	QuestionCount  int
	CategoriesFile string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBMaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnectTimeout: getDurationEnv("CONNECT_TIMEOUT", 5*time.Second),

		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		StatusCacheTTL: getDurationEnv("STATUS_CACHE_TTL", 2*time.Second),

		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:      getDurationEnv("JWT_ACCESS_EXPIRY", 7*24*time.Hour),
		SessionRetention:     getDurationEnv("SESSION_RETENTION", 24*time.Hour),
		SessionSweepInterval: getDurationEnv("SESSION_SWEEP_INTERVAL", time.Hour),

		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOPublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "quizduel-avatars"),
		MinIOUseSSL:         getBoolEnv("MINIO_USE_SSL", false),
		MinIOPublicUseSSL:   getBoolEnv("MINIO_PUBLIC_USE_SSL", true),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),

		ExpoPushURL:     getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		ExpoAccessToken: getEnv("EXPO_ACCESS_TOKEN", ""),

		NotificationLocale: getEnv("NOTIFICATION_LOCALE", "en"),

		TriviaBaseURL:  getEnv("TRIVIA_BASE_URL", "https://opentdb.com/api.php"),
		TriviaTimeout:  getDurationEnv("TRIVIA_TIMEOUT", 10*time.Second),
		QuestionCount:  getIntEnv("QUESTION_COUNT", 10),
		CategoriesFile: getEnv("CATEGORIES_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
