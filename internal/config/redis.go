package config

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the cache used for challenge status and leaderboards. Callers
// treat an error as "run without cache".
func NewRedisClient(ctx context.Context, cfg *Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	opt.ClientName = "quizduel-api"
	opt.DialTimeout = cfg.ConnectTimeout

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
