package database

import (
	"context"
	"fmt"
	"time"

	"github.com/climate-dashboard-api/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedis connects to the session store and verifies it answers
func NewRedis(cfg *config.RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().
		Str("component", "redis").
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("Session store connection established")

	return client, nil
}
