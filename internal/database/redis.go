package database

import (
	"context"
	"time"

	"github.com/SeakMengs/AutoSign/internal/config"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a pinged client, or nil when redis is disabled.
func ConnectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.ADDR,
		Password: cfg.PASSWORD,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
