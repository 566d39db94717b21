package repo

import (
	"AssetVault/config"
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to redis and verifies the connection with a ping.
func OpenRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis ready", slog.String("addr", client.Options().Addr))
	return client, nil
}
