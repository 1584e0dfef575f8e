package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"user-resource-service/internal/config"
	redisclient "user-resource-service/pkg/redis"
)

// NewRedisClient creates a Redis client when the cache layer is enabled.
// Returns (nil, nil) when it is not; the service runs fine without it.
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("cache layer disabled, skipping Redis connection")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
