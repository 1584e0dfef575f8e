package di

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-resource-service/cmd/api/infrastructure"
	"user-resource-service/internal/adapter/cache"
	"user-resource-service/internal/adapter/db/sqldb"
	ginhandler "user-resource-service/internal/adapter/gin/handler"
	ginmiddleware "user-resource-service/internal/adapter/gin/middleware"
	"user-resource-service/internal/adapter/repository/cached"
	"user-resource-service/internal/config"
	"user-resource-service/internal/usecase/user"
	redisclient "user-resource-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimiter *ginmiddleware.RateLimiter
	UserHandler *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	var repo user.Repository = sqldb.NewUserRepo(db, l)

	// Cache decorator and rate limiter only exist when Redis does
	var rateLimiter *ginmiddleware.RateLimiter
	if rdb != nil {
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewCachedUserRepository(repo, userCache, l)

		if cfg.RateLimit.Enabled {
			rateLimiter = ginmiddleware.NewRateLimiter(
				rdb.Client,
				ginmiddleware.RateLimiterConfig{
					RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
					BurstCapacity:     cfg.RateLimit.BurstCapacity,
					Enabled:           cfg.RateLimit.Enabled,
				},
				l,
			)
		}
	}

	userUC := user.New(repo, l)
	userHandler := ginhandler.NewUserHandler(userUC, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		UserUC:      userUC,
		RateLimiter: rateLimiter,
		UserHandler: userHandler,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
