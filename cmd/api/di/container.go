package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-form-service/cmd/api/infrastructure"
	"user-form-service/internal/adapter/db/sqldb"
	ginhandler "user-form-service/internal/adapter/gin/handler"
	"user-form-service/internal/adapter/gin/middleware"
	ginrouter "user-form-service/internal/adapter/gin/router"
	grpcadapter "user-form-service/internal/adapter/grpc"
	"user-form-service/internal/config"
	"user-form-service/internal/usecase/submission"
	redisclient "user-form-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	RedisClient  *redisclient.Client
	SubmissionUC submission.Usecase
	RateLimiter  *middleware.RateLimiter
	Handlers     ginrouter.Handlers
	Health       *grpcadapter.HealthReporter
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	db, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	sqlDB, err := db.DB()
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	repo := sqldb.NewUserRepo(db, l)
	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
		l.Info("users table migrated")
	}

	// Redis is only needed for rate limiting
	if cfg.RateLimit.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
		c.RateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
			},
			l,
		)
	}

	c.SubmissionUC = submission.New(repo, l, submission.Options{
		RequireFields: cfg.App.RequireFields,
		QueryTimeout:  time.Duration(cfg.DB.QueryTimeoutSeconds) * time.Second,
	})

	c.Handlers = ginrouter.Handlers{
		Page:       ginhandler.NewPageHandler(cfg.App.StaticIndexPath),
		Submission: ginhandler.NewSubmissionHandler(c.SubmissionUC, l),
		Health:     ginhandler.NewHealthHandler(sqlDB, cfg.Logger.ServiceName, l),
	}
	if cfg.App.SwaggerEnabled {
		c.Handlers.Docs = ginhandler.NewDocsHandler("/swagger", cfg.App.SwaggerSpecPath)
	}

	if cfg.GRPC.Enabled {
		c.Health = grpcadapter.NewHealthReporter(
			sqlDB,
			time.Duration(cfg.GRPC.HealthIntervalSeconds)*time.Second,
			l,
		)
	}

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %w", errors.Join(errs...))
	}

	return nil
}
