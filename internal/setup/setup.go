// Package setup bootstraps all application dependencies in the correct
// order, ensuring each component has its required dependencies available.
package setup

import (
	"context"

	"github.com/Suhaib3100/quasar-2.0/internal/database"
	"github.com/Suhaib3100/quasar-2.0/internal/redis"
	"github.com/Suhaib3100/quasar-2.0/internal/setup/config"
	"github.com/Suhaib3100/quasar-2.0/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
type App struct {
	Config       *config.Config  // Application configuration
	Logger       *zap.Logger     // Main application logger
	DBLogger     *zap.Logger     // Database-specific logger
	DB           database.Client // Database connection pool
	RedisManager *redis.Manager  // Redis connection manager
}

// InitializeApp loads configuration, builds the loggers, and connects the
// database and Redis manager.
func InitializeApp(ctx context.Context) (*App, error) {
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, dbLogger, err := telemetry.GetLoggers(&cfg.Debug)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("configDir", configDir))

	redisManager := redis.NewManager(&cfg.Redis, logger)

	db, err := database.NewConnection(ctx, &cfg.PostgreSQL, dbLogger, true)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger,
		DB:           db,
		RedisManager: redisManager,
	}, nil
}

// CleanupApp releases all resources in reverse initialization order.
func (a *App) CleanupApp() {
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	a.RedisManager.Close()

	_ = a.Logger.Sync()
	_ = a.DBLogger.Sync()
}
