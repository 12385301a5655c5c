package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/emldov7/evMonde--sub000/internal/di"
	"github.com/emldov7/evMonde--sub000/internal/server"
	"github.com/emldov7/evMonde--sub000/internal/telemetry"
	"github.com/emldov7/evMonde--sub000/pkg/config"
	"github.com/emldov7/evMonde--sub000/pkg/database"
	"github.com/emldov7/evMonde--sub000/pkg/logger"
	"github.com/emldov7/evMonde--sub000/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(&logger.Config{
		Level:       logLevel(cfg),
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
		OutputPath:  "stdout",
	}); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	})
	if err != nil {
		logger.Fatal("failed to init telemetry", zap.Error(err))
	}

	if err := database.RunMigrations(cfg.Database.URL(), cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	cache, err := redis.New(ctx, &redis.Config{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
	})
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cache.Close()

	container, err := di.NewContainer(cfg, db, cache)
	if err != nil {
		logger.Fatal("failed to build container", zap.Error(err))
	}

	srv := server.New(cfg, container)

	container.ReminderWorker.Start(ctx)
	defer container.ReminderWorker.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr()),
			zap.String("environment", cfg.App.Environment))
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
	os.Exit(0)
}

func logLevel(cfg *config.Config) string {
	if cfg.App.Debug {
		return "debug"
	}
	return "info"
}
