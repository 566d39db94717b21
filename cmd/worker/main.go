package main

import (
	"AssetVault/config"
	"AssetVault/internal/logging"
	"AssetVault/internal/repo"
	"AssetVault/internal/storage"
	"AssetVault/internal/worker"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := config.Load()
	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := run(cfg, logger); err != nil {
		logger.Error("orphan reaper stopped", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if !cfg.RedisEnabled {
		return errors.New("orphan reaper needs redis: set REDIS_ENABLED")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.CloseDB(db); err != nil {
			logger.Warn("close database failed", slog.String("err", err.Error()))
		}
	}()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	rdb, err := repo.OpenRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	reaper := worker.NewReaper(worker.NewRedisQueue(rdb), repo.NewAssetRepo(db), store, logger, cfg.Reaper)
	logger.Info("orphan reaper started", slog.Int("concurrency", cfg.Reaper.Concurrency))
	return reaper.Run(ctx)
}
