package main

import (
	"AssetVault/config"
	"AssetVault/internal/handler"
	"AssetVault/internal/logging"
	"AssetVault/internal/repo"
	"AssetVault/internal/service"
	"AssetVault/internal/storage"
	"AssetVault/router"
	"AssetVault/utils"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// main initializes services and starts the HTTP server.
func main() {
	cfg := config.Load()
	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
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

	health := map[string]handler.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var orphans service.OrphanReporter = service.NewLogOrphanReporter(logger)
	if cfg.RedisEnabled {
		rdb, err := repo.OpenRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		orphans = service.NewRedisOrphanReporter(rdb, logger)
		health["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	users := repo.NewUserRepo(db)
	assets := repo.NewAssetRepo(db)
	activity := repo.NewActivityRepo(db)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	userService := service.NewUserService(users, tokens, activity, logger)
	if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}
	assetService := service.NewAssetService(assets, store, orphans, activity, logger, service.AssetServiceConfig{
		MaxBytes: cfg.UploadMaxBytes,
		TempDir:  cfg.UploadTempDir,
	})
	statsService := service.NewStatsService(assets, users)

	gin.SetMode(gin.ReleaseMode)
	engine := router.InitRouter(
		handler.New(userService, assetService, statsService, cfg.UploadMaxBytes),
		router.Options{
			Tokens:       tokens,
			Logger:       logger,
			LoginLimiter: utils.NewIPRateLimiter(cfg.LoginRate, cfg.LoginBurst),
			AllowOrigins: cfg.CORSAllowOrigins,
			Health:       health,
		},
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
