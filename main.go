package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealership_api/api"
	"dealership_api/internal/cache"
	"dealership_api/internal/config"
	"dealership_api/internal/sales"
	"dealership_api/internal/stats"
	"dealership_api/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	db, err := storage.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, storage.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("driver", cfg.DatabaseDriver), zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := storage.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	store := storage.New(db)

	statsCache := newCache(sigCtx, cfg, logger)

	var salespeople sales.SalespersonDirectory = store
	if cfg.UserServiceURL != "" {
		users := sales.NewUserServiceDirectory(cfg.UserServiceURL, cfg.UserServiceTimeout, logger)
		defer users.Close()
		salespeople = users
	}

	services := api.Services{
		Sales:     sales.NewService(store, salespeople, logger),
		Inventory: sales.NewInventoryService(store, logger),
		Stats: stats.NewService(store, statsCache, logger, stats.Options{
			SnapshotTTL: cfg.SnapshotTTL,
			HistoryTTL:  cfg.HistoryTTL,
		}),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.InitRoutes(r, services, logger)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error trying to start server", zap.Error(err))
		}
	}
}

// newCache picks the statistics cache backend from CACHE_DRIVER. The memory
// janitor stops when ctx is done.
func newCache(ctx context.Context, cfg config.Config, logger *zap.Logger) cache.Cache {
	switch cfg.CacheDriver {
	case "redis":
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedis(pingCtx, cache.RedisOptions{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}, logger)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
			return startMemoryCache(ctx, cfg)
		}
		go func() {
			<-ctx.Done()
			rc.Close()
		}()
		return rc
	case "none":
		return cache.Noop{}
	default:
		return startMemoryCache(ctx, cfg)
	}
}

func startMemoryCache(ctx context.Context, cfg config.Config) cache.Cache {
	m := cache.NewMemory()
	go m.RunJanitor(ctx, cfg.SnapshotTTL)
	return m
}
