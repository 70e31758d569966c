package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"roflexi/internal/config"
	"roflexi/internal/database"
	"roflexi/internal/pkg/cache"
	"roflexi/internal/pkg/logger"
	"roflexi/internal/pkg/tracing"
	"roflexi/internal/repository"
	"roflexi/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, "roflexi-api", cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.ConnectWithLogger(cfg.DatabaseURL, zlog)
	if err != nil {
		return err
	}
	if err := repository.Migrate(db); err != nil {
		return err
	}

	kv, closeKV, err := openCache(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer closeKV()

	images, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}

	r := newRouter(cfg, zlog, db, kv, images)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.AppEnv))
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

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openCache(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (cache.Store, func(), error) {
	if len(cfg.RedisAddrs) == 0 {
		zlog.Warn("REDIS_ADDR not set; using in-process cache, single instance only")
		return cache.NewMemory(), func() {}, nil
	}
	rdb := cache.NewRedis(cfg.RedisAddrs, cfg.RedisPassword)
	if err := rdb.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return rdb, func() { _ = rdb.Close() }, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.StorageS3 {
		return storage.NewS3(ctx, cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey, cfg.UploadsURLPrefix)
	}
	return storage.NewLocal(cfg.UploadsDir, cfg.UploadsURLPrefix), nil
}
