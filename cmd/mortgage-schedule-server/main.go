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

	"github.com/iwvelando/mortgage-schedule/internal/cache"
	"github.com/iwvelando/mortgage-schedule/internal/logging"
	"github.com/iwvelando/mortgage-schedule/internal/metrics"
	"github.com/iwvelando/mortgage-schedule/internal/server"
	"github.com/iwvelando/mortgage-schedule/internal/tracing"
	"github.com/iwvelando/mortgage-schedule/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	_ = godotenv.Load()

	configLocation := pflag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := pflag.String("address", "", "listen address override")
	logLevel := pflag.String("log-level", "", "log level override (debug, info, warn, error)")
	pflag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Tracing.ServiceVersion = version
	shutdownTracing, err := tracing.Init(ctx, logger, cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to initialize tracing",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	resultCache, closeCache := newCache(ctx, logger, cfg.Cache)
	defer closeCache()

	handler := server.NewHandler(logger, server.Options{
		MaxBodySize: cfg.BodySizeBytes(),
		Version:     version,
		Limits:      cfg.Simulator,
		Cache:       resultCache,
		Metrics:     metrics.New(),
	})

	httpServer := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	case <-ctx.Done():
		logger.Info("shutting down",
			zap.String("op", "main"),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error during server shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("error flushing traces",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// newCache builds the configured result cache. An unreachable Redis server
// is logged and requests are computed without memoization.
func newCache(ctx context.Context, logger *zap.Logger, cfg server.CacheConfig) (cache.Cache, func()) {
	switch cfg.Backend {
	case server.CacheMemory:
		return cache.NewMemoryCache(cfg.TTLDuration()), func() {}
	case server.CacheRedis:
		redisCache := cache.NewRedisCache(cfg.RedisAddress, cfg.TTLDuration())
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, cache misses until it recovers",
				zap.String("op", "main.newCache"),
				zap.String("address", cfg.RedisAddress),
				zap.Error(err),
			)
		}
		return redisCache, func() { _ = redisCache.Close() }
	}
	return nil, func() {}
}
