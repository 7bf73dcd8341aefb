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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	api "word-complexity-api/internal/api"
	"word-complexity-api/internal/config"
	"word-complexity-api/internal/gateway"
	"word-complexity-api/internal/logging"
	"word-complexity-api/internal/queue"
	"word-complexity-api/internal/ratelimit"
	"word-complexity-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.Must(cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	jobs := store.NewJobs(rdb, cfg.JobStatusTTL, cfg.JobResultTTL)
	q := queue.NewRedisQueue(rdb, queue.Options{
		VisibilityTimeout: cfg.VisibilityTimeout,
		TaskTTL:           cfg.TaskTTL,
		DLQName:           cfg.DLQName,
	})
	limiter := ratelimit.NewTokenBucket(rdb, cfg.RateLimitCapacity, cfg.RateLimitRefill, time.Hour)

	server := api.New(cfg, gateway.New(jobs, q, cfg.MaxAttempts, log), log,
		api.WithLimiter(limiter),
		api.WithDeadLetters(q),
		api.WithHealthCheck(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	)
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelShutdown()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("api stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("api stopped")
}
