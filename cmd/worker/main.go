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

	"word-complexity-api/internal/config"
	"word-complexity-api/internal/lexicon"
	"word-complexity-api/internal/logging"
	"word-complexity-api/internal/queue"
	"word-complexity-api/internal/store"
	"word-complexity-api/internal/telemetry"
	workerproc "word-complexity-api/internal/worker"
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

	q := queue.NewRedisQueue(rdb, queue.Options{
		VisibilityTimeout: cfg.VisibilityTimeout,
		TaskTTL:           cfg.TaskTTL,
		DLQName:           cfg.DLQName,
	})
	batches := workerproc.NewBatchWorker(
		store.NewWordScores(rdb, cfg.WordScoreTTL),
		lexicon.NewClient(lexicon.Options{
			BaseURL: cfg.LexiconBaseURL,
			Timeout: cfg.LexiconTimeout,
			MaxBody: cfg.LexiconMaxBody,
		}, log),
		store.NewJobs(rdb, cfg.JobStatusTTL, cfg.JobResultTTL),
		log,
	)
	processor := workerproc.NewProcessor(cfg, q, batches.HandleTask, log)

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           telemetry.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelShutdown()
		return metricsServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		log.Info("worker started",
			zap.Duration("visibility", cfg.VisibilityTimeout),
			zap.Duration("backoff_initial", cfg.BackoffInitial),
			zap.Int("concurrency", cfg.WorkerConcurrency),
		)
		err := processor.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("worker stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("worker stopped")
}
