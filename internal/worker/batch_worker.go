package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"word-complexity-api/internal/apperr"
	"word-complexity-api/internal/batchkey"
	"word-complexity-api/internal/lexicon"
	"word-complexity-api/internal/models"
	"word-complexity-api/internal/scoring"
	"word-complexity-api/internal/telemetry"
)

// WordScoreCache is the per-word cache the worker reads through.
type WordScoreCache interface {
	Get(ctx context.Context, word string) (float64, bool, error)
	Put(ctx context.Context, word string, score float64) error
}

// JobRecorder commits the terminal state of a job.
type JobRecorder interface {
	SaveResult(ctx context.Context, key string, result models.Result) error
	MarkFailed(ctx context.Context, key string) error
}

// BatchWorker scores one batch of words and records the outcome.
type BatchWorker struct {
	cache  WordScoreCache
	source lexicon.Source
	jobs   JobRecorder
	score  func([]lexicon.Entry) float64
	log    *zap.Logger
}

// NewBatchWorker wires a worker with the default scoring function.
func NewBatchWorker(cache WordScoreCache, source lexicon.Source, jobs JobRecorder, log *zap.Logger) *BatchWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchWorker{
		cache:  cache,
		source: source,
		jobs:   jobs,
		score:  scoring.Compute,
		log:    log.Named("batch"),
	}
}

// HandleTask adapts Process to the queue Handler signature. The job is
// marked failed only when this is the task's last attempt; earlier failures
// leave it pending while the retry is scheduled.
func (w *BatchWorker) HandleTask(ctx context.Context, task models.Task) error {
	final := task.MaxAttempts <= 0 || task.Attempts+1 >= task.MaxAttempts
	return w.process(ctx, task.BatchKey, task.Words, final)
}

// Process scores words in order, reusing cached scores, and saves the result
// under batchKey. A word whose lexical lookup fails scores as if it had no
// definitions. Any other failure marks the job failed and is returned.
func (w *BatchWorker) Process(ctx context.Context, batchKey string, words []string) error {
	return w.process(ctx, batchKey, words, true)
}

func (w *BatchWorker) process(ctx context.Context, batchKey string, words []string, markFailed bool) (err error) {
	log := w.log.With(zap.String("job_id", batchkey.ExtractID(batchKey)))
	log.Info("processing batch", zap.Int("words", len(words)))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while scoring: %v", r)
		}
		if err == nil {
			return
		}
		err = apperr.E(apperr.WorkerFailure, "worker.Process", err)
		if !markFailed {
			log.Warn("batch attempt failed", zap.Error(err))
			return
		}
		log.Error("batch failed", zap.Error(err))
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if markErr := w.jobs.MarkFailed(markCtx, batchKey); markErr != nil {
			log.Error("mark job failed", zap.Error(markErr))
		}
	}()

	result := make(models.Result, len(words))
	for _, word := range words {
		score, err := w.scoreWord(ctx, log, word)
		if err != nil {
			return fmt.Errorf("score %q: %w", word, err)
		}
		result[word] = score
	}

	if err := w.jobs.SaveResult(ctx, batchKey, result); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	log.Info("batch completed", zap.Int("words", len(result)))
	return nil
}

func (w *BatchWorker) scoreWord(ctx context.Context, log *zap.Logger, word string) (float64, error) {
	cached, ok, err := w.cache.Get(ctx, word)
	if err != nil {
		return 0, err
	}
	if ok {
		telemetry.WordCacheHits.Inc()
		return scoring.Round2(cached), nil
	}
	telemetry.WordCacheMisses.Inc()

	entries, err := w.fetch(ctx, log, word)
	if err != nil {
		return 0, err
	}
	score := w.score(entries)
	if err := w.cache.Put(ctx, word, score); err != nil {
		return 0, err
	}
	return score, nil
}

// fetch degrades lookup failures to no definitions. It only errors when the
// worker itself is being cancelled, so a shutdown never caches a zero score.
func (w *BatchWorker) fetch(ctx context.Context, log *zap.Logger, word string) ([]lexicon.Entry, error) {
	start := time.Now()
	entries, err := w.source.Fetch(ctx, word)
	telemetry.LexiconFetchLatency.Observe(time.Since(start).Seconds())
	if err == nil {
		return entries, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	telemetry.WordFetchFailures.Inc()
	log.Warn("failed to fetch lexical data, scoring as no definitions", zap.String("word", word), zap.Error(err))
	return nil, nil
}
