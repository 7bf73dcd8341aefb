// Package gateway accepts word batches, deduplicates them by content, and
// answers status polls.
package gateway

import (
	"context"

	"go.uber.org/zap"

	"word-complexity-api/internal/apperr"
	"word-complexity-api/internal/batchkey"
	"word-complexity-api/internal/models"
	"word-complexity-api/internal/telemetry"
)

// JobStore is the subset of the job status store the gateway needs.
type JobStore interface {
	ResultExists(ctx context.Context, key string) (bool, error)
	Status(ctx context.Context, key string) (models.JobView, bool, error)
	MarkPending(ctx context.Context, key string) error
}

// Scheduler hands a task to the asynchronous worker pool.
type Scheduler interface {
	Enqueue(ctx context.Context, task models.Task) (models.Task, error)
}

// Gateway is the entry point for submissions and polling.
type Gateway struct {
	jobs        JobStore
	scheduler   Scheduler
	maxAttempts int
	log         *zap.Logger
}

// New builds a Gateway. maxAttempts is recorded on every scheduled task.
func New(jobs JobStore, scheduler Scheduler, maxAttempts int, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		jobs:        jobs,
		scheduler:   scheduler,
		maxAttempts: maxAttempts,
		log:         log.Named("gateway"),
	}
}

// Submit derives the job id for an already processed (deduplicated, sorted)
// batch and schedules scoring unless a result already exists. It never waits
// for the worker. Concurrent submissions of the same batch may both schedule
// work; the duplicate run rewrites an identical result.
func (g *Gateway) Submit(ctx context.Context, words []string) (string, error) {
	id := batchkey.Derive(words)
	key := batchkey.Namespaced(id)
	log := g.log.With(zap.String("job_id", id))

	exists, err := g.jobs.ResultExists(ctx, key)
	if err != nil {
		return "", err
	}
	if exists {
		telemetry.BatchesDeduped.Inc()
		log.Debug("result already cached, skipping schedule")
		return id, nil
	}

	if err := g.jobs.MarkPending(ctx, key); err != nil {
		return "", err
	}
	task, err := g.scheduler.Enqueue(ctx, models.Task{
		BatchKey:    key,
		Words:       words,
		MaxAttempts: g.maxAttempts,
	})
	if err != nil {
		// Only a worker writes failed; a queued task may still own this key.
		log.Error("enqueue failed", zap.Error(err))
		if apperr.KindOf(err) == apperr.Internal {
			return "", apperr.E(apperr.StoreUnavailable, "gateway.Submit", err)
		}
		return "", err
	}

	telemetry.BatchesSubmitted.Inc()
	log.Info("batch scheduled", zap.String("task_id", task.ID), zap.Int("words", len(words)))
	return id, nil
}

// Status validates jobID before touching the store and returns the job view.
func (g *Gateway) Status(ctx context.Context, jobID string) (models.JobView, error) {
	const op = "gateway.Status"
	if !batchkey.Valid(jobID) {
		return models.JobView{}, apperr.Errorf(apperr.InvalidInput, op, "Invalid job ID format")
	}
	view, found, err := g.jobs.Status(ctx, batchkey.Namespaced(jobID))
	if err != nil {
		return models.JobView{}, err
	}
	if !found {
		return models.JobView{}, apperr.Errorf(apperr.NotFound, op, "Job not found")
	}
	return view, nil
}
