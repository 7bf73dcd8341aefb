package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"word-complexity-api/internal/apperr"
	"word-complexity-api/internal/config"
	"word-complexity-api/internal/models"
	"word-complexity-api/internal/queue"
	"word-complexity-api/internal/telemetry"
)

// Handler executes one scoring task.
type Handler func(ctx context.Context, task models.Task) error

// Processor drives the worker execution loop: it leases tasks, runs the
// handler, and retries or dead-letters failures.
type Processor struct {
	cfg     config.Config
	queue   *queue.RedisQueue
	handler Handler
	log     *zap.Logger
}

// NewProcessor creates a processor for handler.
func NewProcessor(cfg config.Config, q *queue.RedisQueue, handler Handler, log *zap.Logger) *Processor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 1
	}
	if cfg.WorkerPollInterval <= 0 {
		cfg.WorkerPollInterval = time.Second
	}
	if cfg.ScheduledBatchSize <= 0 {
		cfg.ScheduledBatchSize = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		cfg:     cfg,
		queue:   q,
		handler: handler,
		log:     log.Named("processor"),
	}
}

// Run starts the maintenance loop and WorkerConcurrency consumers until ctx
// is cancelled. Leased tasks interrupted by shutdown are reclaimed once
// their visibility timeout passes.
func (p *Processor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.maintain(ctx) })
	for i := 0; i < p.cfg.WorkerConcurrency; i++ {
		g.Go(func() error { return p.consume(ctx) })
	}
	return g.Wait()
}

func (p *Processor) maintain(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.WorkerPollInterval)
	defer ticker.Stop()

	for {
		p.Maintain(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Maintain promotes due retries, reclaims expired leases, and refreshes gauges.
func (p *Processor) Maintain(ctx context.Context) {
	now := time.Now()
	if n, err := p.queue.PromoteScheduled(ctx, now, int64(p.cfg.ScheduledBatchSize)); err != nil {
		p.log.Warn("promote scheduled tasks", zap.Error(err))
	} else if n > 0 {
		p.log.Debug("promoted scheduled tasks", zap.Int("count", n))
	}
	if n, err := p.queue.RequeueExpired(ctx, now, 100); err != nil {
		p.log.Warn("requeue expired leases", zap.Error(err))
	} else if n > 0 {
		p.log.Warn("reclaimed expired leases", zap.Int("count", n))
	}
	if depth, err := p.queue.ReadyDepth(ctx); err == nil {
		telemetry.QueueDepthGauge.Set(float64(depth))
	}
	if inflight, err := p.queue.InFlight(ctx); err == nil {
		telemetry.InFlightGauge.Set(float64(inflight))
	}
}

func (p *Processor) consume(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		worked, err := p.ProcessNext(ctx)
		if err != nil {
			p.log.Warn("dequeue failed", zap.Error(err))
		}
		if worked && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.WorkerPollInterval):
		}
	}
}

// ProcessNext leases and runs a single task. It reports false when the ready
// queue was empty.
func (p *Processor) ProcessNext(ctx context.Context) (bool, error) {
	id, err := p.queue.DequeueWithLease(ctx)
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, nil
	}

	task, err := p.queue.Load(ctx, id)
	if errors.Is(err, queue.ErrTaskNotFound) {
		p.log.Warn("dropping task without payload", zap.String("task_id", id))
		return true, p.queue.Ack(ctx, id)
	}
	if errors.Is(err, queue.ErrTaskCorrupt) {
		task.LastError = err.Error()
		if dlqErr := p.queue.DeadLetter(ctx, task); dlqErr != nil {
			p.log.Error("dead-letter corrupt task", zap.String("task_id", id), zap.Error(dlqErr))
		}
		telemetry.WorkerDeadLetter.Inc()
		p.log.Error("dead-lettered task with undecodable payload", zap.String("task_id", id), zap.Error(err))
		return true, nil
	}
	if err != nil {
		// The lease will expire and the task will be retried.
		return true, err
	}
	task.MaxAttempts = p.maxAttempts(task)

	log := p.log.With(zap.String("task_id", task.ID), zap.String("batch_key", task.BatchKey), zap.Int("attempt", task.Attempts+1))
	stopLease := p.keepLease(ctx, task.ID)
	err = p.runTask(ctx, task)
	stopLease()

	if err == nil {
		if ackErr := p.queue.Ack(ctx, task.ID); ackErr != nil {
			log.Warn("ack task", zap.Error(ackErr))
		}
		telemetry.WorkerSuccess.Inc()
		log.Info("task completed")
		return true, nil
	}

	task.Attempts++
	task.LastError = err.Error()

	if task.Attempts >= p.maxAttempts(task) {
		if dlqErr := p.queue.DeadLetter(ctx, task); dlqErr != nil {
			log.Error("dead-letter task", zap.Error(dlqErr))
		}
		telemetry.WorkerDeadLetter.Inc()
		log.Error("task exhausted retries", zap.Error(err))
		return true, nil
	}

	delay := p.retryDelay(err, task.Attempts)
	if retryErr := p.queue.Retry(ctx, task, time.Now().Add(delay)); retryErr != nil {
		log.Error("schedule retry", zap.Error(retryErr))
	}
	telemetry.WorkerFailures.Inc()
	log.Warn("task failed, retry scheduled", zap.Duration("backoff", delay), zap.Error(err))
	return true, nil
}

func (p *Processor) runTask(ctx context.Context, task models.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	if p.handler == nil {
		return errors.New("no handler registered")
	}
	return p.handler(ctx, task)
}

// keepLease extends the task's visibility deadline while the handler runs.
func (p *Processor) keepLease(ctx context.Context, id string) func() {
	visibility := p.cfg.VisibilityTimeout
	if visibility <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(visibility / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.queue.ExtendLease(ctx, id, visibility); err != nil {
					p.log.Warn("extend lease", zap.String("task_id", id), zap.Error(err))
				}
			}
		}
	}()
	return func() { close(done) }
}

func (p *Processor) maxAttempts(task models.Task) int {
	if task.MaxAttempts > 0 && task.MaxAttempts < p.cfg.MaxAttempts {
		return task.MaxAttempts
	}
	return p.cfg.MaxAttempts
}

// retryDelay uses the fixed timeout tier for timeouts and exponential
// backoff for everything else.
func (p *Processor) retryDelay(err error, attempt int) time.Duration {
	if apperr.IsTimeout(err) && p.cfg.TimeoutBackoff > 0 {
		return p.cfg.TimeoutBackoff
	}
	return backoffWithJitter(p.cfg.BackoffInitial, p.cfg.BackoffMax, attempt)
}

func backoffWithJitter(base, max time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return base
	}
	exp := float64(base) * math.Pow(2, float64(attempt-1))
	wait := time.Duration(exp)
	if wait > max || wait <= 0 {
		wait = max
	}
	if wait < 2 {
		return wait
	}
	jitter := time.Duration(rand.Int63n(int64(wait / 2)))
	return wait/2 + jitter
}
