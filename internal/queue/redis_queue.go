package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"word-complexity-api/internal/apperr"
	"word-complexity-api/internal/models"
)

// ErrTaskNotFound is returned by Load when the task hash has expired or was acked.
var ErrTaskNotFound = errors.New("queue: task not found")

// ErrTaskCorrupt is returned by Load when the stored payload cannot be decoded.
// Redelivering such a task can never succeed.
var ErrTaskCorrupt = errors.New("queue: task payload corrupt")

// Options configures a RedisQueue. Zero values fall back to defaults.
type Options struct {
	VisibilityTimeout time.Duration
	TaskTTL           time.Duration
	DLQName           string
}

// RedisQueue coordinates ready, in-flight, and scheduled scoring tasks in Redis.
type RedisQueue struct {
	client        *redis.Client
	readyKey      string
	inflightKey   string
	scheduledKey  string
	taskPrefix    string
	dlqKey        string
	visibilityTTL time.Duration
	taskTTL       time.Duration
}

// NewRedisQueue builds a queue on an existing client handle.
func NewRedisQueue(client *redis.Client, opts Options) *RedisQueue {
	if opts.VisibilityTimeout == 0 {
		opts.VisibilityTimeout = 5 * time.Minute
	}
	if opts.TaskTTL == 0 {
		opts.TaskTTL = 24 * time.Hour
	}
	if opts.DLQName == "" {
		opts.DLQName = "queue:dlq"
	}
	return &RedisQueue{
		client:        client,
		readyKey:      "queue:ready",
		inflightKey:   "queue:inflight",
		scheduledKey:  "queue:scheduled",
		taskPrefix:    "queue:task:",
		dlqKey:        opts.DLQName,
		visibilityTTL: opts.VisibilityTimeout,
		taskTTL:       opts.TaskTTL,
	}
}

func (q *RedisQueue) taskKey(id string) string {
	return q.taskPrefix + id
}

// Enqueue stores the task payload and pushes it onto the ready queue. A task
// without an ID gets a fresh one, so duplicate submissions stay distinct.
func (q *RedisQueue) Enqueue(ctx context.Context, task models.Task) (models.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	words, err := json.Marshal(task.Words)
	if err != nil {
		return task, fmt.Errorf("encode words: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, q.taskKey(task.ID),
		"batch_key", task.BatchKey,
		"words", string(words),
		"attempts", task.Attempts,
		"max_attempts", task.MaxAttempts,
	)
	pipe.Expire(ctx, q.taskKey(task.ID), q.taskTTL)
	pipe.RPush(ctx, q.readyKey, task.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return task, apperr.E(apperr.StoreUnavailable, "queue.Enqueue", err)
	}
	return task, nil
}

// Load reads a task payload by ID.
func (q *RedisQueue) Load(ctx context.Context, id string) (models.Task, error) {
	fields, err := q.client.HGetAll(ctx, q.taskKey(id)).Result()
	if err != nil {
		return models.Task{}, apperr.E(apperr.StoreUnavailable, "queue.Load", err)
	}
	if len(fields) == 0 {
		return models.Task{}, ErrTaskNotFound
	}
	task := models.Task{
		ID:        id,
		BatchKey:  fields["batch_key"],
		LastError: fields["last_error"],
	}
	task.Attempts, _ = strconv.Atoi(fields["attempts"])
	task.MaxAttempts, _ = strconv.Atoi(fields["max_attempts"])
	if err := json.Unmarshal([]byte(fields["words"]), &task.Words); err != nil {
		return task, fmt.Errorf("%w: decode task %s words: %v", ErrTaskCorrupt, id, err)
	}
	return task, nil
}

// PromoteScheduled moves due retries into the ready queue. It returns how many were promoted.
func (q *RedisQueue) PromoteScheduled(ctx context.Context, now time.Time, limit int64) (int, error) {
	return q.moveDue(ctx, q.scheduledKey, now, limit)
}

// RequeueExpired reclaims leases that timed out, re-enqueuing them.
func (q *RedisQueue) RequeueExpired(ctx context.Context, now time.Time, limit int64) (int, error) {
	return q.moveDue(ctx, q.inflightKey, now, limit)
}

func (q *RedisQueue) moveDue(ctx context.Context, from string, now time.Time, limit int64) (int, error) {
	ids, err := q.client.ZRangeByScore(ctx, from, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    strconv.FormatInt(now.UnixMilli(), 10),
		Offset: 0,
		Count:  limit,
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	moved := 0
	for _, id := range ids {
		// ZREM guards against another worker moving the same member.
		n, err := moveScript.Run(ctx, q.client, []string{from, q.readyKey}, id).Int()
		if err != nil {
			return moved, err
		}
		moved += n
	}
	return moved, nil
}

// DequeueWithLease pops the next ready task and places it into in-flight
// tracking with a visibility deadline. It returns "" when the queue is empty.
func (q *RedisQueue) DequeueWithLease(ctx context.Context) (string, error) {
	deadline := time.Now().Add(q.visibilityTTL).UnixMilli()
	res, err := dequeueScript.Run(ctx, q.client, []string{q.readyKey, q.inflightKey}, deadline).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	id, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("unexpected type from dequeue script: %T", res)
	}
	return id, nil
}

// ExtendLease pushes the visibility deadline forward for an in-flight task.
func (q *RedisQueue) ExtendLease(ctx context.Context, id string, extension time.Duration) error {
	return q.client.ZAddXX(ctx, q.inflightKey, redis.Z{
		Score:  float64(time.Now().Add(extension).UnixMilli()),
		Member: id,
	}).Err()
}

// Ack finishes a task: it leaves in-flight tracking and its payload is dropped.
func (q *RedisQueue) Ack(ctx context.Context, id string) error {
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, q.inflightKey, id)
	pipe.Del(ctx, q.taskKey(id))
	_, err := pipe.Exec(ctx)
	return err
}

// Retry records the failed attempt and schedules the task to run again at runAt.
func (q *RedisQueue) Retry(ctx context.Context, task models.Task, runAt time.Time) error {
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, q.inflightKey, task.ID)
	pipe.HSet(ctx, q.taskKey(task.ID), "attempts", task.Attempts, "last_error", task.LastError)
	pipe.ZAdd(ctx, q.scheduledKey, redis.Z{Score: float64(runAt.UnixMilli()), Member: task.ID})
	_, err := pipe.Exec(ctx)
	return err
}

// DeadLetter removes the task from in-flight tracking and appends it to the
// dead-letter queue. The payload is kept for one more task TTL for inspection.
func (q *RedisQueue) DeadLetter(ctx context.Context, task models.Task) error {
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, q.inflightKey, task.ID)
	pipe.HSet(ctx, q.taskKey(task.ID), "attempts", task.Attempts, "last_error", task.LastError)
	pipe.Expire(ctx, q.taskKey(task.ID), q.taskTTL)
	pipe.RPush(ctx, q.dlqKey, task.ID)
	_, err := pipe.Exec(ctx)
	return err
}

// DLQPeek reads the oldest dead-lettered task IDs.
func (q *RedisQueue) DLQPeek(ctx context.Context, count int64) ([]string, error) {
	return q.client.LRange(ctx, q.dlqKey, 0, count-1).Result()
}

// ReadyDepth returns the length of the ready queue.
func (q *RedisQueue) ReadyDepth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.readyKey).Result()
}

// InFlight returns how many tasks currently hold a lease.
func (q *RedisQueue) InFlight(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.inflightKey).Result()
}

var dequeueScript = redis.NewScript(`
local job = redis.call('LPOP', KEYS[1])
if job then
  redis.call('ZADD', KEYS[2], ARGV[1], job)
  return job
end
return nil
`)

var moveScript = redis.NewScript(`
if redis.call('ZREM', KEYS[1], ARGV[1]) == 1 then
  redis.call('RPUSH', KEYS[2], ARGV[1])
  return 1
end
return 0
`)
