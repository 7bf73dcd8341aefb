package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"word-complexity-api/internal/apperr"
	"word-complexity-api/internal/models"
)

// Jobs keeps per-job status markers and results in Redis. Keys accept either
// a bare job id or its batch: namespaced form.
type Jobs struct {
	client    redis.Cmdable
	statusTTL time.Duration
	resultTTL time.Duration
}

// NewJobs builds a job status store on an existing client handle.
func NewJobs(client redis.Cmdable, statusTTL, resultTTL time.Duration) *Jobs {
	if statusTTL <= 0 {
		statusTTL = 6 * time.Hour
	}
	if resultTTL <= 0 {
		resultTTL = 6 * time.Hour
	}
	return &Jobs{client: client, statusTTL: statusTTL, resultTTL: resultTTL}
}

// ResultExists reports whether a completed result is stored for key.
// Pending and failed markers are ignored.
func (j *Jobs) ResultExists(ctx context.Context, key string) (bool, error) {
	n, err := j.client.Exists(ctx, resultKey(key)).Result()
	if err != nil {
		return false, unavailable("store.ResultExists", err)
	}
	return n > 0, nil
}

// Status returns the observable state of a job. A stored result always wins
// over a leftover marker. found is false when neither exists.
func (j *Jobs) Status(ctx context.Context, key string) (view models.JobView, found bool, err error) {
	result, ok, err := j.Result(ctx, key)
	if err != nil {
		return models.JobView{}, false, err
	}
	if ok {
		return models.JobView{Status: models.StatusCompleted, Result: result}, true, nil
	}

	marker, err := j.client.Get(ctx, statusKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return models.JobView{}, false, nil
	}
	if err != nil {
		return models.JobView{}, false, unavailable("store.Status", err)
	}
	switch models.JobStatus(marker) {
	case models.StatusPending, models.StatusFailed:
		return models.JobView{Status: models.JobStatus(marker)}, true, nil
	default:
		return models.JobView{}, false, nil
	}
}

// Result reads the stored result for key.
func (j *Jobs) Result(ctx context.Context, key string) (models.Result, bool, error) {
	raw, err := j.client.Get(ctx, resultKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("store.Result", err)
	}
	var result models.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, apperr.E(apperr.Internal, "store.Result", fmt.Errorf("decode result: %w", err))
	}
	if result == nil {
		result = models.Result{}
	}
	return result, true, nil
}

// MarkPending writes the pending marker, replacing any previous marker.
func (j *Jobs) MarkPending(ctx context.Context, key string) error {
	return j.setMarker(ctx, "store.MarkPending", key, models.StatusPending)
}

// MarkFailed writes the failed marker, replacing any previous marker.
func (j *Jobs) MarkFailed(ctx context.Context, key string) error {
	return j.setMarker(ctx, "store.MarkFailed", key, models.StatusFailed)
}

func (j *Jobs) setMarker(ctx context.Context, op, key string, status models.JobStatus) error {
	if err := j.client.Set(ctx, statusKey(key), string(status), j.statusTTL).Err(); err != nil {
		return unavailable(op, err)
	}
	return nil
}

// SaveResult stores the result and then clears the marker. The order means a
// concurrent reader may briefly see both, never neither.
func (j *Jobs) SaveResult(ctx context.Context, key string, result models.Result) error {
	if result == nil {
		result = models.Result{}
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return apperr.E(apperr.Internal, "store.SaveResult", fmt.Errorf("encode result: %w", err))
	}
	if err := j.client.Set(ctx, resultKey(key), payload, j.resultTTL).Err(); err != nil {
		return unavailable("store.SaveResult", err)
	}
	if err := j.client.Del(ctx, statusKey(key)).Err(); err != nil {
		return unavailable("store.SaveResult", err)
	}
	return nil
}
