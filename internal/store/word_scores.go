package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// WordScores caches computed scores per lower-cased word.
type WordScores struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewWordScores builds the cache; a non-positive ttl falls back to 24h.
func NewWordScores(client redis.Cmdable, ttl time.Duration) *WordScores {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &WordScores{client: client, ttl: ttl}
}

// Get returns the cached score for word. ok is false on a miss.
func (w *WordScores) Get(ctx context.Context, word string) (score float64, ok bool, err error) {
	raw, err := w.client.Get(ctx, wordScoreKey(word)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, unavailable("store.WordScores.Get", err)
	}
	score, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		// An unreadable entry is treated as a miss and will be overwritten.
		return 0, false, nil
	}
	return score, true, nil
}

// Put caches score for word.
func (w *WordScores) Put(ctx context.Context, word string, score float64) error {
	value := strconv.FormatFloat(score, 'f', -1, 64)
	if err := w.client.Set(ctx, wordScoreKey(word), value, w.ttl).Err(); err != nil {
		return unavailable("store.WordScores.Put", err)
	}
	return nil
}
