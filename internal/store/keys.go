package store

import (
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"word-complexity-api/internal/apperr"
	"word-complexity-api/internal/batchkey"
)

// Key prefixes are part of the external contract; inspection tooling reads them.
const (
	jobStatusPrefix = "job_status:"
	jobResultPrefix = "job_result:"
	wordScorePrefix = "word_score:"
)

func statusKey(key string) string {
	return jobStatusPrefix + batchkey.ExtractID(key)
}

func resultKey(key string) string {
	return jobResultPrefix + batchkey.ExtractID(key)
}

func wordScoreKey(word string) string {
	return wordScorePrefix + strings.ToLower(word)
}

// unavailable tags a Redis failure so callers never mistake it for a miss.
func unavailable(op string, err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return apperr.E(apperr.StoreUnavailable, op, err)
}
