package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 6*time.Hour, cfg.JobStatusTTL)
	assert.Equal(t, 6*time.Hour, cfg.JobResultTTL)
	assert.Equal(t, 24*time.Hour, cfg.WordScoreTTL)
	assert.Equal(t, 10*time.Second, cfg.LexiconTimeout)
	assert.Equal(t, 100, cfg.MaxWordsPerBatch)
	assert.Equal(t, 50, cfg.MaxWordLength)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.TimeoutBackoff)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("MAX_ATTEMPTS", "7")
	t.Setenv("WORD_SCORE_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis:6380", cfg.RedisAddr)
	assert.Equal(t, 7, cfg.MaxAttempts)
	assert.Equal(t, time.Hour, cfg.WordScoreTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("MAX_ATTEMPTS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_ATTEMPTS")
}
