package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds shared runtime configuration for the API and worker services.
type Config struct {
	Env             string        `yaml:"env"              env:"APP_ENV"          env-default:"dev"`
	HTTPPort        string        `yaml:"http_port"        env:"HTTP_PORT"        env-default:"8080"`
	MetricsAddr     string        `yaml:"metrics_addr"     env:"METRICS_ADDR"     env-default:":9090"`
	LogLevel        string        `yaml:"log_level"        env:"LOG_LEVEL"        env-default:"info"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`

	RedisAddr     string `yaml:"redis_addr"     env:"REDIS_ADDR"     env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"       env:"REDIS_DB"       env-default:"0"`

	LexiconBaseURL string        `yaml:"lexicon_base_url" env:"LEXICON_BASE_URL" env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	LexiconTimeout time.Duration `yaml:"lexicon_timeout"  env:"LEXICON_TIMEOUT"  env-default:"10s"`
	LexiconMaxBody int64         `yaml:"lexicon_max_body" env:"LEXICON_MAX_BODY" env-default:"2097152"`

	JobStatusTTL time.Duration `yaml:"job_status_ttl" env:"JOB_STATUS_TTL" env-default:"6h"`
	JobResultTTL time.Duration `yaml:"job_result_ttl" env:"JOB_RESULT_TTL" env-default:"6h"`
	WordScoreTTL time.Duration `yaml:"word_score_ttl" env:"WORD_SCORE_TTL" env-default:"24h"`
	TaskTTL      time.Duration `yaml:"task_ttl"       env:"TASK_TTL"       env-default:"24h"`

	MaxWordsPerBatch int `yaml:"max_words_per_batch" env:"MAX_WORDS_PER_BATCH" env-default:"100"`
	MaxWordLength    int `yaml:"max_word_length"     env:"MAX_WORD_LENGTH"     env-default:"50"`

	MaxAttempts        int           `yaml:"max_attempts"         env:"MAX_ATTEMPTS"         env-default:"3"`
	BackoffInitial     time.Duration `yaml:"backoff_initial"      env:"BACKOFF_INITIAL"      env-default:"2s"`
	BackoffMax         time.Duration `yaml:"backoff_max"          env:"BACKOFF_MAX"          env-default:"5m"`
	TimeoutBackoff     time.Duration `yaml:"timeout_backoff"      env:"TIMEOUT_BACKOFF"      env-default:"5s"`
	VisibilityTimeout  time.Duration `yaml:"visibility_timeout"   env:"VISIBILITY_TIMEOUT"   env-default:"5m"`
	WorkerPollInterval time.Duration `yaml:"worker_poll_interval" env:"WORKER_POLL_INTERVAL" env-default:"1s"`
	WorkerConcurrency  int           `yaml:"worker_concurrency"   env:"WORKER_CONCURRENCY"   env-default:"4"`
	ScheduledBatchSize int           `yaml:"scheduled_batch_size" env:"SCHEDULED_BATCH_SIZE" env-default:"100"`
	DLQName            string        `yaml:"dlq_name"             env:"DLQ_NAME"             env-default:"queue:dlq"`

	RateLimitCapacity int     `yaml:"rate_limit_capacity"       env:"RATE_LIMIT_CAPACITY"       env-default:"50"`
	RateLimitRefill   float64 `yaml:"rate_limit_refill_per_sec" env:"RATE_LIMIT_REFILL_PER_SEC" env-default:"20"`
}

// Load reads configuration from environment variables with sane defaults for local development.
// When CONFIG_PATH points at a YAML file it is read first and the environment overrides it.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load for binaries that cannot start without configuration.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects values the services cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required"))
	}
	if c.LexiconBaseURL == "" {
		errs = append(errs, errors.New("LEXICON_BASE_URL is required"))
	}
	if c.MaxWordsPerBatch <= 0 {
		errs = append(errs, errors.New("MAX_WORDS_PER_BATCH must be positive"))
	}
	if c.MaxWordLength <= 0 {
		errs = append(errs, errors.New("MAX_WORD_LENGTH must be positive"))
	}
	if c.MaxAttempts <= 0 {
		errs = append(errs, errors.New("MAX_ATTEMPTS must be positive"))
	}
	if c.WorkerConcurrency <= 0 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be positive"))
	}
	ttls := []struct {
		name string
		ttl  time.Duration
	}{
		{"JOB_STATUS_TTL", c.JobStatusTTL},
		{"JOB_RESULT_TTL", c.JobResultTTL},
		{"WORD_SCORE_TTL", c.WordScoreTTL},
	}
	for _, t := range ttls {
		if t.ttl <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", t.name))
		}
	}
	return errors.Join(errs...)
}
