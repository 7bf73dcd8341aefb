// Package logging builds the zap loggers shared by the API and worker binaries.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger at level, or a console logger in the dev environment.
func New(level, env string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Must is New for binaries; an unusable level falls back to info.
func Must(level, env string) *zap.Logger {
	log, err := New(level, env)
	if err == nil {
		return log
	}
	log, buildErr := New("info", env)
	if buildErr != nil {
		panic(buildErr)
	}
	log.Warn("invalid log level configured, using info", zap.String("configured_level", level), zap.Error(err))
	return log
}
