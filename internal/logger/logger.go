// Package logger builds the zap loggers used by the server and the CLI.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns the long-running server logger: colored debug output in
// development, JSON at info level otherwise.
func New(development bool) (*zap.Logger, error) {
	return config(development).Build()
}

// NewQuiet returns the logger for one-shot commands. Only warnings and
// errors reach stderr unless development is set.
func NewQuiet(development bool) (*zap.Logger, error) {
	cfg := config(development)
	if !development {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return cfg.Build()
}

// Must is New that panics on error.
func Must(development bool) *zap.Logger {
	log, err := New(development)
	if err != nil {
		panic(err)
	}
	return log
}

func config(development bool) zap.Config {
	if !development {
		return zap.NewProductionConfig()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}
