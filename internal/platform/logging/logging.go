// Package logging builds the zap loggers shared by cardclash processes.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the encoder and minimum level for a process logger.
type Config struct {
	Level       string `env:"CARDCLASH_LOG_LEVEL" envDefault:"info"`
	Development bool   `env:"CARDCLASH_LOG_DEVELOPMENT" envDefault:"false"`
}

// New builds a logger named after the service. Development mode uses the
// console encoder; otherwise JSON lines are written to stderr.
func New(service string, cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if service = strings.TrimSpace(service); service != "" {
		logger = logger.Named(service).With(zap.String("service", service))
	}
	return logger, nil
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Printf adapts a logger to the printf-style callbacks used by dial helpers.
func Printf(logger *zap.Logger) func(string, ...any) {
	sugar := OrNop(logger).Sugar()
	return func(format string, args ...any) {
		sugar.Infof(format, args...)
	}
}
