package logger

import (
	"fmt"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. JSON output with ISO 8601 "timestamp" fields is used in
// production or when logging.format is json; otherwise a coloured console encoder.
// An unparsable level falls back to info.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.Sampling = nil
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zapCfg.Build(zap.Fields(
		zap.String("app", appCfg.Name),
		zap.String("environment", appCfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// WithRequest scopes a logger to one HTTP request
func WithRequest(log *zap.Logger, method, path, requestID string) *zap.Logger {
	return log.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	)
}

// WithJob scopes a logger to one background job
func WithJob(log *zap.Logger, job string) *zap.Logger {
	return log.Named("jobs").With(zap.String("job", job))
}
