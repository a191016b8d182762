package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/horizonengine/harness/internal/config"
)

// newLogger builds the process logger, tagged with the example name. An
// unknown level falls back to info and is reported once the logger exists.
func newLogger(cfg config.LoggingConfig, example string) (*zap.Logger, error) {
	level, levelErr := zapcore.ParseLevel(cfg.Level)
	if levelErr != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format != "json" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.EncodeName = zapcore.FullNameEncoder
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	log = log.Named("horizon").With(zap.String("example", example))
	if levelErr != nil {
		log.Warn("unknown log level, using info", zap.String("level", cfg.Level))
	}
	return log, nil
}
