// pkg/config/logger.go
package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from LogLevel and LogFormat. "json" gives
// the production encoder, "console" the development one.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	format := "json"
	if cfg != nil {
		if cfg.LogLevel != "" {
			if err := level.UnmarshalText([]byte(strings.ToLower(cfg.LogLevel))); err != nil {
				return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
			}
		}
		if cfg.LogFormat != "" {
			format = strings.ToLower(cfg.LogFormat)
		}
	}

	var zcfg zap.Config
	switch format {
	case "json":
		zcfg = zap.NewProductionConfig()
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (want json or console)", format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
