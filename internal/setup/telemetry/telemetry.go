// Package telemetry builds the application's zap loggers.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/setup/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GetLoggers creates the main and database loggers. The database logger
// stays at Warn unless debug logging is on, to keep query noise out of the
// main log.
func GetLoggers(cfg *config.Debug) (*zap.Logger, *zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	main, err := newLogger(cfg, "bot", level)
	if err != nil {
		return nil, nil, err
	}

	dbLevel := zapcore.WarnLevel
	if level == zapcore.DebugLevel {
		dbLevel = zapcore.DebugLevel
	}

	db, err := newLogger(cfg, "database", dbLevel)
	if err != nil {
		return nil, nil, err
	}

	return main, db, nil
}

// newLogger builds a console logger, teeing into a session log file when a
// log directory is configured.
func newLogger(cfg *config.Debug, name string, level zapcore.Level) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		level,
	)

	if cfg.LogDir == "" {
		return zap.New(consoleCore), nil
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(cfg.LogDir, fmt.Sprintf("%s_%s.log", name, time.Now().Format("20060102_150405")))

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(logFile),
		level,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore)), nil
}
