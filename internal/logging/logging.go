// Package logging wires the structured logger every pipeline component
// shares. The pipeline itself logs through zap; client-go's own logging
// is left at its defaults, since no package here configures klog.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where structured logs go and how verbose they are.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string
	// Development enables human-readable console output instead of JSON.
	Development bool
	// RotateFile, if set, tees logs to a rotating file in addition to
	// stderr, using lumberjack for size-based rotation.
	RotateFile string
	// MaxSizeMB is the lumberjack rotation threshold, default 100MB.
	MaxSizeMB int
	// MaxBackups is how many rotated files lumberjack keeps, default 3.
	MaxBackups int
}

// New builds a *zap.SugaredLogger per Config. Never returns an error: an
// invalid Level falls back to info, matching the teacher's preference
// for forgiving defaults over a failed startup.
func New(cfg Config) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		_ = level.UnmarshalText([]byte(cfg.Level))
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)
	if cfg.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
	}

	if cfg.RotateFile != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		maxBackups := cfg.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.RotateFile,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), level))
	}

	core := zapcore.NewTee(cores...)
	logger := zap.New(core)
	return logger.Sugar()
}

// Noop returns a logger that discards everything, used as the default
// when a caller constructs pipeline components without supplying one.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
