// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log *zap.SugaredLogger

// Options controls logger construction
type Options struct {
	Debug bool

	// File, when set, receives a copy of every log entry with size-based rotation
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init initializes the package-level logger
func Init(opts Options) error {
	var zapLogger *zap.Logger
	var err error

	hook := zap.Hooks(captureEntry)

	if opts.Debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1), hook)
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1), hook)
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	if opts.File != "" {
		zapLogger = zapLogger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, newFileCore(opts))
		}))
	}

	log = zapLogger.Sugar()
	return nil
}

func newFileCore(opts Options) zapcore.Core {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	writer := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(writer), level)
}

// captureEntry copies each entry into the in-memory application log buffer
func captureEntry(e zapcore.Entry) error {
	GetLogBuffer().AddEntry(LogEntry{
		Timestamp: e.Time,
		Level:     e.Level.String(),
		Message:   e.Message,
		Caller:    e.Caller.TrimmedPath(),
	})
	return nil
}

// GetSugaredLogger returns the sugared logger instance
func GetSugaredLogger() *zap.SugaredLogger {
	if log == nil {
		// Fallback logger if not initialized
		fallback, _ := zap.NewProduction(zap.AddCallerSkip(1))
		log = fallback.Sugar()
	}
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		log.Sync()
	}
}

// Package-level convenience functions
func Debugf(template string, args ...interface{}) {
	GetSugaredLogger().Debugf(template, args...)
}

func Info(args ...interface{}) {
	GetSugaredLogger().Info(args...)
}

func Infof(template string, args ...interface{}) {
	GetSugaredLogger().Infof(template, args...)
}

func Errorf(template string, args ...interface{}) {
	GetSugaredLogger().Errorf(template, args...)
}

func Fatalf(template string, args ...interface{}) {
	GetSugaredLogger().Fatalf(template, args...)
	os.Exit(1)
}
