// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The enquiry service writes lifecycle, submission, and error events to one
// JSON log per day under `<dir>/YYYY-MM-DD.log`.  Level and retention come
// from the `logging` config section; with Console set (or in a TTY) the same
// events are teed, colorized, to stdout.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Dir: cfg.LogDir(), Level: "info"})
//	if err != nil { … }
//	log.Infow("submission acknowledged", "form", "contact")
//
// Handlers never hold a logger of their own.  The request-ID middleware
// stores a child logger in the request context, and code downstream pulls it
// back out with FromContext so every line carries the request ID.
package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is stamped on every line so shipped logs can be filtered.
const Service = "krishnacabs"

// Options configures New.  Zero retention values take the defaults below.
type Options struct {
	Dir        string
	Console    bool   // tee a colorized copy to stdout
	Level      string // debug, info, warn, error; empty means info
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 7
	defaultMaxAgeDays = 14
)

// New returns a *zap.SugaredLogger built from o and installs it as the
// process-wide default via zap.ReplaceGlobals.
func New(o Options) (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if o.Level != "" {
		l, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		level = l
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return nil, err
	}

	sink := &lumberjack.Logger{
		Filename:   filepath.Join(o.Dir, time.Now().Format("2006-01-02")+".log"),
		MaxSize:    orDefault(o.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(o.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(o.MaxAgeDays, defaultMaxAgeDays),
		Compress:   true,
	}

	enc := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		MessageKey:    "msg",
		CallerKey:     "caller",
		StacktraceKey: "stack",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(sink), level),
	}
	if o.Console {
		console := enc
		console.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		cores = append(cores,
			zapcore.NewCore(zapcore.NewConsoleEncoder(console), zapcore.Lock(os.Stdout), level))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", Service)),
		zap.ErrorOutput(zapcore.AddSync(sink)),
	).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "dir", o.Dir, "level", level.String(), "console", o.Console)
	return z, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// -----------------------------------------------------------------------------
// Request-scoped logger
// -----------------------------------------------------------------------------

type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by WithContext, or the global
// logger when none is present.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && l != nil {
			return l
		}
	}
	return zap.S()
}
