package log

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface used across the circulation desk and console.
type Logger interface {
	Debug(ctx context.Context, args ...any)
	Debugf(ctx context.Context, template string, args ...any)
	Info(ctx context.Context, args ...any)
	Infof(ctx context.Context, template string, args ...any)
	Warn(ctx context.Context, args ...any)
	Warnf(ctx context.Context, template string, args ...any)
	Error(ctx context.Context, args ...any)
	Errorf(ctx context.Context, template string, args ...any)
}

type ZapConfig struct {
	Level        string
	Mode         string // "production" or "development"
	Encoding     string // "json" or "console"
	ColorEnabled bool
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

type ctxFieldsKey struct{}

// WithFields attaches key/value pairs that every log line written with ctx carries.
func WithFields(ctx context.Context, kv ...any) context.Context {
	prev, _ := ctx.Value(ctxFieldsKey{}).([]any)
	fields := make([]any, 0, len(prev)+len(kv))
	fields = append(fields, prev...)
	fields = append(fields, kv...)
	return context.WithValue(ctx, ctxFieldsKey{}, fields)
}

// Init builds a zap logger from cfg. An unparsable level falls back to info.
func Init(cfg ZapConfig) Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Mode == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.ColorEnabled && zc.Encoding == "console" {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zc.OutputPaths = []string{"stderr"}

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.Sugar()}
}

// New wraps an existing zap logger.
func New(l *zap.Logger) Logger {
	return &zapLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (z *zapLogger) with(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return z.sugar
	}
	if fields, ok := ctx.Value(ctxFieldsKey{}).([]any); ok && len(fields) > 0 {
		return z.sugar.With(fields...)
	}
	return z.sugar
}

func (z *zapLogger) Debug(ctx context.Context, args ...any) { z.with(ctx).Debug(args...) }
func (z *zapLogger) Debugf(ctx context.Context, template string, args ...any) {
	z.with(ctx).Debugf(template, args...)
}
func (z *zapLogger) Info(ctx context.Context, args ...any) { z.with(ctx).Info(args...) }
func (z *zapLogger) Infof(ctx context.Context, template string, args ...any) {
	z.with(ctx).Infof(template, args...)
}
func (z *zapLogger) Warn(ctx context.Context, args ...any) { z.with(ctx).Warn(args...) }
func (z *zapLogger) Warnf(ctx context.Context, template string, args ...any) {
	z.with(ctx).Warnf(template, args...)
}
func (z *zapLogger) Error(ctx context.Context, args ...any) { z.with(ctx).Error(args...) }
func (z *zapLogger) Errorf(ctx context.Context, template string, args ...any) {
	z.with(ctx).Errorf(template, args...)
}
