package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the structured logger passed to every component.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...any)
	Info(ctx context.Context, msg string, fields ...any)
	Warn(ctx context.Context, err error, msg string, fields ...any)
	Error(ctx context.Context, err error, msg string, fields ...any)

	With(fields ...any) Logger
	WithComponent(component string) Logger
}

// Config selects level, format ("text" or "json") and destination.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

type slogLogger struct {
	logger    *slog.Logger
	component string
}

// New builds a slog-backed Logger. A nil Output means stdout.
func New(cfg Config) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return &slogLogger{logger: slog.New(h)}
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return &slogLogger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel maps debug/info/warn/error to slog levels; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...any) {
	l.log(ctx, slog.LevelDebug, nil, msg, fields...)
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...any) {
	l.log(ctx, slog.LevelInfo, nil, msg, fields...)
}

func (l *slogLogger) Warn(ctx context.Context, err error, msg string, fields ...any) {
	l.log(ctx, slog.LevelWarn, err, msg, fields...)
}

func (l *slogLogger) Error(ctx context.Context, err error, msg string, fields ...any) {
	l.log(ctx, slog.LevelError, err, msg, fields...)
}

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(fields...), component: l.component}
}

func (l *slogLogger) WithComponent(component string) Logger {
	return &slogLogger{logger: l.logger, component: component}
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}
	attrs := make([]any, 0, len(fields)+4)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	attrs = append(attrs, fields...)
	l.logger.Log(ctx, level, msg, attrs...)
}
