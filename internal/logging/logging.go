package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger defines minimal logging interface used across layers.
type Logger interface {
	Debug(ctx context.Context, msg string, kv ...any)
	Debugf(ctx context.Context, format string, args ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Infof(ctx context.Context, format string, args ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Warnf(ctx context.Context, format string, args ...any)
	Error(ctx context.Context, msg string, kv ...any)
	Errorf(ctx context.Context, format string, args ...any)
	With(kv ...any) Logger
}

type contextKey struct{}

var loggerKey contextKey

// ctxLogger keeps the component outside the logger attributes so that a
// nested Span replaces it instead of appending a second one.
type ctxLogger struct {
	base      Logger
	component string
}

// WithLogger stores a logger in context. The logger must not carry a
// component attribute; Span adds it.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, ctxLogger{base: l})
}

// With returns a context whose logger carries kv in addition to the current
// attributes. The current component is kept.
func With(ctx context.Context, kv ...any) context.Context {
	cl := loggerState(ctx)
	cl.base = cl.base.With(kv...)
	return context.WithValue(ctx, loggerKey, cl)
}

func loggerState(ctx context.Context) ctxLogger {
	if v, ok := ctx.Value(loggerKey).(ctxLogger); ok && v.base != nil {
		return v
	}
	return ctxLogger{base: humanLogger(slog.LevelInfo)}
}

// FromContext retrieves a logger from context, returns default logger if absent.
func FromContext(ctx context.Context) Logger {
	cl := loggerState(ctx)
	if cl.component == "" {
		return cl.base
	}
	return cl.base.With("component", cl.component)
}

// ParseLevel converts DEBUG/INFO/WARN/ERROR (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "INFO":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level: %s", s)
	}
}

// New constructs a new Logger of given format (text|json|human) and level.
func New(format string, level slog.Leveler) (Logger, error) {
	return NewWithWriter(format, level, os.Stderr)
}

// NewWithWriter constructs a new Logger of given format, level, and output writer.
func NewWithWriter(format string, level slog.Leveler, w io.Writer) (Logger, error) {
	switch format {
	case "", "human":
		return humanLoggerWithWriter(level, w), nil
	case "text":
		return &slogWrapper{logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}, nil
	case "json":
		return &slogWrapper{logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}, nil
	default:
		return nil, errors.New("unsupported log format: " + format)
	}
}

// slogWrapper adapts slog.Logger to Logger.
type slogWrapper struct{ logger *slog.Logger }

func (l *slogWrapper) Debug(ctx context.Context, msg string, kv ...any) {
	l.logger.DebugContext(ctx, msg, kv...)
}
func (l *slogWrapper) Debugf(ctx context.Context, format string, args ...any) {
	l.logger.DebugContext(ctx, fmt.Sprintf(format, args...))
}
func (l *slogWrapper) Info(ctx context.Context, msg string, kv ...any) {
	l.logger.InfoContext(ctx, msg, kv...)
}
func (l *slogWrapper) Infof(ctx context.Context, format string, args ...any) {
	l.logger.InfoContext(ctx, fmt.Sprintf(format, args...))
}
func (l *slogWrapper) Warn(ctx context.Context, msg string, kv ...any) {
	l.logger.WarnContext(ctx, msg, kv...)
}
func (l *slogWrapper) Warnf(ctx context.Context, format string, args ...any) {
	l.logger.WarnContext(ctx, fmt.Sprintf(format, args...))
}
func (l *slogWrapper) Error(ctx context.Context, msg string, kv ...any) {
	l.logger.ErrorContext(ctx, msg, kv...)
}
func (l *slogWrapper) Errorf(ctx context.Context, format string, args ...any) {
	l.logger.ErrorContext(ctx, fmt.Sprintf(format, args...))
}

func (l *slogWrapper) With(kv ...any) Logger { return &slogWrapper{logger: l.logger.With(kv...)} }

var (
	humanLoggerOnce  sync.Once
	humanLoggerValue *slogWrapper
)

func humanLogger(level slog.Leveler) *slogWrapper {
	return humanLoggerWithWriter(level, os.Stderr)
}

func humanLoggerWithWriter(level slog.Leveler, w io.Writer) *slogWrapper {
	slog.SetLogLoggerLevel(level.Level())
	if w == os.Stderr {
		humanLoggerOnce.Do(func() {
			humanLoggerValue = &slogWrapper{logger: slog.Default()}
		})
		return humanLoggerValue
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &slogWrapper{logger: slog.New(handler)}
}

// Span emits a <COMPONENT>:<method>:START line and returns a context whose logger
// carries component=<component>.<method>, plus a cleanup that emits END:OK or
// END:FAILED with the error (truncated to 32 chars) and elapsed seconds.
//
//	ctx, cleanup := logging.Span(ctx, "META", "CreateAdminDriver")
//	defer func() { cleanup(err) }()
func Span(ctx context.Context, component, method string) (context.Context, func(err error)) {
	startAt := time.Now()
	prefix := strings.ToUpper(component) + ":" + method
	cl := loggerState(ctx)
	cl.component = component + "." + method
	ctx = context.WithValue(ctx, loggerKey, cl)
	logger := FromContext(ctx)

	logger.Info(ctx, prefix+":START")

	return ctx, func(err error) {
		elapsed := time.Since(startAt).Seconds()
		if err == nil {
			logger.Info(ctx, prefix+":END:OK", "err", "", "elapsed", elapsed)
			return
		}
		errStr := err.Error()
		if len(errStr) > 32 {
			errStr = errStr[:32] + "..."
		}
		logger.Warn(ctx, prefix+":END:FAILED", "err", errStr, "elapsed", elapsed)
	}
}
