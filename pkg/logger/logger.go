// Package logger provides structured logging for Scribe Connect Vision.
// It wraps go.uber.org/zap behind a small Field-based API so that callers
// never import zap directly, and supports context propagation.
package logger

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general operational information.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
	// LevelFatal is for fatal errors that require program termination.
	LevelFatal
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown strings map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Common field constructors for convenience.
func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field     { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field       { return Field{Key: key, Value: value} }

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time creates a time field.
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

// Any creates a field with any value.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Options configures a Logger.
type Options struct {
	// Level - minimum level to emit.
	Level Level

	// Development - human-readable console encoding instead of JSON.
	Development bool

	// AddCaller - annotate entries with file:line of the call site.
	AddCaller bool
}

// DefaultOptions returns the default logger configuration.
func DefaultOptions() Options {
	return Options{
		Level:     LevelInfo,
		AddCaller: true,
	}
}

// Logger is a leveled, structured logger.
type Logger struct {
	zl *zap.Logger
}

// New creates a Logger with the given options.
func New(opts Options) *Logger {
	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(opts.Level.zapLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	zopts := []zap.Option{zap.AddCallerSkip(1)}
	if !opts.AddCaller {
		zopts = append(zopts, zap.WithCaller(false))
	}

	zl, err := cfg.Build(zopts...)
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{zl: zl}
}

// Default returns a logger with default options.
func Default() *Logger {
	return New(DefaultOptions())
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// With returns a child logger that always carries the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{zl: l.zl.With(toZap(fields)...)}
}

// Sync flushes buffered entries. Call before process exit.
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}

func toZap(fields []Field) []zap.Field {
	zf := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		zf = append(zf, zap.Any(f.Key, f.Value))
	}
	return zf
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.zl.Debug(msg, toZap(fields)...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, fields ...Field) {
	l.zl.Info(msg, toZap(fields)...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.zl.Warn(msg, toZap(fields)...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, fields ...Field) {
	l.zl.Error(msg, toZap(fields)...)
}

// Fatal logs a message at FATAL level and exits.
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.zl.Fatal(msg, toZap(fields)...)
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT PROPAGATION
// ══════════════════════════════════════════════════════════════════════════════

type ctxKey struct{}

// WithContext stores the logger in the context.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext extracts a logger from the context, falling back to Default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}

// RequestIDKey is the field key used for HTTP request IDs.
const RequestIDKey = "request_id"

// WithRequestID returns a child logger tagged with the request ID.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.With(String(RequestIDKey, requestID))
}

// Domain-specific field helpers.
func UserID(id string) Field        { return String("user_id", id) }
func RequestID(id string) Field     { return String("exam_request_id", id) }
func Email(email string) Field      { return String("email", email) }
func Component(name string) Field   { return String("component", name) }
func Operation(name string) Field   { return String("operation", name) }
func Latency(d time.Duration) Field { return Duration("latency", d) }
