package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

// LogFormat represents the output format for logs
type LogFormat int

const (
	// JSON format outputs structured JSON logs
	JSON LogFormat = iota
	// Text format outputs human-readable text logs
	Text
)

// Logger interface defines the logging contract for boundq
type Logger interface {
	Debug(msg string, fields ...slog.Attr)
	Info(msg string, fields ...slog.Attr)
	Warn(msg string, fields ...slog.Attr)
	Error(msg string, fields ...slog.Attr)
	With(fields ...slog.Attr) Logger
	WithContext(ctx context.Context) Logger
	Log(ctx context.Context, level slog.Level, msg string, fields ...slog.Attr)
}

// LoggerConfig holds configuration for creating a logger
type LoggerConfig struct {
	Level    slog.Level
	Format   LogFormat
	Output   io.Writer
	Sampling *SamplingConfig
}

// SamplingConfig controls log sampling to reduce volume in high-throughput scenarios
type SamplingConfig struct {
	Enabled      bool
	Rate         float64 // 0.0-1.0, percentage of logs to keep
	MaxPerSecond int     // Maximum logs per second
}

type loggerHolder struct{ Logger }

var defaultLogger atomic.Value

func init() {
	defaultLogger.Store(loggerHolder{NewLogger(LoggerConfig{
		Level:  slog.LevelInfo,
		Format: Text,
		Output: os.Stderr,
	})})
}

// SetDefaultLogger sets the package-level default logger
func SetDefaultLogger(logger Logger) {
	if logger == nil {
		return
	}
	defaultLogger.Store(loggerHolder{logger})
}

// Default returns the package-level default logger
func Default() Logger {
	return defaultLogger.Load().(loggerHolder).Logger
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return NewLogger(LoggerConfig{Output: io.Discard, Level: slog.LevelError + 1})
}

// Convenience functions using the default logger
func Debug(msg string, fields ...slog.Attr) {
	Default().Debug(msg, fields...)
}

func Info(msg string, fields ...slog.Attr) {
	Default().Info(msg, fields...)
}

func Warn(msg string, fields ...slog.Attr) {
	Default().Warn(msg, fields...)
}

func Error(msg string, fields ...slog.Attr) {
	Default().Error(msg, fields...)
}

// logger implements the Logger interface
type logger struct {
	slogger  *slog.Logger
	sampling *sampler
	attrs    []slog.Attr
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config LoggerConfig) Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: config.Level,
	}

	switch config.Format {
	case JSON:
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	var s *sampler
	if config.Sampling != nil && config.Sampling.Enabled {
		s = newSampler(config.Sampling)
	}

	return &logger{
		slogger:  slog.New(handler),
		sampling: s,
	}
}

// FromSlog wraps an existing slog.Logger. A nil logger wraps slog.Default().
func FromSlog(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &logger{slogger: l}
}

// Debug logs a debug message with optional structured fields
func (l *logger) Debug(msg string, fields ...slog.Attr) {
	l.log(slog.LevelDebug, msg, fields...)
}

// Info logs an info message with optional structured fields
func (l *logger) Info(msg string, fields ...slog.Attr) {
	l.log(slog.LevelInfo, msg, fields...)
}

// Warn logs a warning message with optional structured fields
func (l *logger) Warn(msg string, fields ...slog.Attr) {
	l.log(slog.LevelWarn, msg, fields...)
}

// Error logs an error message with optional structured fields
func (l *logger) Error(msg string, fields ...slog.Attr) {
	l.log(slog.LevelError, msg, fields...)
}

// With creates a new logger with additional structured fields
func (l *logger) With(fields ...slog.Attr) Logger {
	allAttrs := make([]slog.Attr, 0, len(l.attrs)+len(fields))
	allAttrs = append(allAttrs, l.attrs...)
	allAttrs = append(allAttrs, fields...)

	return &logger{
		slogger:  l.slogger.With(attrsToArgs(fields)...),
		sampling: l.sampling,
		attrs:    allAttrs,
	}
}

type contextFieldsKey struct{}

// ContextWithFields returns a context carrying fields that WithContext will
// attach to a logger. Fields accumulate across nested calls.
func ContextWithFields(ctx context.Context, fields ...slog.Attr) context.Context {
	existing, _ := ctx.Value(contextFieldsKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, contextFieldsKey{}, merged)
}

// WithContext creates a new logger with the fields stored by ContextWithFields
func (l *logger) WithContext(ctx context.Context) Logger {
	fields, _ := ctx.Value(contextFieldsKey{}).([]slog.Attr)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// Log logs a message at the specified level with optional structured fields
func (l *logger) Log(ctx context.Context, level slog.Level, msg string, fields ...slog.Attr) {
	if l.sampling != nil && !l.sampling.shouldLog(level) {
		return
	}
	l.slogger.Log(ctx, level, msg, attrsToArgs(fields)...)
}

func (l *logger) log(level slog.Level, msg string, fields ...slog.Attr) {
	l.Log(context.Background(), level, msg, fields...)
}

func attrsToArgs(fields []slog.Attr) []any {
	args := make([]any, len(fields))
	for i, attr := range fields {
		args[i] = attr
	}
	return args
}

// sampler implements log sampling to control high-volume logging
type sampler struct {
	config   *SamplingConfig
	counter  atomic.Uint64
	lastSec  atomic.Int64
	secCount atomic.Uint64
}

func newSampler(config *SamplingConfig) *sampler {
	return &sampler{
		config: config,
	}
}

// shouldLog determines if a log entry should be written based on sampling rules
func (s *sampler) shouldLog(level slog.Level) bool {
	// Warnings carry overflow diagnostics and are never sampled.
	if level >= slog.LevelWarn {
		return true
	}

	if s.config.MaxPerSecond > 0 {
		now := time.Now().Unix()
		lastSec := s.lastSec.Load()

		if now != lastSec {
			if s.lastSec.CompareAndSwap(lastSec, now) {
				s.secCount.Store(1)
			}
		} else {
			count := s.secCount.Add(1)
			if int(count) > s.config.MaxPerSecond {
				return false
			}
		}
	}

	if s.config.Rate < 1.0 {
		count := s.counter.Add(1)
		if float64(count%100)/100.0 >= s.config.Rate {
			return false
		}
	}

	return true
}

// Queue field helpers for consistent logging

// QueueName creates a queue name field
func QueueName(name string) slog.Attr {
	return slog.String("queue", name)
}

// QueueCapacity creates a capacity field; 0 means unbounded
func QueueCapacity(capacity int) slog.Attr {
	return slog.Int("queue.capacity", capacity)
}

// QueuePolicy creates an overflow policy field
func QueuePolicy(policy string) slog.Attr {
	return slog.String("queue.policy", policy)
}

// QueueDepth creates a queue depth field
func QueueDepth(depth int) slog.Attr {
	return slog.Int("queue.depth", depth)
}

// IncomingCount creates a field for the size of an admission batch
func IncomingCount(n int) slog.Attr {
	return slog.Int("queue.incoming", n)
}

// EvictedCount creates a field for existing items dropped from the head
func EvictedCount(n int) slog.Attr {
	return slog.Int("queue.evicted", n)
}

// TrimmedCount creates a field for incoming items dropped before admission
func TrimmedCount(n int) slog.Attr {
	return slog.Int("queue.trimmed", n)
}

// NATSSubject creates a subject field
func NATSSubject(subject string) slog.Attr {
	return slog.String("nats.subject", subject)
}

// NATSQueueGroup creates a queue group field
func NATSQueueGroup(group string) slog.Attr {
	return slog.String("nats.queue_group", group)
}

// NATSConnection creates a connection field
func NATSConnection(url string) slog.Attr {
	return slog.String("nats.connection", url)
}

// Duration creates a duration field
func Duration(key string, d time.Duration) slog.Attr {
	return slog.Duration(key, d)
}

// Operation creates an operation field
func Operation(op string) slog.Attr {
	return slog.String("operation", op)
}

// ErrorField creates an error field
func ErrorField(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// MessageCount creates a message count field
func MessageCount(count int64) slog.Attr {
	return slog.Int64("message_count", count)
}
