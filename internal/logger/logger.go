// Package logger provides structured logging for metafield operations
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog with metafield-specific functionality
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// NewLogger creates a new structured logger
func NewLogger(cfg Config) *Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Pretty printing for development
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		With().
		Timestamp().
		Str("service", "metawrite").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// NewNop returns a logger that discards everything. Library consumers that
// do not configure logging get this by default.
func NewNop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// GetZerolog returns the underlying zerolog logger
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

// Info logs an info message
func (l *Logger) Info(msg string) *zerolog.Event {
	return l.zlog.Info().Str("msg", msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) *zerolog.Event {
	return l.zlog.Debug().Str("msg", msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) *zerolog.Event {
	return l.zlog.Warn().Str("msg", msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) *zerolog.Event {
	return l.zlog.Error().Str("msg", msg)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string) *zerolog.Event {
	return l.zlog.Fatal().Str("msg", msg)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// APILogger returns a logger scoped to one Admin API call
func (l *Logger) APILogger(operation, requestID string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "api").
			Str("operation", operation).
			Str("request_id", requestID).
			Logger(),
	}
}

// ResolverLogger returns a logger scoped to type resolution
func (l *Logger) ResolverLogger(namespace, key string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "resolver").
			Str("namespace", namespace).
			Str("key", key).
			Logger(),
	}
}

// LogWriteAttempt logs a metafield write before it is submitted
func (l *Logger) LogWriteAttempt(ownerID, namespace, key, metafieldType string) {
	l.zlog.Info().
		Str("component", "writer").
		Str("owner", ownerID).
		Str("namespace", namespace).
		Str("key", key).
		Str("type", metafieldType).
		Msg("Writing metafield")
}

// LogWriteResult logs the outcome of a metafield write with structured fields
func (l *Logger) LogWriteResult(ownerID, namespace, key string, duration time.Duration, err error) {
	event := l.zlog.Info().
		Str("component", "writer").
		Str("owner", ownerID).
		Str("namespace", namespace).
		Str("key", key).
		Dur("duration_ms", duration)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "writer").
			Str("owner", ownerID).
			Str("namespace", namespace).
			Str("key", key).
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("Metafield write completed")
}

// LogBatchResult logs the outcome of a batch write
func (l *Logger) LogBatchResult(ownerID string, fieldCount int, duration time.Duration, err error) {
	event := l.zlog.Info().
		Str("component", "writer").
		Str("owner", ownerID).
		Int("field_count", fieldCount).
		Dur("duration_ms", duration)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "writer").
			Str("owner", ownerID).
			Int("field_count", fieldCount).
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("Batch metafield write completed")
}

// LogDefinitionFetch logs a schema definition lookup
func (l *Logger) LogDefinitionFetch(namespace, key string, found bool) {
	l.zlog.Debug().
		Str("component", "resolver").
		Str("namespace", namespace).
		Str("key", key).
		Bool("found", found).
		Msg("Metafield definition fetched")
}

// LogTransform logs a value transformation at debug level
func (l *Logger) LogTransform(metafieldType, encoded string) {
	if len(encoded) > 100 {
		encoded = encoded[:100]
	}
	l.zlog.Debug().
		Str("component", "transform").
		Str("type", metafieldType).
		Str("encoded", encoded).
		Msg("Value transformed")
}

// Global logger instance
var globalLogger *Logger

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg Config) {
	globalLogger = NewLogger(cfg)
	log.Logger = *globalLogger.GetZerolog()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		// Initialize with defaults if not set
		InitGlobalLogger(Config{
			Level:  "info",
			Pretty: true,
		})
	}
	return globalLogger
}
