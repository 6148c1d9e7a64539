package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	logAdapter "github.com/bft-labs/walletscope/internal/adapters/log"
	"github.com/bft-labs/walletscope/internal/ports"
)

// Logger provides structured logging capabilities.
type Logger = ports.Logger

// Field represents a key-value pair for structured logging.
type Field = ports.Field

// String creates a string field.
func String(key, value string) Field { return ports.String(key, value) }

// Int creates an int field.
func Int(key string, value int) Field { return ports.Int(key, value) }

// Bool creates a bool field.
func Bool(key string, value bool) Field { return ports.Bool(key, value) }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field { return ports.Duration(key, value) }

// Err creates an error field with key "error".
func Err(err error) Field { return ports.Err(err) }

// Any creates a field with any value.
func Any(key string, value interface{}) Field { return ports.Any(key, value) }

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return logAdapter.NewZerologAdapterWithLogger(logger)
}

// NewConsoleLogger writes human-readable lines to stderr.
func NewConsoleLogger(level zerolog.Level) Logger {
	return logAdapter.NewZerologAdapter(level)
}

// NewJSONLogger writes one JSON object per line to w.
func NewJSONLogger(w io.Writer, level zerolog.Level) Logger {
	return logAdapter.NewZerologAdapterWithWriter(w, level)
}

// NewNoopLogger discards all log messages.
func NewNoopLogger() Logger {
	return logAdapter.NewNoopLogger()
}
