package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"rangeBreakout/internal/ports"

	"github.com/rs/zerolog"
)

// ZeroLogger implements the ports.Logger interface on top of zerolog.
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewZeroLogger creates a zerolog backed logger. With console set the output is
// human readable, otherwise one JSON object per line.
func NewZeroLogger(w io.Writer, level LogLevel, console bool) *ZeroLogger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).
		Level(zeroLevel(level)).
		With().
		Timestamp().
		Logger()
	return &ZeroLogger{zl: zl}
}

func zeroLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func withFields(event *zerolog.Event, fields []map[string]interface{}) *zerolog.Event {
	for _, f := range fields {
		if f != nil {
			event = event.Fields(f)
		}
	}
	return event
}

// Debug logs a message at Debug level.
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	withFields(l.zl.Debug(), fields).Msg(msg)
}

// Info logs a message at Info level.
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	withFields(l.zl.Info(), fields).Msg(msg)
}

// Warn logs a message at Warning level.
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	withFields(l.zl.Warn(), fields).Msg(msg)
}

// Error logs an error message at Error level.
func (l *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	withFields(l.zl.Error().Err(err), fields).Msg(msg)
}

// New returns the logger for format: "json" and "console" use zerolog, anything
// else the plain text StdLogger. A nil w writes to os.Stderr.
func New(level, format string, w io.Writer) ports.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := ParseLevel(level)
	switch strings.ToLower(format) {
	case "json":
		return NewZeroLogger(w, lvl, false)
	case "console":
		return NewZeroLogger(w, lvl, true)
	default:
		return NewStdLoggerTo(w, lvl)
	}
}
