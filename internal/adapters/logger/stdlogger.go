package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
)

// LogLevel orders log severities from DEBUG to ERROR.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel is case-insensitive and accepts WARNING for WARN. Unknown names map to INFO.
func ParseLevel(name string) LogLevel {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		return LevelWarn
	}
	for i, n := range levelNames {
		if n == name {
			return LogLevel(i)
		}
	}
	return LevelInfo
}

// StdLogger writes plain text lines of the form
//
//	[LEVEL] message | error: err | key=value ...
//
// with keys sorted so that output is stable between runs.
type StdLogger struct {
	out   *log.Logger
	level LogLevel
}

func NewStdLoggerTo(w io.Writer, level LogLevel) *StdLogger {
	return &StdLogger{out: log.New(w, "", log.LstdFlags|log.Lmicroseconds), level: level}
}

func (l *StdLogger) write(level LogLevel, msg string, err error, fields []map[string]interface{}) {
	if level < l.level {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&sb, " | error: %v", err)
	}

	merged := make(map[string]interface{})
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, merged[k])
		}
	}

	l.out.Println(sb.String())
}

func (l *StdLogger) Debug(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.write(LevelDebug, msg, nil, fields)
}

func (l *StdLogger) Info(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.write(LevelInfo, msg, nil, fields)
}

func (l *StdLogger) Warn(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.write(LevelWarn, msg, nil, fields)
}

func (l *StdLogger) Error(_ context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.write(LevelError, msg, err, fields)
}
