package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"verbose", LevelInfo},
		{" warn ", LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerTo(&buf, LevelInfo)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "Position opened", map[string]interface{}{"symbol": "EURUSD", "entry": 1.1047, "direction": "SHORT"})
	l.Error(ctx, errors.New("boom"), "Backtest failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[INFO] Position opened | direction=SHORT entry=1.1047 symbol=EURUSD")
	assert.Contains(t, lines[1], "[ERROR] Backtest failed | error: boom")
}

func TestStdLogger_MergesFieldMaps(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerTo(&buf, LevelDebug)

	l.Warn(context.Background(), "Position still open", map[string]interface{}{"symbol": "EURUSD"}, nil, map[string]interface{}{"policy": "exclude"})
	assert.Contains(t, buf.String(), "[WARN] Position still open | policy=exclude symbol=EURUSD")
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(7).String())
	assert.Equal(t, "UNKNOWN", LogLevel(-1).String())
}

func TestZeroLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", "json", &buf)
	ctx := context.Background()

	l.Debug(ctx, "Breakout detected", map[string]interface{}{"kind": "BREAK_HIGH"})
	l.Error(ctx, errors.New("bad bar"), "Rejecting bar stream")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "debug", first["level"])
	assert.Equal(t, "Breakout detected", first["message"])
	assert.Equal(t, "BREAK_HIGH", first["kind"])

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "error", second["level"])
	assert.Equal(t, "bad bar", second["error"])
}

func TestZeroLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", "json", &buf)
	l.Info(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_Format(t *testing.T) {
	assert.IsType(t, &StdLogger{}, New("info", "text", nil))
	assert.IsType(t, &ZeroLogger{}, New("info", "json", nil))
	assert.IsType(t, &ZeroLogger{}, New("info", "Console", nil))
}
