package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"
	"rangeBreakout/internal/strategy/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp isolates LoadConfig from any .env file in the package directory.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", cfg.Symbol)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, session.MustWindow("07:00", "08:30"), cfg.Strategy.RangeWindow)
	assert.Equal(t, session.MustWindow("08:31", "10:00"), cfg.Strategy.TradeWindow)
	assert.Equal(t, 12, cfg.Strategy.FastPeriod)
	assert.Equal(t, domain.PolicyExclude, cfg.Strategy.UnresolvedPolicy)
	assert.True(t, cfg.Strategy.AllowSameBarConfirmation)
	assert.True(t, cfg.DateFrom.IsZero())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SYMBOL", "GBPUSD")
	t.Setenv("TIMEZONE", "Africa/Johannesburg")
	t.Setenv("RANGE_WINDOW_START", "13:30")
	t.Setenv("RANGE_WINDOW_END", "14:30")
	t.Setenv("TRADE_WINDOW_START", "14:31")
	t.Setenv("TRADE_WINDOW_END", "16:00")
	t.Setenv("STOP_DISTANCE", "0.0030")
	t.Setenv("UNRESOLVED_POLICY", "count-as-loss")
	t.Setenv("EXIT_PRECEDENCE", "stop-first")
	t.Setenv("ALLOW_SAME_BAR_CONFIRMATION", "false")
	t.Setenv("TREND_TIMEFRAME", "1h")
	t.Setenv("DATE_FROM", "2024-01-01")
	t.Setenv("DATE_TO", "2024-02-01")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "GBPUSD", cfg.Symbol)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "Africa/Johannesburg", cfg.Strategy.Loc().String())
	assert.Equal(t, "13:30-14:30", cfg.Strategy.RangeWindow.String())
	assert.Equal(t, 0.003, cfg.Strategy.StopDistance)
	assert.Equal(t, domain.PolicyCountAsLoss, cfg.Strategy.UnresolvedPolicy)
	assert.Equal(t, domain.StopFirst, cfg.Strategy.ExitPrecedence)
	assert.False(t, cfg.Strategy.AllowSameBarConfirmation)
	assert.Equal(t, time.Hour, cfg.Strategy.TrendTimeframe)
	assert.Equal(t, 2024, cfg.DateFrom.Year())
	assert.Equal(t, time.February, cfg.DateTo.Month())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{name: "bad integer", env: map[string]string{"MACD_FAST": "twelve"}, wantMsg: "MACD_FAST"},
		{name: "fast not below slow", env: map[string]string{"MACD_FAST": "30"}, wantMsg: "fast period"},
		{name: "overlapping windows", env: map[string]string{"TRADE_WINDOW_START": "08:00"}, wantMsg: "trade window"},
		{name: "bad time", env: map[string]string{"RANGE_WINDOW_END": "25:99"}, wantMsg: "RANGE_WINDOW_END"},
		{name: "unknown policy", env: map[string]string{"UNRESOLVED_POLICY": "maybe"}, wantMsg: "unresolved policy"},
		{name: "bad timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}, wantMsg: "TIMEZONE"},
		{name: "reversed dates", env: map[string]string{"DATE_FROM": "2024-02-01", "DATE_TO": "2024-01-01"}, wantMsg: "DATE_TO"},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantMsg: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig()
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ports.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("SYMBOL=AUDUSD\nPIP_SIZE=0.0001\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SYMBOL"); os.Unsetenv("PIP_SIZE") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "AUDUSD", cfg.Symbol)
}
