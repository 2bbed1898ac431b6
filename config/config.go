package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"
	"rangeBreakout/internal/strategy"
	"rangeBreakout/internal/strategy/session"
)

const dateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	// Binance API, only needed by fetch_bars
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Input and output
	Symbol      string
	BarsCSV     string
	TradesCSV   string // Trade export, disabled when empty
	DBPath      string
	MetricsFile string // Prometheus textfile, disabled when empty

	// Backtest period, zero means unbounded. To is exclusive.
	DateFrom time.Time
	DateTo   time.Time

	Strategy strategy.Config

	// Logging
	LogLevel  string
	LogFormat string // text, json or console
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{Strategy: strategy.DefaultConfig()}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	cfg.Symbol = getEnv("SYMBOL", "EURUSD")
	cfg.BarsCSV = getEnv("BARS_CSV", "./data/EURUSD.csv")
	cfg.TradesCSV = getEnv("TRADES_CSV", "")
	cfg.DBPath = getEnv("DB_PATH", "./data/backtests.db")
	cfg.MetricsFile = getEnv("METRICS_FILE", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))
	switch cfg.LogFormat {
	case "text", "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be text, json or console, got %q", cfg.LogFormat))
	}

	// Strategy
	s := &cfg.Strategy
	tz := getEnv("TIMEZONE", "UTC")
	if s.Location, err = time.LoadLocation(tz); err != nil {
		errs = append(errs, fmt.Sprintf("invalid TIMEZONE: %v", err))
		s.Location = time.UTC
	}

	if s.RangeWindow, err = getEnvAsWindow("RANGE_WINDOW", s.RangeWindow); err != nil {
		errs = append(errs, err.Error())
	}
	if s.TradeWindow, err = getEnvAsWindow("TRADE_WINDOW", s.TradeWindow); err != nil {
		errs = append(errs, err.Error())
	}

	intFields := []struct {
		key string
		dst *int
	}{
		{"MACD_FAST", &s.FastPeriod},
		{"MACD_SLOW", &s.SlowPeriod},
		{"MACD_SIGNAL", &s.SignalPeriod},
		{"TREND_PERIOD", &s.TrendPeriod},
	}
	for _, f := range intFields {
		if *f.dst, err = getEnvAsIntRequired(f.key, *f.dst); err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", f.key, err))
		}
	}

	floatFields := []struct {
		key string
		dst *float64
	}{
		{"STOP_DISTANCE", &s.StopDistance},
		{"TARGET_DISTANCE", &s.TargetDistance},
		{"PIP_SIZE", &s.PipSize},
	}
	for _, f := range floatFields {
		if *f.dst, err = getEnvAsFloatRequired(f.key, *f.dst); err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", f.key, err))
		}
	}

	s.UnresolvedPolicy = domain.UnresolvedPolicy(getEnv("UNRESOLVED_POLICY", string(s.UnresolvedPolicy)))
	s.ExitPrecedence = domain.ExitPrecedence(getEnv("EXIT_PRECEDENCE", string(s.ExitPrecedence)))
	s.BreakoutTrigger = domain.BreakoutTrigger(getEnv("BREAKOUT_TRIGGER", string(s.BreakoutTrigger)))
	s.AllowSameBarConfirmation = getEnvAsBool("ALLOW_SAME_BAR_CONFIRMATION", s.AllowSameBarConfirmation)

	if tf := getEnv("TREND_TIMEFRAME", ""); tf != "" && tf != "0" {
		if s.TrendTimeframe, err = time.ParseDuration(tf); err != nil {
			errs = append(errs, fmt.Sprintf("invalid TREND_TIMEFRAME: %v", err))
		}
	}

	if err := s.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	// Backtest period
	if cfg.DateFrom, err = parseDate(getEnv("DATE_FROM", ""), s.Loc()); err != nil {
		errs = append(errs, fmt.Sprintf("invalid DATE_FROM: %v", err))
	}
	if cfg.DateTo, err = parseDate(getEnv("DATE_TO", ""), s.Loc()); err != nil {
		errs = append(errs, fmt.Sprintf("invalid DATE_TO: %v", err))
	}
	if !cfg.DateFrom.IsZero() && !cfg.DateTo.IsZero() && !cfg.DateTo.After(cfg.DateFrom) {
		errs = append(errs, "DATE_TO must be after DATE_FROM")
	}

	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: configuration validation failed: %s", ports.ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return cfg, nil
}

// parseDate parses a YYYY-MM-DD date at midnight in loc. An empty string is the zero time.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, s, loc)
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsWindow reads <prefix>_START and <prefix>_END as HH:MM[:SS] times.
func getEnvAsWindow(prefix string, defaultValue session.Window) (session.Window, error) {
	start, end := defaultValue.Start, defaultValue.End
	var err error
	if v := os.Getenv(prefix + "_START"); v != "" {
		if start, err = session.ParseTimeOfDay(v); err != nil {
			return defaultValue, fmt.Errorf("invalid %s_START: %w", prefix, err)
		}
	}
	if v := os.Getenv(prefix + "_END"); v != "" {
		if end, err = session.ParseTimeOfDay(v); err != nil {
			return defaultValue, fmt.Errorf("invalid %s_END: %w", prefix, err)
		}
	}
	return session.Window{Start: start, End: end}, nil
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
