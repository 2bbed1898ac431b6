package strategy

import (
	"fmt"
	"strings"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"
	"rangeBreakout/internal/strategy/session"
)

// Config holds the parameters of the range breakout strategy.
type Config struct {
	RangeWindow session.Window // Reference window the daily range is measured over
	TradeWindow session.Window // Window in which breakouts and entries may happen
	Location    *time.Location // Time zone for time-of-day and calendar days

	FastPeriod   int // e.g., 12
	SlowPeriod   int // e.g., 26
	SignalPeriod int // e.g., 9

	StopDistance   float64 // Price units, e.g., 0.0025
	TargetDistance float64 // Price units, e.g., 0.0005
	PipSize        float64 // e.g., 0.0001

	UnresolvedPolicy         domain.UnresolvedPolicy
	ExitPrecedence           domain.ExitPrecedence
	AllowSameBarConfirmation bool // Crossover may fall on the breakout bar
	BreakoutTrigger          domain.BreakoutTrigger

	// Optional higher-timeframe trend annotation; zero timeframe disables it.
	TrendTimeframe time.Duration
	TrendPeriod    int
}

// DefaultConfig returns the reference parameters: a 07:00-08:30 range traded
// 08:31-10:00, MACD 12/26/9, 25 pip stop, 5 pip target.
func DefaultConfig() Config {
	return Config{
		RangeWindow:              session.MustWindow("07:00", "08:30"),
		TradeWindow:              session.MustWindow("08:31", "10:00"),
		Location:                 time.UTC,
		FastPeriod:               12,
		SlowPeriod:               26,
		SignalPeriod:             9,
		StopDistance:             0.0025,
		TargetDistance:           0.0005,
		PipSize:                  0.0001,
		UnresolvedPolicy:         domain.PolicyExclude,
		ExitPrecedence:           domain.TargetFirst,
		AllowSameBarConfirmation: true,
		BreakoutTrigger:          domain.TriggerWick,
		TrendPeriod:              50,
	}
}

// Validate checks every parameter and reports all violations at once.
func (c Config) Validate() error {
	var errs []string

	if c.FastPeriod <= 0 || c.SlowPeriod <= 0 || c.SignalPeriod <= 0 {
		errs = append(errs, "MACD periods must be positive")
	}
	if c.FastPeriod >= c.SlowPeriod {
		errs = append(errs, fmt.Sprintf("fast period (%d) must be less than slow period (%d)", c.FastPeriod, c.SlowPeriod))
	}
	if c.StopDistance <= 0 {
		errs = append(errs, "stop distance must be positive")
	}
	if c.TargetDistance <= 0 {
		errs = append(errs, "target distance must be positive")
	}
	if c.PipSize <= 0 {
		errs = append(errs, "pip size must be positive")
	}
	if !c.RangeWindow.Valid() {
		errs = append(errs, fmt.Sprintf("range window %s is not a valid time-of-day interval", c.RangeWindow))
	}
	if !c.TradeWindow.Valid() {
		errs = append(errs, fmt.Sprintf("trade window %s is not a valid time-of-day interval", c.TradeWindow))
	}
	if !c.RangeWindow.Precedes(c.TradeWindow) {
		errs = append(errs, fmt.Sprintf("trade window %s must start after range window %s ends", c.TradeWindow, c.RangeWindow))
	}
	if !c.UnresolvedPolicy.Valid() {
		errs = append(errs, fmt.Sprintf("unknown unresolved policy %q", c.UnresolvedPolicy))
	}
	if !c.ExitPrecedence.Valid() {
		errs = append(errs, fmt.Sprintf("unknown exit precedence %q", c.ExitPrecedence))
	}
	if !c.BreakoutTrigger.Valid() {
		errs = append(errs, fmt.Sprintf("unknown breakout trigger %q", c.BreakoutTrigger))
	}
	if c.TrendTimeframe < 0 {
		errs = append(errs, "trend timeframe cannot be negative")
	}
	if c.TrendTimeframe > 0 && c.TrendPeriod <= 0 {
		errs = append(errs, "trend period must be positive when the trend timeframe is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ports.ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// Warmup returns the number of bars the MACD consumes before crossovers count.
func (c Config) Warmup() int {
	return max(c.FastPeriod, c.SlowPeriod, c.SignalPeriod)
}

// Loc returns the configured location, UTC when unset.
func (c Config) Loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Fields returns the parameters as log fields.
func (c Config) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"rangeWindow":      c.RangeWindow.String(),
		"tradeWindow":      c.TradeWindow.String(),
		"timezone":         c.Loc().String(),
		"fastPeriod":       c.FastPeriod,
		"slowPeriod":       c.SlowPeriod,
		"signalPeriod":     c.SignalPeriod,
		"stopDistance":     c.StopDistance,
		"targetDistance":   c.TargetDistance,
		"pipSize":          c.PipSize,
		"unresolvedPolicy": string(c.UnresolvedPolicy),
		"exitPrecedence":   string(c.ExitPrecedence),
		"sameBarConfirm":   c.AllowSameBarConfirmation,
		"breakoutTrigger":  string(c.BreakoutTrigger),
	}
	if c.TrendTimeframe > 0 {
		fields["trendTimeframe"] = c.TrendTimeframe.String()
		fields["trendPeriod"] = c.TrendPeriod
	}
	return fields
}
