package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"
	"rangeBreakout/internal/strategy"
	"rangeBreakout/internal/strategy/session"
)

// ProfileFile is the YAML document driving multi-instrument runs.
type ProfileFile struct {
	Concurrency int       `yaml:"concurrency" default:"4" validate:"gte=1"`
	DBPath      string    `yaml:"db_path" default:"./data/backtests.db" validate:"required"`
	MetricsFile string    `yaml:"metrics_file"`
	TradesDir   string    `yaml:"trades_dir"` // One <symbol>_trades.csv per profile, disabled when empty
	Profiles    []Profile `yaml:"profiles" validate:"required,min=1,dive"`
}

// Profile is the strategy setup of one instrument.
type Profile struct {
	Symbol   string `yaml:"symbol" validate:"required"`
	BarsCSV  string `yaml:"bars_csv" validate:"required"`
	Timezone string `yaml:"timezone" default:"UTC" validate:"required"`
	From     string `yaml:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `yaml:"to" validate:"omitempty,datetime=2006-01-02"`

	RangeStart string `yaml:"range_start" default:"07:00"`
	RangeEnd   string `yaml:"range_end" default:"08:30"`
	TradeStart string `yaml:"trade_start" default:"08:31"`
	TradeEnd   string `yaml:"trade_end" default:"10:00"`

	FastPeriod   int `yaml:"fast_period" default:"12" validate:"gt=0"`
	SlowPeriod   int `yaml:"slow_period" default:"26" validate:"gtfield=FastPeriod"`
	SignalPeriod int `yaml:"signal_period" default:"9" validate:"gt=0"`

	StopDistance   float64 `yaml:"stop_distance" default:"0.0025" validate:"gt=0"`
	TargetDistance float64 `yaml:"target_distance" default:"0.0005" validate:"gt=0"`
	PipSize        float64 `yaml:"pip_size" default:"0.0001" validate:"gt=0"`

	UnresolvedPolicy         string `yaml:"unresolved_policy" default:"exclude" validate:"oneof=exclude count-as-loss count-as-win"`
	ExitPrecedence           string `yaml:"exit_precedence" default:"target-first" validate:"oneof=target-first stop-first"`
	AllowSameBarConfirmation *bool  `yaml:"allow_same_bar_confirmation" default:"true"`
	BreakoutTrigger          string `yaml:"breakout_trigger" default:"wick" validate:"oneof=wick close"`

	TrendTimeframe time.Duration `yaml:"trend_timeframe" validate:"gte=0"`
	TrendPeriod    int           `yaml:"trend_period" default:"50" validate:"gte=0"`
}

// LoadProfiles reads, defaults and validates a profile file.
func LoadProfiles(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}
	return ParseProfiles(data)
}

// ParseProfiles decodes a profile document.
func ParseProfiles(data []byte) (*ProfileFile, error) {
	var file ProfileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to decode profiles: %w", ports.ErrInvalidConfig, err)
	}
	if err := defaults.Set(&file); err != nil {
		return nil, fmt.Errorf("failed to apply profile defaults: %w", err)
	}
	for i := range file.Profiles {
		if err := defaults.Set(&file.Profiles[i]); err != nil {
			return nil, fmt.Errorf("failed to apply defaults to profile %d: %w", i, err)
		}
	}

	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrInvalidConfig, describeValidation(err))
	}

	seen := make(map[string]bool, len(file.Profiles))
	for _, p := range file.Profiles {
		if seen[p.Symbol] {
			return nil, fmt.Errorf("%w: duplicate profile for symbol %s", ports.ErrInvalidConfig, p.Symbol)
		}
		seen[p.Symbol] = true
	}
	return &file, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return strings.Join(msgs, "; ")
}

// StrategyConfig converts the profile and checks the cross-field rules.
func (p Profile) StrategyConfig() (strategy.Config, error) {
	var errs []string
	cfg := strategy.DefaultConfig()

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid timezone: %v", err))
		loc = time.UTC
	}
	cfg.Location = loc

	if cfg.RangeWindow, err = session.NewWindow(p.RangeStart, p.RangeEnd); err != nil {
		errs = append(errs, fmt.Sprintf("invalid range window: %v", err))
	}
	if cfg.TradeWindow, err = session.NewWindow(p.TradeStart, p.TradeEnd); err != nil {
		errs = append(errs, fmt.Sprintf("invalid trade window: %v", err))
	}

	cfg.FastPeriod = p.FastPeriod
	cfg.SlowPeriod = p.SlowPeriod
	cfg.SignalPeriod = p.SignalPeriod
	cfg.StopDistance = p.StopDistance
	cfg.TargetDistance = p.TargetDistance
	cfg.PipSize = p.PipSize
	cfg.UnresolvedPolicy = domain.UnresolvedPolicy(p.UnresolvedPolicy)
	cfg.ExitPrecedence = domain.ExitPrecedence(p.ExitPrecedence)
	cfg.BreakoutTrigger = domain.BreakoutTrigger(p.BreakoutTrigger)
	if p.AllowSameBarConfirmation != nil {
		cfg.AllowSameBarConfirmation = *p.AllowSameBarConfirmation
	}
	cfg.TrendTimeframe = p.TrendTimeframe
	cfg.TrendPeriod = p.TrendPeriod

	if len(errs) == 0 {
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("profile %s: %w", p.Symbol, err)
		}
		return cfg, nil
	}
	return cfg, fmt.Errorf("%w: profile %s: %s", ports.ErrInvalidConfig, p.Symbol, strings.Join(errs, "; "))
}

// Period returns the configured backtest period in loc. Zero bounds are open and
// To is exclusive of the following day.
func (p Profile) Period(loc *time.Location) (from, to time.Time, err error) {
	if from, err = parseDate(p.From, loc); err != nil {
		return from, to, fmt.Errorf("%w: profile %s: invalid from: %w", ports.ErrInvalidConfig, p.Symbol, err)
	}
	if to, err = parseDate(p.To, loc); err != nil {
		return from, to, fmt.Errorf("%w: profile %s: invalid to: %w", ports.ErrInvalidConfig, p.Symbol, err)
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}
