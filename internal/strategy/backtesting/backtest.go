package backtesting

import (
	"context"
	"fmt"
	"sort"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"
	"rangeBreakout/internal/risk"
	"rangeBreakout/internal/strategy"
	"rangeBreakout/internal/strategy/analytics"
	"rangeBreakout/internal/strategy/breakout"
	"rangeBreakout/internal/strategy/indicators"
	"rangeBreakout/internal/strategy/session"
)

// Result holds the outcome of one backtest run
type Result struct {
	Symbol     string
	Bars       int
	Trades     []*domain.Trade       // Closed trades in entry order, including policy-resolved ones
	Unresolved []domain.OpenPosition // Positions still open when the input ended
	Days       []DayReport
	Summary    *analytics.Summary
}

// Engine replays a bar stream through the range breakout strategy.
type Engine struct {
	cfg     strategy.Config
	logger  ports.Logger
	signals ports.SignalSource
	scanner *breakout.Scanner
	risk    *risk.RiskManager
}

// New creates an engine confirming setups with the MACD configured in cfg.
func New(cfg strategy.Config, logger ports.Logger) (*Engine, error) {
	return NewWithSignals(cfg, logger, nil)
}

// NewWithSignals creates an engine with a custom crossover source.
// A nil source falls back to the MACD configured in cfg.
func NewWithSignals(cfg strategy.Config, logger ports.Logger, signals ports.SignalSource) (*Engine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for backtest engine")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if signals == nil {
		macd, err := indicators.NewMACD(indicators.MACDConfig{
			FastPeriod:   cfg.FastPeriod,
			SlowPeriod:   cfg.SlowPeriod,
			SignalPeriod: cfg.SignalPeriod,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrInvalidConfig, err)
		}
		signals = macd
	}
	rm, err := risk.NewRiskManager(risk.RiskConfig{
		StopDistance:   cfg.StopDistance,
		TargetDistance: cfg.TargetDistance,
		Precedence:     cfg.ExitPrecedence,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidConfig, err)
	}
	return &Engine{
		cfg:     cfg,
		logger:  logger,
		signals: signals,
		scanner: breakout.NewScanner(cfg.BreakoutTrigger),
		risk:    rm,
	}, nil
}

// Config returns the validated configuration of the engine.
func (e *Engine) Config() strategy.Config {
	return e.cfg
}

// series carries the per-bar inputs shared by every day of a run.
type series struct {
	symbol     string
	crossovers []domain.Crossover
	trends     []domain.Trend
}

// Run backtests bars for symbol. The bars must be strictly increasing in time.
func (e *Engine) Run(ctx context.Context, symbol string, bars []*domain.Bar) (*Result, error) {
	if err := ValidateBars(bars); err != nil {
		e.logger.Error(ctx, err, "Rejecting bar stream", map[string]interface{}{"symbol": symbol})
		return nil, err
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	s := series{symbol: symbol, crossovers: e.signals.Crossovers(closes)}
	if len(s.crossovers) != len(bars) {
		return nil, fmt.Errorf("signal source returned %d crossovers for %d bars", len(s.crossovers), len(bars))
	}
	if e.cfg.TrendTimeframe > 0 {
		s.trends = indicators.TrendSeries(bars, e.cfg.TrendTimeframe, e.cfg.TrendPeriod)
	}

	result := &Result{Symbol: symbol, Bars: len(bars)}
	days := session.SplitDays(bars, e.cfg.Loc())
	offset := 0
	for d, dayBars := range days {
		report, trade, open := e.runDay(ctx, s, dayBars, offset, d == len(days)-1)
		offset += len(dayBars)
		result.Days = append(result.Days, report)
		if trade != nil {
			result.Trades = append(result.Trades, trade)
		}
		if open != nil {
			result.Unresolved = append(result.Unresolved, *open)
		}
	}

	resolved, excluded := analytics.ApplyUnresolvedPolicy(result.Unresolved, e.cfg.UnresolvedPolicy, e.cfg.PipSize)
	result.Trades = append(result.Trades, resolved...)
	sort.SliceStable(result.Trades, func(i, j int) bool {
		return result.Trades[i].EntryTime.Before(result.Trades[j].EntryTime)
	})
	result.Summary = analytics.Summarize(result.Trades, excluded, e.cfg.PipSize)

	fields := result.Summary.Fields()
	fields["symbol"] = symbol
	fields["bars"] = len(bars)
	fields["days"] = len(days)
	fields["warmup"] = e.signals.RequiredDataPoints()
	if named, ok := e.signals.(interface{ Name() string }); ok {
		fields["signals"] = named.Name()
	}
	e.logger.Info(ctx, "Backtest finished", fields)
	return result, nil
}

// runDay drives the state machine over the bars of one calendar day. offset is the
// index of the day's first bar in the whole stream. It returns the day's closed
// trade, or the open position when the input ends before the day's trading window
// is over.
func (e *Engine) runDay(ctx context.Context, s series, bars []*domain.Bar, offset int, final bool) (DayReport, *domain.Trade, *domain.OpenPosition) {
	loc := e.cfg.Loc()
	report := DayReport{Date: session.DayOf(bars[0].Time, loc), Bars: len(bars)}
	detector := session.NewRangeDetector(e.cfg.RangeWindow, loc)
	rangeClosed := false
	var state State = Idle{}

	for j, bar := range bars {
		i := offset + j
		tod := session.TimeOfDayOf(bar.Time.In(loc))

		if !rangeClosed {
			if tod <= e.cfg.RangeWindow.End {
				detector.Observe(bar)
				continue
			}
			rangeClosed = true
			rng, ok := detector.Range(report.Date)
			if !ok {
				report.Outcome = OutcomeNoRange
				e.logger.Debug(ctx, "No bars in range window, skipping day", map[string]interface{}{
					"symbol": s.symbol, "date": report.Date.Format("2006-01-02"),
				})
				return report, nil, nil
			}
			report.Range = rng
		}

		switch st := state.(type) {
		case Idle:
			if report.Breakout != nil || !e.cfg.TradeWindow.Contains(tod) {
				continue
			}
			ev := e.scanner.Check(bar, report.Range)
			if ev == nil {
				continue
			}
			report.Breakout = ev
			e.logger.Debug(ctx, "Breakout detected", map[string]interface{}{
				"symbol": s.symbol, "kind": string(ev.Kind), "direction": string(ev.Direction),
				"level": ev.Level, "time": ev.TriggerTime,
			})
			awaiting := Awaiting{Breakout: *ev, BreakoutIndex: i}
			state = awaiting
			if e.cfg.AllowSameBarConfirmation {
				state = e.confirm(ctx, s, awaiting, bar, i, report.Range)
			}

		case Awaiting:
			if tod > e.cfg.TradeWindow.End {
				state = Idle{}
				report.Outcome = OutcomeSetupExpired
				continue
			}
			state = e.confirm(ctx, s, st, bar, i, report.Range)

		case Open:
			reason, price, hit := e.risk.Evaluate(st.Bracket, bar)
			if hit {
				return e.close(ctx, report, st.Position, bar, price, reason)
			}
			st.Position.LastTime = bar.Time
			st.Position.LastClose = bar.Close
			state = st
		}
	}

	switch st := state.(type) {
	case Open:
		last := bars[len(bars)-1]
		if final && session.TimeOfDayOf(last.Time.In(loc)) <= e.cfg.TradeWindow.End {
			report.Outcome = OutcomeOpenAtEnd
			e.logger.Warn(ctx, "Position still open at end of input", map[string]interface{}{
				"symbol": s.symbol, "entryTime": st.Position.EntryTime, "policy": string(e.cfg.UnresolvedPolicy),
			})
			pos := st.Position
			return report, nil, &pos
		}
		return e.close(ctx, report, st.Position, last, last.Close, domain.ExitReasonSessionClose)
	case Awaiting:
		report.Outcome = OutcomeSetupExpired
	case Idle:
		if !rangeClosed {
			rng, ok := detector.Range(report.Date)
			if !ok {
				report.Outcome = OutcomeNoRange
				return report, nil, nil
			}
			report.Range = rng
		}
		if report.Outcome == "" {
			report.Outcome = OutcomeNoBreakout
		}
	}
	return report, nil, nil
}

// confirm opens the position when the crossover at bar i matches the setup.
func (e *Engine) confirm(ctx context.Context, s series, st Awaiting, bar *domain.Bar, i int, rng *domain.DailyRange) State {
	if !s.crossovers[i].Confirms(st.Breakout.Direction) {
		return st
	}
	bracket := e.risk.Bracket(st.Breakout.Direction, bar.Close)
	pos := domain.OpenPosition{
		Symbol:      s.symbol,
		Direction:   st.Breakout.Direction,
		EntryTime:   bar.Time,
		EntryPrice:  bar.Close,
		StopPrice:   bracket.Stop,
		TargetPrice: bracket.Target,
		Range:       *rng,
		LastTime:    bar.Time,
		LastClose:   bar.Close,
	}
	if s.trends != nil {
		pos.Trend = s.trends[i]
	}
	e.logger.Info(ctx, "Position opened", map[string]interface{}{
		"symbol": s.symbol, "direction": string(pos.Direction), "entry": pos.EntryPrice,
		"stop": pos.StopPrice, "target": pos.TargetPrice, "time": pos.EntryTime,
	})
	return Open{Position: pos, Bracket: bracket, EntryIndex: i}
}

func (e *Engine) close(ctx context.Context, report DayReport, pos domain.OpenPosition, bar *domain.Bar, price float64, reason domain.ExitReason) (DayReport, *domain.Trade, *domain.OpenPosition) {
	trade := analytics.CloseTrade(pos, bar.Time, price, reason, e.cfg.PipSize)
	report.Outcome = OutcomeTraded
	e.logger.Info(ctx, "Position closed", map[string]interface{}{
		"symbol": pos.Symbol, "direction": string(trade.Direction), "reason": string(reason),
		"exit": trade.ExitPrice, "pips": trade.Pips, "time": trade.ExitTime,
	})
	return report, trade, nil
}
