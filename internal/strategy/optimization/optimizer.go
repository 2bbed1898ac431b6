package optimization

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"
	"rangeBreakout/internal/strategy"
	"rangeBreakout/internal/strategy/analytics"
	"rangeBreakout/internal/strategy/backtesting"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ParameterRange defines a range for a parameter to optimize
type ParameterRange struct {
	Name string
	Min  float64
	Max  float64
	Step float64
}

// OptimizationResult holds the results of one parameter combination
type OptimizationResult struct {
	Parameters map[string]float64
	Config     strategy.Config
	Summary    *analytics.Summary
	Score      float64
}

// ScoreFunction ranks a backtest summary; higher is better.
type ScoreFunction func(*analytics.Summary) float64

// OptimizerConfig holds configuration for the optimizer
type OptimizerConfig struct {
	Symbol          string
	Base            strategy.Config // Parameters not being swept
	ParameterRanges []ParameterRange
	ScoreFunction   ScoreFunction // DefaultScoreFunction when nil
	Concurrency     int           // Parallel backtests, unbounded when <= 0

	// Signals builds the crossover source for a combination. The MACD of the
	// combination's config is used when nil.
	Signals func(strategy.Config) ports.SignalSource
}

// parameterSetters maps the sweepable parameter names onto the strategy config.
var parameterSetters = map[string]func(*strategy.Config, float64){
	"stop_distance":   func(c *strategy.Config, v float64) { c.StopDistance = v },
	"target_distance": func(c *strategy.Config, v float64) { c.TargetDistance = v },
	"fast_period":     func(c *strategy.Config, v float64) { c.FastPeriod = int(math.Round(v)) },
	"slow_period":     func(c *strategy.Config, v float64) { c.SlowPeriod = int(math.Round(v)) },
	"signal_period":   func(c *strategy.Config, v float64) { c.SignalPeriod = int(math.Round(v)) },
	"trend_period":    func(c *strategy.Config, v float64) { c.TrendPeriod = int(math.Round(v)) },
}

// ParameterNames lists the parameters that can be swept.
func ParameterNames() []string {
	names := make([]string, 0, len(parameterSetters))
	for n := range parameterSetters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Optimizer implements a grid search over strategy parameters
type Optimizer struct {
	config OptimizerConfig
	logger ports.Logger
}

// NewOptimizer creates a new optimizer instance
func NewOptimizer(config OptimizerConfig, logger ports.Logger) (*Optimizer, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for optimizer")
	}
	var errs []string
	seen := make(map[string]bool)
	for _, r := range config.ParameterRanges {
		if _, ok := parameterSetters[r.Name]; !ok {
			errs = append(errs, fmt.Sprintf("unknown parameter %q (known: %s)", r.Name, strings.Join(ParameterNames(), ", ")))
			continue
		}
		if seen[r.Name] {
			errs = append(errs, fmt.Sprintf("parameter %q given twice", r.Name))
		}
		seen[r.Name] = true
		if r.Step <= 0 {
			errs = append(errs, fmt.Sprintf("parameter %q needs a positive step", r.Name))
		}
		if r.Max < r.Min {
			errs = append(errs, fmt.Sprintf("parameter %q has max %v below min %v", r.Name, r.Max, r.Min))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrInvalidConfig, strings.Join(errs, "; "))
	}
	if config.ScoreFunction == nil {
		config.ScoreFunction = DefaultScoreFunction
	}
	return &Optimizer{config: config, logger: logger}, nil
}

// Optimize backtests every valid parameter combination over bars and returns the
// results by descending score. Combinations that fail validation are skipped.
func (o *Optimizer) Optimize(ctx context.Context, bars []*domain.Bar) ([]OptimizationResult, error) {
	if err := backtesting.ValidateBars(bars); err != nil {
		return nil, err
	}

	combinations := o.generateParameterCombinations()
	results := make([]*OptimizationResult, len(combinations))

	g, gctx := errgroup.WithContext(ctx)
	if o.config.Concurrency > 0 {
		g.SetLimit(o.config.Concurrency)
	}

	skipped := 0
	for i, params := range combinations {
		cfg, err := o.applyParameters(params)
		if err != nil {
			skipped++
			o.logger.Debug(ctx, "Skipping invalid parameter combination", map[string]interface{}{
				"params": params, "reason": err.Error(),
			})
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var signals ports.SignalSource
			if o.config.Signals != nil {
				signals = o.config.Signals(cfg)
			}
			engine, err := backtesting.NewWithSignals(cfg, quietLogger{}, signals)
			if err != nil {
				return err
			}
			res, err := engine.Run(gctx, o.config.Symbol, bars)
			if err != nil {
				return err
			}
			results[i] = &OptimizationResult{
				Parameters: params,
				Config:     cfg,
				Summary:    res.Summary,
				Score:      o.config.ScoreFunction(res.Summary),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("optimization aborted: %w", err)
	}

	out := make([]OptimizationResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	sortResultsByScore(out)

	o.logger.Info(ctx, "Optimization finished", map[string]interface{}{
		"symbol": o.config.Symbol, "combinations": len(combinations), "evaluated": len(out), "skipped": skipped,
	})
	return out, nil
}

func (o *Optimizer) applyParameters(params map[string]float64) (strategy.Config, error) {
	cfg := o.config.Base
	for name, v := range params {
		parameterSetters[name](&cfg, v)
	}
	return cfg, cfg.Validate()
}

// generateParameterCombinations generates all possible parameter combinations.
// Values are stepped in decimal so that 0.0005 + 0.0005 is exactly 0.001.
func (o *Optimizer) generateParameterCombinations() []map[string]float64 {
	var combinations []map[string]float64
	currentCombination := make(map[string]float64)

	var generate func(int)
	generate = func(paramIndex int) {
		if paramIndex == len(o.config.ParameterRanges) {
			combination := make(map[string]float64, len(currentCombination))
			for k, v := range currentCombination {
				combination[k] = v
			}
			combinations = append(combinations, combination)
			return
		}

		param := o.config.ParameterRanges[paramIndex]
		for _, value := range steps(param) {
			currentCombination[param.Name] = value
			generate(paramIndex + 1)
		}
	}

	generate(0)
	return combinations
}

func steps(r ParameterRange) []float64 {
	lo := decimal.NewFromFloat(r.Min)
	hi := decimal.NewFromFloat(r.Max)
	step := decimal.NewFromFloat(r.Step)
	var values []float64
	for v := lo; v.LessThanOrEqual(hi); v = v.Add(step) {
		values = append(values, v.InexactFloat64())
	}
	return values
}

// sortResultsByScore sorts optimization results by score in descending order,
// keeping generation order among equal scores.
func sortResultsByScore(results []OptimizationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// DefaultScoreFunction scores a run by its net pips.
func DefaultScoreFunction(s *analytics.Summary) float64 {
	return s.TotalPips
}

// ExpectancyScore scores by mean pips per trade, ignoring runs with fewer than
// minTrades trades.
func ExpectancyScore(minTrades int) ScoreFunction {
	return func(s *analytics.Summary) float64 {
		if s.TotalTrades < minTrades {
			return math.Inf(-1)
		}
		return s.Expectancy
	}
}

// quietLogger drops the per-trade logs of the individual grid runs.
type quietLogger struct{}

func (quietLogger) Debug(context.Context, string, ...map[string]interface{})        {}
func (quietLogger) Info(context.Context, string, ...map[string]interface{})         {}
func (quietLogger) Warn(context.Context, string, ...map[string]interface{})         {}
func (quietLogger) Error(context.Context, error, string, ...map[string]interface{}) {}
