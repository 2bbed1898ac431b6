package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"rangeBreakout/config"
	"rangeBreakout/internal/adapters/logger"
	"rangeBreakout/internal/app"
	"rangeBreakout/internal/strategy/optimization"
	"rangeBreakout/internal/utils"
)

// rangeFlags collects repeated -param name=min:max:step flags.
type rangeFlags []optimization.ParameterRange

func (f *rangeFlags) String() string {
	parts := make([]string, 0, len(*f))
	for _, r := range *f {
		parts = append(parts, fmt.Sprintf("%s=%v:%v:%v", r.Name, r.Min, r.Max, r.Step))
	}
	return strings.Join(parts, ",")
}

func (f *rangeFlags) Set(value string) error {
	r, err := parseRange(value)
	if err != nil {
		return err
	}
	*f = append(*f, r)
	return nil
}

// parseRange parses name=min:max:step.
func parseRange(s string) (optimization.ParameterRange, error) {
	name, bounds, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return optimization.ParameterRange{}, fmt.Errorf("expected name=min:max:step, got %q", s)
	}
	parts := strings.Split(bounds, ":")
	if len(parts) != 3 {
		return optimization.ParameterRange{}, fmt.Errorf("expected min:max:step for %s, got %q", name, bounds)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return optimization.ParameterRange{}, fmt.Errorf("invalid number %q for %s: %w", p, name, err)
		}
		vals[i] = v
	}
	return optimization.ParameterRange{Name: strings.TrimSpace(name), Min: vals[0], Max: vals[1], Step: vals[2]}, nil
}

func scoreFunction(name string, minTrades int) (optimization.ScoreFunction, error) {
	switch name {
	case "total":
		return optimization.DefaultScoreFunction, nil
	case "expectancy":
		return optimization.ExpectancyScore(minTrades), nil
	}
	return nil, fmt.Errorf("unknown score %q (total or expectancy)", name)
}

func main() {
	var ranges rangeFlags
	flag.Var(&ranges, "param", "parameter sweep name=min:max:step, repeatable; one of "+strings.Join(optimization.ParameterNames(), ", "))
	score := flag.String("score", "total", "ranking: total (net pips) or expectancy")
	minTrades := flag.Int("min-trades", 10, "minimum trades for the expectancy score")
	top := flag.Int("top", 10, "number of results to print")
	concurrency := flag.Int("concurrency", 4, "parallel backtests")
	flag.Parse()

	if len(ranges) == 0 {
		log.Fatalf("FATAL: at least one -param is required")
	}
	scoreFn, err := scoreFunction(*score, *minTrades)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// 1. Load Configuration, the swept parameters override it
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	// 2. Load bars
	svc, err := app.NewBacktestService(appLogger, nil, nil, *concurrency)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize backtest service: %v", err)
	}
	bars, err := svc.LoadBars(ctx, app.Request{
		Symbol:  cfg.Symbol,
		Config:  cfg.Strategy,
		BarsCSV: cfg.BarsCSV,
		From:    cfg.DateFrom,
		To:      cfg.DateTo,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to load bars: %v", err)
	}

	// 3. Optimize
	optimizer, err := optimization.NewOptimizer(optimization.OptimizerConfig{
		Symbol:          cfg.Symbol,
		Base:            cfg.Strategy,
		ParameterRanges: ranges,
		ScoreFunction:   scoreFn,
		Concurrency:     *concurrency,
	}, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Invalid optimization setup: %v", err)
	}
	results, err := optimizer.Optimize(ctx, bars)
	if err != nil {
		appLogger.Error(ctx, err, "Optimization failed")
		log.Fatalf("FATAL: Optimization failed: %v", err)
	}

	// 4. Report the best combinations
	names := make([]string, 0, len(ranges))
	for _, r := range ranges {
		names = append(names, r.Name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\t%s\tTRADES\tWIN%%\tPIPS\tPF\tSCORE\n", strings.ToUpper(strings.Join(names, "\t")))
	for i, res := range results {
		if i >= *top {
			break
		}
		values := make([]string, 0, len(names))
		for _, n := range names {
			values = append(values, strconv.FormatFloat(res.Parameters[n], 'f', -1, 64))
		}
		s := res.Summary
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.1f\t%s\t%.2f\n",
			i+1, strings.Join(values, "\t"), s.TotalTrades, s.WinRate, s.TotalPips,
			utils.FormatProfitFactor(s.ProfitFactor, s.ProfitFactorUnbounded), res.Score)
	}
	w.Flush()
}
