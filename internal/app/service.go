package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"
	"rangeBreakout/internal/strategy"
	"rangeBreakout/internal/strategy/backtesting"
	"rangeBreakout/internal/utils"
)

// Request describes one instrument to backtest.
type Request struct {
	Symbol    string
	Config    strategy.Config
	BarsCSV   string
	From      time.Time // Zero means unbounded
	To        time.Time // Exclusive, zero means unbounded
	TradesCSV string    // Trade export, disabled when empty
}

// Outcome is a finished and persisted backtest.
type Outcome struct {
	Run    *domain.RunRecord
	Result *backtesting.Result
}

// BacktestService orchestrates loading bars, running the engine and persisting runs.
type BacktestService struct {
	logger      ports.Logger
	repo        ports.RunRepository
	metrics     ports.MetricsRecorder
	concurrency int
}

// NewBacktestService creates a new application service instance.
// repo and metrics are optional.
func NewBacktestService(
	logger ports.Logger,
	repo ports.RunRepository,
	metrics ports.MetricsRecorder,
	concurrency int,
) (*BacktestService, error) {
	if logger == nil {
		return nil, fmt.Errorf("missing required dependencies for BacktestService")
	}
	if concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency must not be negative", ports.ErrInvalidConfig)
	}
	return &BacktestService{
		logger:      logger,
		repo:        repo,
		metrics:     metrics,
		concurrency: concurrency,
	}, nil
}

// LoadBars reads the CSV of req in the strategy timezone and trims it to the requested period.
func (s *BacktestService) LoadBars(ctx context.Context, req Request) ([]*domain.Bar, error) {
	bars, err := utils.ReadBarsFromCSV(req.BarsCSV, req.Config.Loc())
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load bars", map[string]interface{}{"symbol": req.Symbol, "file": req.BarsCSV})
		return nil, err
	}
	filtered := backtesting.FilterBars(bars, req.From, req.To)
	if len(filtered) < req.Config.Warmup() {
		s.logger.Warn(ctx, "Fewer bars than the MACD warm-up, no setup can be confirmed", map[string]interface{}{
			"symbol": req.Symbol, "bars": len(filtered), "warmup": req.Config.Warmup(),
		})
	}
	s.logger.Info(ctx, "Loaded bars", map[string]interface{}{
		"symbol":   req.Symbol,
		"file":     req.BarsCSV,
		"read":     len(bars),
		"in_range": len(filtered),
	})
	return filtered, nil
}

// Run backtests every request in parallel, then persists and exports the results
// in request order.
func (s *BacktestService) Run(ctx context.Context, reqs []Request) ([]Outcome, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no backtest requested", ports.ErrInvalidRequest)
	}

	jobs := make([]backtesting.Job, 0, len(reqs))
	for _, req := range reqs {
		bars, err := s.LoadBars(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", req.Symbol, err)
		}
		jobs = append(jobs, backtesting.Job{Symbol: req.Symbol, Config: req.Config, Bars: bars})
	}

	started := time.Now()
	results, err := backtesting.NewRunner(s.logger, s.metrics, s.concurrency).RunAll(ctx, jobs)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
		}
		return nil, err
	}
	finished := time.Now()

	outcomes := make([]Outcome, 0, len(results))
	for i, res := range results {
		run := backtesting.NewRunRecord(reqs[i].Config, res, started, finished)
		if err := s.persist(ctx, run, res, reqs[i].TradesCSV); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, Outcome{Run: run, Result: res})
	}
	return outcomes, nil
}

func (s *BacktestService) persist(ctx context.Context, run *domain.RunRecord, res *backtesting.Result, tradesCSV string) error {
	fields := map[string]interface{}{"run_id": run.ID, "symbol": run.Symbol}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, run, res.Trades); err != nil {
			s.logger.Error(ctx, err, "Failed to save run", fields)
			return fmt.Errorf("save run %s: %w", run.Symbol, err)
		}
		s.logger.Info(ctx, "Run saved", fields)
	}

	if tradesCSV != "" {
		if dir := filepath.Dir(tradesCSV); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create trades directory %s: %w", dir, err)
			}
		}
		if err := utils.WriteTradesToCSV(res.Trades, tradesCSV); err != nil {
			s.logger.Error(ctx, err, "Failed to export trades", fields)
			return fmt.Errorf("export trades %s: %w", run.Symbol, err)
		}
		fields["file"] = tradesCSV
		s.logger.Info(ctx, "Trades exported", fields)
	}
	return nil
}
