package backtesting

import (
	"context"
	"fmt"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"
	"rangeBreakout/internal/strategy"

	"golang.org/x/sync/errgroup"
)

// Job is one independent backtest of an instrument.
type Job struct {
	Symbol string
	Config strategy.Config
	Bars   []*domain.Bar
}

// Runner executes jobs in parallel.
type Runner struct {
	logger      ports.Logger
	metrics     ports.MetricsRecorder
	concurrency int
}

// NewRunner creates a runner. metrics may be nil; concurrency <= 0 means unbounded.
func NewRunner(logger ports.Logger, metrics ports.MetricsRecorder, concurrency int) *Runner {
	return &Runner{logger: logger, metrics: metrics, concurrency: concurrency}
}

// RunAll runs every job and returns the results in job order. The first failing
// job cancels the jobs that have not started yet.
func (r *Runner) RunAll(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			engine, err := New(job.Config, r.logger)
			if err != nil {
				return fmt.Errorf("backtest %s: %w", job.Symbol, err)
			}
			started := time.Now()
			res, err := engine.Run(gctx, job.Symbol, job.Bars)
			if err != nil {
				return fmt.Errorf("backtest %s: %w", job.Symbol, err)
			}
			r.record(res, time.Since(started))
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Error(ctx, err, "Batch backtest aborted", map[string]interface{}{"jobs": len(jobs)})
		return nil, err
	}
	return results, nil
}

func (r *Runner) record(res *Result, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	for _, t := range res.Trades {
		r.metrics.RecordTrade(res.Symbol, t)
	}
	for _, d := range res.Days {
		r.metrics.RecordDay(res.Symbol, string(d.Outcome))
	}
	r.metrics.RecordUnresolved(res.Symbol, len(res.Unresolved))
	r.metrics.ObserveRun(res.Symbol, elapsed, res.Summary.TotalPips)
}
