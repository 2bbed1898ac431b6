package backtesting

import (
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/strategy"

	"github.com/google/uuid"
)

// NewRunRecord builds the persistable record of a finished run and stamps its
// ID on every trade of the result.
func NewRunRecord(cfg strategy.Config, res *Result, startedAt, finishedAt time.Time) *domain.RunRecord {
	id := uuid.NewString()
	for _, t := range res.Trades {
		t.RunID = id
	}
	s := res.Summary
	return &domain.RunRecord{
		ID:                    id,
		Symbol:                res.Symbol,
		StartedAt:             startedAt,
		FinishedAt:            finishedAt,
		Params:                cfg.Fields(),
		Bars:                  res.Bars,
		TotalTrades:           s.TotalTrades,
		WinningTrades:         s.WinningTrades,
		LosingTrades:          s.LosingTrades,
		WinRate:               s.WinRate,
		TotalPips:             s.TotalPips,
		ProfitFactor:          s.ProfitFactor,
		ProfitFactorUnbounded: s.ProfitFactorUnbounded,
		Unresolved:            s.Unresolved,
	}
}
