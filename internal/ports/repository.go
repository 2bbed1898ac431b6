package ports

import (
	"context"

	"rangeBreakout/internal/domain"
)

// RunRepository stores backtest runs together with their trades.
type RunRepository interface {
	// SaveRun persists the run and all of its trades atomically.
	SaveRun(ctx context.Context, run *domain.RunRecord, trades []*domain.Trade) error
	// FindRun retrieves a run by ID.
	// Returns nil, nil if not found.
	FindRun(ctx context.Context, id string) (*domain.RunRecord, error)
	// FindRuns retrieves the most recent runs, optionally filtered by symbol.
	FindRuns(ctx context.Context, symbol string, limit int) ([]*domain.RunRecord, error)
	// FindTradesByRun retrieves the trades of a run ordered by entry time.
	FindTradesByRun(ctx context.Context, runID string) ([]*domain.Trade, error)
}
