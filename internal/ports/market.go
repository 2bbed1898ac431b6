package ports

import (
	"context"
	"time"

	"rangeBreakout/internal/domain"
)

// BarProvider fetches historical bars from a market data source.
type BarProvider interface {
	// GetBarsRange returns every bar of the interval between start and end, oldest first.
	GetBarsRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error)
	// Ping checks connectivity to the source.
	Ping(ctx context.Context) error
}
