package ports

import (
	"time"

	"rangeBreakout/internal/domain"
)

// MetricsRecorder receives run-level counters from the backtest runner.
type MetricsRecorder interface {
	RecordTrade(symbol string, trade *domain.Trade)
	RecordDay(symbol, outcome string)
	RecordUnresolved(symbol string, count int)
	ObserveRun(symbol string, elapsed time.Duration, totalPips float64)
}
