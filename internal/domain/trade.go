package domain

import "time"

// Trade represents a closed position.
type Trade struct {
	ID          int64  // Assigned by the repository
	RunID       string // Backtest run the trade belongs to
	Symbol      string
	Direction   Direction
	EntryTime   time.Time
	EntryPrice  float64
	ExitTime    time.Time
	ExitPrice   float64
	ExitReason  ExitReason
	StopPrice   float64
	TargetPrice float64
	RangeHigh   float64
	RangeLow    float64
	Pips        float64 // Signed result, positive is a win
	Trend       Trend

	// PolicyResolved marks trades that were still open when the input ended and
	// were closed by the unresolved policy.
	PolicyResolved bool
}

// IsWin reports whether the trade made a positive number of pips.
func (t *Trade) IsWin() bool {
	return t.Pips > 0
}

// Duration returns how long the position was held.
func (t *Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
